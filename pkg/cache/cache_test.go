package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func setupTest(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Failed to close cache: %v", err)
		}
	})
	return c
}

func TestKey(t *testing.T) {
	a := Key("Az 1. § hatályát veszti.", "fp")
	if len(a) != 64 {
		t.Errorf("len(Key()) = %d, want 64", len(a))
	}
	if a != Key("Az 1. § hatályát veszti.", "fp") {
		t.Error("Key() is not deterministic")
	}
	if a == Key("Az 1. § hatályát veszti.", "other") {
		t.Error("Key() ignores the fingerprint")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key() does not separate text and fingerprint")
	}
}

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	c := setupTest(t)

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	if err := c.Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Get() = %s, want %s", got, `{"a":1}`)
	}

	if err := c.Put(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	got, _ = c.Get(ctx, "k")
	if string(got) != `{"a":2}` {
		t.Errorf("Get() after overwrite = %s", got)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats != (Stats{Entries: 1, Hits: 2, Misses: 1}) {
		t.Errorf("Stats() = %+v", stats)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if stats, _ := c.Stats(ctx); stats.Entries != 0 {
		t.Errorf("Entries after Clear() = %d, want 0", stats.Entries)
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := c.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer c.Close()
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get() after reopen = %q, %v", got, err)
	}
}

func TestConcurrentPut(t *testing.T) {
	ctx := context.Background()
	c := setupTest(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := Key("sentence", string(rune('a'+n)))
			if err := c.Put(ctx, key, []byte("v")); err != nil {
				t.Errorf("Put() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
	if stats, _ := c.Stats(ctx); stats.Entries != 8 {
		t.Errorf("Entries = %d, want 8", stats.Entries)
	}
}
