package abbrev

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/coolbeans/hunlaw/pkg/identifier"
)

var (
	ptk = identifier.Act{Year: 2013, Number: 5}
	btk = identifier.Act{Year: 2012, Number: 100}
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry.Count() != 0 {
		t.Errorf("Count() = %d, want 0", registry.Count())
	}
	if _, err := registry.Get("Ptk."); !errors.Is(err, ErrUnknown) {
		t.Errorf("Get() error = %v, want ErrUnknown", err)
	}
}

func TestRegistryAdd(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Add("Ptk.", ptk); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := registry.Add(" ", ptk); err == nil {
		t.Error("Add() with empty key should return error")
	}

	got, err := registry.Get("Ptk.")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != ptk {
		t.Errorf("Get() = %v, want %v", got, ptk)
	}

	// Redeclaring overrides.
	if err := registry.Add("Ptk.", btk); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got, _ := registry.Get("Ptk."); got != btk {
		t.Errorf("Get() after redeclaration = %v, want %v", got, btk)
	}
	if registry.Count() != 1 {
		t.Errorf("Count() = %d, want 1", registry.Count())
	}
}

func TestRegistryMatchPrefix(t *testing.T) {
	registry := NewRegistry()
	registry.Add("Tv.", ptk)
	registry.Add("Tvr.", btk)

	cases := []struct {
		input string
		key   string
		ok    bool
	}{
		{"Tv. 5. §", "Tv.", true},
		{"Tvr. 5. §", "Tvr.", true},
		{"Ptk. 5. §", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			key, value, ok := registry.MatchPrefix(tc.input)
			if ok != tc.ok || key != tc.key {
				t.Fatalf("MatchPrefix() = %q, %v, want %q, %v", key, ok, tc.key, tc.ok)
			}
			if ok {
				if _, isAct := value.(identifier.Act); !isAct {
					t.Errorf("MatchPrefix() value = %T, want identifier.Act", value)
				}
			}
		})
	}
}

func TestRegistryFingerprint(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("empty registries should share a fingerprint")
	}

	a.Replay(Entry{Key: "Ptk.", Act: ptk}, Entry{Key: "Btk.", Act: btk})
	b.Replay(Entry{Key: "Btk.", Act: btk}, Entry{Key: "Ptk.", Act: ptk})
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("insertion order should not change the fingerprint")
	}

	b.Add("Ptk.", btk)
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different bindings should change the fingerprint")
	}
}

func TestRegistryEntriesAndClone(t *testing.T) {
	registry := NewRegistry()
	registry.Replay(Entry{Key: "Ptk.", Act: ptk}, Entry{Key: "Btk.", Act: btk})

	want := []Entry{{Key: "Btk.", Act: btk}, {Key: "Ptk.", Act: ptk}}
	if diff := cmp.Diff(want, registry.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}

	clone := registry.Clone()
	clone.Add("Mt.", identifier.Act{Year: 2012, Number: 1})
	if registry.Count() != 2 {
		t.Errorf("Count() after cloning = %d, want 2", registry.Count())
	}
	if clone.Count() != 3 {
		t.Errorf("clone Count() = %d, want 3", clone.Count())
	}
}

func TestRegistryConcurrent(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			registry.Add("Ptk.", identifier.Act{Year: 2013, Number: n + 1})
			registry.MatchPrefix("Ptk. 1. §")
		}(i)
	}
	wg.Wait()
	if registry.Count() != 1 {
		t.Errorf("Count() = %d, want 1", registry.Count())
	}
}

const civilFile = `
abbreviations:
  - key: Ptk.
    act: 2013. évi V. törvény
  - key: Btk.
    act: 2012. évi C. törvény
`

func TestParseFile(t *testing.T) {
	entries, err := ParseFile([]byte(civilFile))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	want := []Entry{{Key: "Ptk.", Act: ptk}, {Key: "Btk.", Act: btk}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("ParseFile() mismatch (-want +got):\n%s", diff)
	}

	bad := []string{
		"abbreviations:\n  - key: Ptk.\n    act: not an act\n",
		"abbreviations:\n  - key: \"\"\n    act: 2013. évi V. törvény\n",
		"abbreviations: [",
	}
	for _, in := range bad {
		if _, err := ParseFile([]byte(in)); err == nil {
			t.Errorf("ParseFile(%q) should return error", in)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestTableLoadDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "civil.yaml"), civilFile)
	writeFile(t, filepath.Join(tmpDir, "labour.yml"), "abbreviations:\n  - key: Mt.\n    act: 2012. évi I. törvény\n")
	writeFile(t, filepath.Join(tmpDir, "notes.txt"), "ignored")

	table, err := NewTableWithDirectory(tmpDir, nil)
	if err != nil {
		t.Fatalf("NewTableWithDirectory() error = %v", err)
	}
	if table.Count() != 3 {
		t.Errorf("Count() = %d, want 3", table.Count())
	}

	registry := table.Seed()
	if got, err := registry.Get("Mt."); err != nil || got != (identifier.Act{Year: 2012, Number: 1}) {
		t.Errorf("Get(Mt.) = %v, %v", got, err)
	}

	// Seeded registries are independent.
	registry.Add("X.", ptk)
	if table.Seed().Count() != 3 {
		t.Error("Seed() should return a fresh registry")
	}
}

func TestTableLoadDirectoryErrors(t *testing.T) {
	table := NewTable(nil)
	if err := table.LoadDirectory(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("LoadDirectory() on missing directory should return error")
	}

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "bad.yaml"), "abbreviations:\n  - key: Ptk.\n    act: 2013\n")
	writeFile(t, filepath.Join(tmpDir, "good.yaml"), civilFile)
	table = NewTable(nil)
	if err := table.LoadDirectory(tmpDir); err == nil {
		t.Error("LoadDirectory() with a bad file should return error")
	}
	if table.Count() != 2 {
		t.Errorf("Count() = %d, want 2 from the good file", table.Count())
	}
}

func TestTableReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "civil.yaml")
	writeFile(t, path, civilFile)

	table, err := NewTableWithDirectory(tmpDir, nil)
	if err != nil {
		t.Fatalf("NewTableWithDirectory() error = %v", err)
	}
	writeFile(t, path, "abbreviations:\n  - key: Ptk.\n    act: 2013. évi V. törvény\n")
	if err := table.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if table.Count() != 1 {
		t.Errorf("Count() after Reload() = %d, want 1", table.Count())
	}

	if err := NewTable(nil).Reload(); err == nil {
		t.Error("Reload() without directory should return error")
	}
}

func TestTableWatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping watch test in short mode")
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "civil.yaml")
	writeFile(t, path, civilFile)

	table, err := NewTableWithDirectory(tmpDir, nil)
	if err != nil {
		t.Fatalf("NewTableWithDirectory() error = %v", err)
	}

	changed := make(chan bool, 1)
	table.SetOnChange(func(event, path string) {
		select {
		case changed <- true:
		default:
		}
	})

	if err := table.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer table.StopWatch()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(tmpDir, "labour.yaml"), "abbreviations:\n  - key: Mt.\n    act: 2012. évi I. törvény\n")

	select {
	case <-changed:
		time.Sleep(100 * time.Millisecond)
	case <-time.After(3 * time.Second):
		t.Log("Watch() did not detect file change within timeout (may be CI environment)")
		return
	}

	if _, err := table.Seed().Get("Mt."); err != nil {
		t.Errorf("Get(Mt.) after watch error = %v", err)
	}
}

func TestTableWatchNoDirectory(t *testing.T) {
	if err := NewTable(nil).Watch(); err == nil {
		t.Error("Watch() without directory should return error")
	}
}

func TestTableWatchConcurrentStop(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "civil.yaml"), civilFile)
	table, err := NewTableWithDirectory(tmpDir, nil)
	if err != nil {
		t.Fatalf("NewTableWithDirectory() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			table.Watch()
		}()
		go func() {
			defer wg.Done()
			table.StopWatch()
		}()
	}
	wg.Wait()
	table.StopWatch()

	if err := table.Watch(); err != nil {
		t.Fatalf("Watch() after stop error = %v", err)
	}
	if err := table.Watch(); err == nil {
		t.Error("second Watch() should return error")
	}
	table.StopWatch()
}
