// Package cache stores extraction results in SQLite, keyed by the parsed
// text and the abbreviations it was parsed against.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("cache entry not found")

// Cache is a SQLite result store. It is safe for concurrent use.
type Cache struct {
	db     *sql.DB
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats describes cache usage since Open.
type Stats struct {
	Entries int64 `json:"entries" yaml:"entries"`
	Hits    int64 `json:"hits" yaml:"hits"`
	Misses  int64 `json:"misses" yaml:"misses"`
}

// Open opens or creates the cache at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Key derives the key of text parsed against the abbreviations with the
// given fingerprint.
func Key(text, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the value stored at key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx, "SELECT value FROM results WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		c.misses.Add(1)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query result: %w", err)
	}
	c.hits.Add(1)
	return value, nil
}

// Put stores value at key, replacing any previous value.
func (c *Cache) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO results (key, value)
        VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value
    `, key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}
	return nil
}

// Stats returns the number of entries and the hits and misses so far.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&n); err != nil {
		return Stats{}, fmt.Errorf("failed to count results: %w", err)
	}
	return Stats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}, nil
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM results"); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
