// Package abbrev holds Act abbreviations: the per-document Registry the
// parser resolves "Ptk." style tokens against, and Table, a directory of
// YAML files with abbreviations known up front.
package abbrev

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/coolbeans/hunlaw/pkg/identifier"
)

// ErrUnknown is returned for an abbreviation that is not registered.
var ErrUnknown = errors.New("unknown abbreviation")

// Entry binds an abbreviation to an Act.
type Entry struct {
	Key string         `json:"key" yaml:"key"`
	Act identifier.Act `json:"act" yaml:"act"`
}

// Registry maps abbreviations to Acts. It is safe for concurrent use,
// though one document is parsed sequentially against one Registry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]identifier.Act
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]identifier.Act)}
}

// Add binds key to act. A later declaration of the same key overrides
// the earlier one.
func (r *Registry) Add(key string, act identifier.Act) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("abbreviation cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = act
	return nil
}

// Get returns the Act bound to key.
func (r *Registry) Get(key string) (identifier.Act, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	act, ok := r.entries[key]
	if !ok {
		return identifier.Act{}, fmt.Errorf("%q: %w", key, ErrUnknown)
	}
	return act, nil
}

// MatchPrefix returns the longest registered abbreviation s starts with.
// The value is an identifier.Act.
func (r *Registry) MatchPrefix(s string) (string, any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	best := ""
	for k := range r.entries {
		if len(k) > len(best) && strings.HasPrefix(s, k) {
			best = k
		}
	}
	if best == "" {
		return "", nil, false
	}
	return best, r.entries[best], true
}

// Replay adds entries in order, as confirmed by a successful parse.
func (r *Registry) Replay(entries ...Entry) error {
	for _, e := range entries {
		if err := r.Add(e.Key, e.Act); err != nil {
			return fmt.Errorf("replaying %q: %w", e.Key, err)
		}
	}
	return nil
}

// Count returns the number of abbreviations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entries returns the abbreviations sorted by key.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for k, act := range r.entries {
		out = append(out, Entry{Key: k, Act: act})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Fingerprint identifies the registry contents. Registries holding the
// same bindings have the same fingerprint.
func (r *Registry) Fingerprint() string {
	h := sha256.New()
	for _, e := range r.Entries() {
		fmt.Fprintf(h, "%s\x00%s\x00", e.Key, e.Act.Compact())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, act := range r.entries {
		out.entries[k] = act
	}
	return out
}
