package abbrev

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/hunlaw/pkg/identifier"
)

// File is the YAML layout of an abbreviation file:
//
//	abbreviations:
//	  - key: Ptk.
//	    act: 2013. évi V. törvény
type File struct {
	Abbreviations []FileEntry `yaml:"abbreviations"`
}

// FileEntry is one line of a File. Act is in canonical form.
type FileEntry struct {
	Key string `yaml:"key"`
	Act string `yaml:"act"`
}

// Table is a directory of abbreviation files, known before any document is
// read. Every document's Registry is seeded from it.
type Table struct {
	mu     sync.RWMutex
	files  map[string][]Entry
	dir    string
	logger *slog.Logger

	onChange func(event, path string)
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// NewTable creates an empty table.
func NewTable(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{files: make(map[string][]Entry), logger: logger}
}

// NewTableWithDirectory creates a table and loads dir into it.
func NewTableWithDirectory(dir string, logger *slog.Logger) (*Table, error) {
	t := NewTable(logger)
	if err := t.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return t, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadDirectory loads every YAML file in dir. Files that fail to load are
// reported together after the rest have been loaded.
func (t *Table) LoadDirectory(dir string) error {
	t.mu.Lock()
	t.dir = dir
	t.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := t.LoadFile(path); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}
	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading abbreviations:\n  %s", strings.Join(loadErrors, "\n  "))
	}
	return nil
}

// LoadFile loads one file, replacing what was loaded from it before.
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	entries, err := ParseFile(data)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.files[path] = entries
	t.mu.Unlock()
	t.logger.Debug("loaded abbreviations", "path", path, "count", len(entries))
	return nil
}

// ParseFile decodes the YAML of an abbreviation file.
func ParseFile(data []byte) ([]Entry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	out := make([]Entry, 0, len(f.Abbreviations))
	for i, fe := range f.Abbreviations {
		if strings.TrimSpace(fe.Key) == "" {
			return nil, fmt.Errorf("entry %d: key is required", i)
		}
		act, err := identifier.ParseAct(fe.Act)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, fe.Key, err)
		}
		out = append(out, Entry{Key: fe.Key, Act: act})
	}
	return out, nil
}

// Reload drops everything and loads the directory again.
func (t *Table) Reload() error {
	t.mu.Lock()
	dir := t.dir
	t.files = make(map[string][]Entry)
	t.mu.Unlock()
	if dir == "" {
		return fmt.Errorf("no directory configured")
	}
	return t.LoadDirectory(dir)
}

// Entries returns all entries, files in path order. A key defined in two
// files resolves to the later file.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	paths := make([]string, 0, len(t.files))
	for p := range t.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var out []Entry
	for _, p := range paths {
		out = append(out, t.files[p]...)
	}
	return out
}

// Count returns the number of distinct keys.
func (t *Table) Count() int {
	keys := make(map[string]bool)
	for _, e := range t.Entries() {
		keys[e.Key] = true
	}
	return len(keys)
}

// Seed creates a registry holding the table's abbreviations.
func (t *Table) Seed() *Registry {
	r := NewRegistry()
	for _, e := range t.Entries() {
		r.entries[e.Key] = e.Act
	}
	return r
}

// SetOnChange sets a callback run after a watched file is loaded or
// removed. Event is "create", "modify" or "remove".
func (t *Table) SetOnChange(fn func(event, path string)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Watch reloads files in the table's directory as they change.
func (t *Table) Watch() error {
	t.mu.RLock()
	dir := t.dir
	t.mu.RUnlock()
	if dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	t.mu.Lock()
	if t.watcher != nil {
		t.mu.Unlock()
		watcher.Close()
		return fmt.Errorf("already watching %s", dir)
	}
	stop := make(chan struct{})
	t.watcher = watcher
	t.stopChan = stop
	t.mu.Unlock()

	go t.watchLoop(watcher, stop)
	return nil
}

func (t *Table) watchLoop(w *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				t.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				t.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				t.handleFileRemove(event.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			t.logger.Warn("abbreviation watcher", "error", err)
		}
	}
}

func (t *Table) handleFileChange(path, event string) {
	if err := t.LoadFile(path); err != nil {
		t.logger.Warn("reloading abbreviations", "path", path, "error", err)
		return
	}
	t.notify(event, path)
}

func (t *Table) handleFileRemove(path string) {
	t.mu.Lock()
	_, ok := t.files[path]
	delete(t.files, path)
	t.mu.Unlock()
	if ok {
		t.logger.Debug("removed abbreviations", "path", path)
		t.notify("remove", path)
	}
}

func (t *Table) notify(event, path string) {
	t.mu.RLock()
	fn := t.onChange
	t.mu.RUnlock()
	if fn != nil {
		fn(event, path)
	}
}

// StopWatch stops watching for file changes.
func (t *Table) StopWatch() {
	t.mu.Lock()
	stop, watcher := t.stopChan, t.watcher
	t.stopChan, t.watcher = nil, nil
	t.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if watcher != nil {
		watcher.Close()
	}
}
