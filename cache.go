package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"dictionary_classifier/classifier"
)

const defaultDictionaryName = "default"

// ErrUnknownDictionary is returned when no file backs a dictionary name
var ErrUnknownDictionary = errors.New("unknown dictionary")

// dictionaryExtensions are tried in order when loading a dictionary by name
var dictionaryExtensions = []string{".json", ".yaml", ".yml"}

// DictionaryCache caches compiled dictionaries with file watching
type DictionaryCache struct {
	sync.RWMutex
	entries map[string]*compiledDictionary
	watcher *fsnotify.Watcher
	dir     string
}

var dictionaryCache *DictionaryCache

func NewDictionaryCache(dir string) (*DictionaryCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dictionaries directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Add dictionaries directory to watcher
	err = watcher.Add(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch dictionaries directory: %w", err)
	}

	cache := &DictionaryCache{
		entries: make(map[string]*compiledDictionary),
		watcher: watcher,
		dir:     dir,
	}

	log.Printf("File watcher initialized for: %s", dir)
	return cache, nil
}

func (dc *DictionaryCache) Close() {
	if dc.watcher != nil {
		dc.watcher.Close()
	}
}

// WatchFiles evicts cached dictionaries whose file changed. It returns when
// the watcher is closed.
func (dc *DictionaryCache) WatchFiles() {
	log.Println("File watcher started")

	for {
		select {
		case event, ok := <-dc.watcher.Events:
			if !ok {
				return
			}

			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
				!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			name, ok := dictionaryName(event.Name)
			if !ok {
				continue
			}

			log.Printf("File changed: %s (%s), evicting dictionary: %s", event.Name, event.Op, name)
			if dc.Evict(name) {
				log.Printf("Dictionary '%s' cache cleared, will reload on next request", name)
			}

		case err, ok := <-dc.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// Get returns the compiled dictionary for name, loading and compiling it on
// first use or when its file has changed since.
func (dc *DictionaryCache) Get(name string) (*compiledDictionary, error) {
	if !validDictionaryName(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDictionary, name)
	}

	dc.RLock()
	entry, exists := dc.entries[name]
	dc.RUnlock()

	if exists && !entry.stale() {
		return entry, nil
	}

	dc.Lock()
	defer dc.Unlock()

	// Double-check after acquiring write lock
	if entry, exists := dc.entries[name]; exists && !entry.stale() {
		return entry, nil
	}
	if exists {
		log.Printf("Detected modification for %s, reloading...", name)
	}

	entry, err := dc.load(name)
	if err != nil {
		delete(dc.entries, name)
		return nil, err
	}
	dc.entries[name] = entry

	log.Printf("Loaded dictionary: %s from %s (revision %s)", name, entry.source, entry.revision)
	return entry, nil
}

// Put compiles d and installs it under name, replacing whatever was cached.
// The previous compiled dictionary is left as it was for readers still
// using it.
func (dc *DictionaryCache) Put(name string, d classifier.Dictionary) (*compiledDictionary, error) {
	if !validDictionaryName(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDictionary, name)
	}

	entry, err := newCompiledDictionary(name, d, "edit", "", time.Time{})
	if err != nil {
		return nil, err
	}

	dc.Lock()
	dc.entries[name] = entry
	dc.Unlock()

	log.Printf("Dictionary '%s' edited, revision %s", name, entry.revision)
	return entry, nil
}

// Evict drops name from the cache and reports whether it was cached
func (dc *DictionaryCache) Evict(name string) bool {
	dc.Lock()
	defer dc.Unlock()
	_, ok := dc.entries[name]
	delete(dc.entries, name)
	return ok
}

// EvictAll clears the cache and returns how many entries it held
func (dc *DictionaryCache) EvictAll() int {
	dc.Lock()
	defer dc.Unlock()
	count := len(dc.entries)
	dc.entries = make(map[string]*compiledDictionary)
	return count
}

// Snapshot returns the cached entries sorted by name
func (dc *DictionaryCache) Snapshot() []*compiledDictionary {
	dc.RLock()
	defer dc.RUnlock()

	out := make([]*compiledDictionary, 0, len(dc.entries))
	for _, entry := range dc.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// load reads <name>.json, .yaml or .yml from the dictionaries directory.
// The default dictionary falls back to the built-in one.
func (dc *DictionaryCache) load(name string) (*compiledDictionary, error) {
	for _, ext := range dictionaryExtensions {
		path := filepath.Join(dc.dir, name+ext)

		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat dictionary: %w", err)
		}

		d, err := loadDictionaryFile(path)
		if err != nil {
			return nil, err
		}
		return newCompiledDictionary(name, d, "file", path, info.ModTime())
	}

	if name == defaultDictionaryName {
		return newCompiledDictionary(name, classifier.Default(), "built-in", "", time.Time{})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDictionary, name)
}

// loadDictionaryFile parses a dictionary file, picking the format from the
// extension.
func loadDictionaryFile(path string) (classifier.Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return classifier.ParseYAML(data)
	default:
		return classifier.ParseJSON(data)
	}
}

func newCompiledDictionary(name string, d classifier.Dictionary, source, path string, modTime time.Time) (*compiledDictionary, error) {
	compiled, err := classifier.Compile(d)
	if err != nil {
		return nil, err
	}
	return &compiledDictionary{
		name:       name,
		dictionary: d.Clone(),
		compiled:   compiled,
		revision:   uuid.NewString(),
		loadedAt:   time.Now(),
		source:     source,
		filePath:   path,
		modTime:    modTime,
	}, nil
}

// stale reports whether the backing file changed or disappeared
func (cd *compiledDictionary) stale() bool {
	if cd.filePath == "" {
		return false
	}
	info, err := os.Stat(cd.filePath)
	if err != nil {
		return true
	}
	return info.ModTime().After(cd.modTime)
}

// dictionaryName maps a watched file path to the dictionary it defines
func dictionaryName(path string) (string, bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	for _, known := range dictionaryExtensions {
		if ext == known {
			return strings.TrimSuffix(base, filepath.Ext(base)), true
		}
	}
	return "", false
}

func validDictionaryName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}
