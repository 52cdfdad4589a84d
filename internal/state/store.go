// Package state persists which wallpaper is active on which display: a
// per-connector JSON document plus the global current-wallpaper symlink.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wallkit/wallkit/internal/logger"
)

// document is the on-disk shape:
// {"monitors": {"DP-1": {"current_wallpaper": "/path"}}}
type document struct {
	Monitors map[string]monitorEntry `json:"monitors"`
}

type monitorEntry struct {
	CurrentWallpaper string `json:"current_wallpaper"`
}

// Store is the durable connector -> wallpaper path map. The document is
// read fully at construction and mutated in memory; every Set rewrites the
// whole file via temp+rename so a crash mid-write never corrupts it.
// Single writer per process; concurrent processes are last-writer-wins.
type Store struct {
	path string
	mu   sync.Mutex
	doc  document
}

// NewStore loads the monitor state document at path, starting empty when
// the file is absent or corrupt. Entries for long-disconnected monitors are
// kept; a monitor may only be temporarily unplugged.
func NewStore(path string) *Store {
	s := &Store{
		path: path,
		doc:  document{Monitors: make(map[string]monitorEntry)},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithComponent("state").Warn().Err(err).Str("path", path).Msg("Could not read monitor state, starting empty")
		}
		return s
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.WithComponent("state").Warn().Err(err).Str("path", path).Msg("Corrupt monitor state, starting empty")
		return s
	}
	if doc.Monitors == nil {
		doc.Monitors = make(map[string]monitorEntry)
	}
	s.doc = doc
	return s
}

// Get returns the recorded wallpaper path for connector, or "".
func (s *Store) Get(connector string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Monitors[connector].CurrentWallpaper
}

// Set records path as the current wallpaper for connector and persists the
// whole document.
func (s *Store) Set(connector, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Monitors[connector] = monitorEntry{CurrentWallpaper: path}
	return s.flushLocked()
}

// Connectors returns every connector with a recorded wallpaper.
func (s *Store) Connectors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.doc.Monitors))
	for c := range s.doc.Monitors {
		out = append(out, c)
	}
	return out
}

// SyncFromPointer bootstraps an empty store from the global pointer so a
// pre-existing single-wallpaper setup migrates cleanly: every connector in
// the current discovery gets the pointer's target. A non-empty store is
// left untouched.
func (s *Store) SyncFromPointer(ptr *Pointer, connectors []string) error {
	target, err := ptr.Read()
	if err != nil || target == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.doc.Monitors) > 0 {
		return nil
	}
	for _, c := range connectors {
		if c == "" {
			continue
		}
		s.doc.Monitors[c] = monitorEntry{CurrentWallpaper: target}
	}
	if len(s.doc.Monitors) == 0 {
		return nil
	}
	return s.flushLocked()
}

// flushLocked rewrites the entire document atomically. Callers hold s.mu.
func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal monitor state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".monitor_state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write monitor state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace monitor state: %w", err)
	}
	return nil
}
