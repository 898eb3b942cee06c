// Package config holds the per-board persisted choices and the run
// settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// StoreSuffix is appended to the board file name to get the store path.
const StoreSuffix = ".projinst.json"

// LogSuffix is appended to the board file name to get the run log path.
const LogSuffix = ".projinst.log"

// Store is a flat key/value file kept next to the board. Values are
// booleans or strings.
type Store struct {
	path   string
	values map[string]any
	dirty  bool
}

// StorePath returns the store file that belongs to a board file.
func StorePath(boardPath string) string {
	return strings.TrimSuffix(boardPath, ".kicad_pcb") + ".kicad_pcb" + StoreSuffix
}

// LogPath returns the log file that belongs to a board file.
func LogPath(boardPath string) string {
	return strings.TrimSuffix(boardPath, ".kicad_pcb") + ".kicad_pcb" + LogSuffix
}

// EnabledKey is the store key of an instance's enabled flag.
func EnabledKey(uuidPath string) string { return "enabled:" + uuidPath }

// AnchorKey is the store key of a room's anchor reference.
func AnchorKey(id string) string { return "anchor:" + id }

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]any)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file
func (s *Store) Path() string { return s.path }

// Bool returns the boolean stored under key, or def.
func (s *Store) Bool(key string, def bool) bool {
	if v, ok := s.values[key].(bool); ok {
		return v
	}
	return def
}

// String returns the string stored under key, or def.
func (s *Store) String(key, def string) string {
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return def
}

// Set stores a value. Only bool and string values are kept.
func (s *Store) Set(key string, value any) error {
	switch value.(type) {
	case bool, string:
	default:
		return fmt.Errorf("config %q: unsupported value type %T", key, value)
	}
	if old, ok := s.values[key]; ok && old == value {
		return nil
	}
	s.values[key] = value
	s.dirty = true
	return nil
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Keys returns every stored key with the given prefix.
func (s *Store) Keys(prefix string) []string {
	var out []string
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// Save writes the store back if anything changed.
func (s *Store) Save() error {
	if !s.dirty {
		return nil
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}
