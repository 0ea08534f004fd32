// Package state persists the active-profile record (mcmodman.json) inside the mods root.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mcmodman/internal/domain"
)

// FileName is the record's name inside the mods root
const FileName = "mcmodman.json"

// Store reads and writes the ActiveState record
type Store struct {
	path string
}

// New creates a store for the record at path
func New(path string) *Store {
	return &Store{path: path}
}

// ForModsRoot creates a store for the record in its well-known location under modsRoot
func ForModsRoot(modsRoot string) *Store {
	return New(filepath.Join(modsRoot, FileName))
}

// Path returns the record's location
func (s *Store) Path() string {
	return s.path
}

// Initialize writes an empty record if none exists. Existing records are left untouched.
func (s *Store) Initialize() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &domain.IOError{Op: "stat record", Path: s.path, Err: err}
	}
	return s.Save(domain.ActiveState{})
}

// Load reads and decodes the record
func (s *Store) Load() (domain.ActiveState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.ActiveState{}, &domain.IOError{Op: "read record", Path: s.path, Err: err}
	}
	return decode(s.path, data)
}

func decode(path string, data []byte) (domain.ActiveState, error) {
	var state domain.ActiveState

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return state, &domain.CorruptStateError{Path: path, Err: errors.New("record is not a JSON object")}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&state); err != nil {
		return domain.ActiveState{}, &domain.CorruptStateError{Path: path, Err: err}
	}
	if dec.InputOffset() != int64(len(trimmed)) {
		return domain.ActiveState{}, &domain.CorruptStateError{Path: path, Err: errors.New("trailing data after record")}
	}

	if (state.ModLoader == "") != (state.Version == "") {
		return domain.ActiveState{}, &domain.CorruptStateError{
			Path: path,
			Err:  fmt.Errorf("record names loader %q with version %q", state.ModLoader, state.Version),
		}
	}

	return state, nil
}

// Save overwrites the record. The new content is written to a temporary file in the
// same directory and renamed over the old record.
func (s *Store) Save(state domain.ActiveState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".mcmodman-*.json")
	if err != nil {
		return &domain.IOError{Op: "write record", Path: s.path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &domain.IOError{Op: "write record", Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &domain.IOError{Op: "sync record", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &domain.IOError{Op: "write record", Path: s.path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return &domain.IOError{Op: "write record", Path: s.path, Err: err}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &domain.IOError{Op: "replace record", Path: s.path, Err: err}
	}

	return nil
}
