package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Identity is the device's persisted handle into a room: three strings
// that must survive reloads and be cleared entirely on reset.
type Identity struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Token string `json:"token"`
}

// Valid reports whether the identity can be used to resume a session
func (id Identity) Valid() bool {
	return id.Code != "" && id.Token != ""
}

// Store persists the device identity across process restarts
type Store interface {
	Load() (Identity, bool, error)
	Save(Identity) error
	Clear() error
}

// FileStore keeps the identity in a small JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored identity. A missing file is not an error; it
// just means a fresh device.
func (s *FileStore) Load() (Identity, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, err
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, false, err
	}

	return id, id.Valid(), nil
}

// Save writes the identity atomically (temp file plus rename)
func (s *FileStore) Save(id Identity) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(id)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the stored identity
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
