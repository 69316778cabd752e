// Package localstore persists small client-local settings to a JSON
// file, the desktop stand-in for browser localStorage. Only device
// preferences live here; anything account-scoped belongs on the server.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dailydash/internal/domain"
)

// Data is everything stored locally.
type Data struct {
	Theme domain.Theme `json:"theme,omitempty"`
}

// Store reads and writes the local settings file.
type Store struct {
	path string
}

// New creates a store at an explicit path.
func New(path string) *Store {
	return &Store{path: path}
}

// Default places the file under the user's home directory.
func Default() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home dir: %w", err)
	}
	return New(filepath.Join(home, ".dailydash", "local.json")), nil
}

// Load reads the settings. A missing file is not an error; it yields
// zero-value data.
func (s *Store) Load() (*Data, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading local settings: %w", err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parsing local settings: %w", err)
	}
	return &d, nil
}

// Save writes the settings, creating the directory as needed.
func (s *Store) Save(d *Data) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding local settings: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("writing local settings: %w", err)
	}
	return nil
}
