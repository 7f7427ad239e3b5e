package position

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const storeFile = "positions.json"

// Store persists the position collection as a single JSON document. Writes go
// through a temp file and rename so readers never see a partial file.
type Store struct {
	path string
}

// NewStore ensures dir exists and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating position store dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, storeFile)}, nil
}

// Load reads the collection. A missing file is an empty collection, not an
// error, so first runs work without setup.
func (s *Store) Load() (map[string][]*Position, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]*Position{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	positions := map[string][]*Position{}
	if err := json.Unmarshal(raw, &positions); err != nil {
		return nil, fmt.Errorf("decoding positions: %w", err)
	}
	return positions, nil
}

// Save atomically replaces the stored collection.
func (s *Store) Save(positions map[string][]*Position) error {
	raw, err := json.MarshalIndent(positions, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding positions: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), storeFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing positions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing positions file: %w", err)
	}
	return nil
}
