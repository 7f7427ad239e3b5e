package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// SnapshotStore reads and writes the JSON snapshot document produced by the
// data collection layer. The latest snapshot is the pipeline's only input.
type SnapshotStore struct {
	dir    string
	logger zerolog.Logger
}

// NewSnapshotStore creates a snapshot store rooted at dir.
func NewSnapshotStore(dir string, logger zerolog.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create data directory: %w", err)
	}
	return &SnapshotStore{
		dir:    dir,
		logger: logger.With().Str("component", "SnapshotStore").Logger(),
	}, nil
}

func (s *SnapshotStore) latestPath() string {
	return filepath.Join(s.dir, "latest_data.json")
}

// LoadLatest loads the most recent snapshot. A missing file is not an error:
// it returns an empty map so the pipeline degrades to an empty batch.
func (s *SnapshotStore) LoadLatest() (map[string]AssetData, error) {
	raw, err := os.ReadFile(s.latestPath())
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn().Str("path", s.latestPath()).Msg("no snapshot found, starting empty")
			return map[string]AssetData{}, nil
		}
		return nil, fmt.Errorf("unable to read snapshot: %w", err)
	}

	data := map[string]AssetData{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unable to parse snapshot: %w", err)
	}

	for symbol, asset := range data {
		if asset.Symbol == "" {
			asset.Symbol = symbol
			data[symbol] = asset
		}
	}
	return data, nil
}

// SaveLatest replaces the snapshot document atomically.
func (s *SnapshotStore) SaveLatest(data map[string]AssetData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode snapshot: %w", err)
	}
	return atomicWrite(s.latestPath(), raw)
}

// atomicWrite writes to a temp file in the same directory and renames it over
// the target, so readers never observe a partial document.
func atomicWrite(path string, raw []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("unable to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("unable to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("unable to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("unable to replace %s: %w", path, err)
	}
	return nil
}
