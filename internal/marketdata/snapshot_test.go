package marketdata

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func testStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	return store
}

func TestLoadLatestMissingFile(t *testing.T) {
	data, err := testStore(t).LoadLatest()
	if err != nil {
		t.Fatalf("missing snapshot must not be an error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected an empty batch, got %d entries", len(data))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := testStore(t)

	in := map[string]AssetData{
		"BTC_crypto": {
			Symbol:       "BTC_crypto",
			CurrentPrice: 65000,
			Change24h:    2.5,
			Volume24h:    30_000_000,
			Historical: []PricePoint{
				{Price: 64000, Volume: 1_000_000},
				{Price: 65000, Volume: 1_200_000},
			},
			Monthly: []PricePoint{{Price: 65000, Volume: 1_200_000}},
		},
	}

	if err := store.SaveLatest(in); err != nil {
		t.Fatalf("SaveLatest: %v", err)
	}

	out, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("snapshot changed across a round trip:\n in: %+v\nout: %+v", in, out)
	}
}

func TestLoadLatestBackfillsSymbol(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSnapshotStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}

	// Older collector output omitted the symbol field inside the record.
	raw := []byte(`{"ETH_crypto": {"current_price": 3200}}`)
	if err := os.WriteFile(filepath.Join(dir, "latest_data.json"), raw, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	data, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if data["ETH_crypto"].Symbol != "ETH_crypto" {
		t.Errorf("symbol should backfill from the map key, got %q", data["ETH_crypto"].Symbol)
	}
}

func TestLoadLatestCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSnapshotStore(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "latest_data.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if _, err := store.LoadLatest(); err == nil {
		t.Error("corrupt snapshot should surface an error")
	}
}
