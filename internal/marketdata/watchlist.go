package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// WatchlistEntry is a tracked asset with optional price alert levels.
type WatchlistEntry struct {
	Symbol         string    `json:"symbol"`
	CustomName     string    `json:"custom_name"`
	BuyAlertPrice  *float64  `json:"buy_alert_price,omitempty"`
	SellAlertPrice *float64  `json:"sell_alert_price,omitempty"`
	AddedDate      time.Time `json:"added_date"`
	LastUpdated    time.Time `json:"last_updated"`
}

// PriceAlert is emitted when a current price crosses an alert level.
type PriceAlert struct {
	Symbol       string  `json:"symbol"`
	CustomName   string  `json:"custom_name"`
	Type         string  `json:"type"` // BUY or SELL
	CurrentPrice float64 `json:"current_price"`
	TargetPrice  float64 `json:"target_price"`
	Message      string  `json:"message"`
	DataSource   string  `json:"data_source"`
}

type watchlistConfig struct {
	Watchlist map[string]WatchlistEntry `json:"watchlist"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// Watchlist manages tracked symbols and their alert configuration, persisted
// as a JSON document alongside the snapshot data.
type Watchlist struct {
	mu     sync.Mutex
	path   string
	config watchlistConfig
	logger zerolog.Logger
}

// NewWatchlist loads the watchlist config from dir, starting empty if none
// exists or the file is unreadable.
func NewWatchlist(dir string, logger zerolog.Logger) *Watchlist {
	w := &Watchlist{
		path:   filepath.Join(dir, "watchlist_config.json"),
		logger: logger.With().Str("component", "Watchlist").Logger(),
	}

	raw, err := os.ReadFile(w.path)
	if err == nil {
		err = json.Unmarshal(raw, &w.config)
	}
	if err != nil || w.config.Watchlist == nil {
		if err != nil && !os.IsNotExist(err) {
			w.logger.Warn().Err(err).Msg("resetting watchlist config")
		}
		w.config = watchlistConfig{
			Watchlist: map[string]WatchlistEntry{},
			CreatedAt: time.Now(),
		}
	}
	return w
}

// Entries returns a copy of the configured watchlist keyed by lowercase symbol.
func (w *Watchlist) Entries() map[string]WatchlistEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]WatchlistEntry, len(w.config.Watchlist))
	for k, v := range w.config.Watchlist {
		out[k] = v
	}
	return out
}

// Add registers or replaces a watchlist entry and persists the config.
func (w *Watchlist) Add(symbol, customName string, buyPrice, sellPrice *float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if customName == "" {
		customName = strings.ToUpper(symbol)
	}
	now := time.Now()
	w.config.Watchlist[strings.ToLower(symbol)] = WatchlistEntry{
		Symbol:         strings.ToUpper(symbol),
		CustomName:     customName,
		BuyAlertPrice:  buyPrice,
		SellAlertPrice: sellPrice,
		AddedDate:      now,
		LastUpdated:    now,
	}
	return w.save()
}

// Remove drops a symbol from the watchlist. Returns false if it was not present.
func (w *Watchlist) Remove(symbol string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := strings.ToLower(symbol)
	if _, ok := w.config.Watchlist[key]; !ok {
		return false, nil
	}
	delete(w.config.Watchlist, key)
	return true, w.save()
}

// CheckPriceAlerts compares current prices against configured alert levels.
// A buy alert fires when price drops to or below the buy level, a sell alert
// when it rises to or above the sell level.
func (w *Watchlist) CheckPriceAlerts(current map[string]AssetData) []PriceAlert {
	w.mu.Lock()
	defer w.mu.Unlock()

	var alerts []PriceAlert
	for _, entry := range w.config.Watchlist {
		price, dataKey, ok := findCurrentPrice(current, entry.Symbol)
		if !ok {
			continue
		}

		if entry.BuyAlertPrice != nil && price <= *entry.BuyAlertPrice {
			alerts = append(alerts, PriceAlert{
				Symbol:       entry.Symbol,
				CustomName:   entry.CustomName,
				Type:         "BUY",
				CurrentPrice: price,
				TargetPrice:  *entry.BuyAlertPrice,
				Message:      fmt.Sprintf("BUY ALERT: %s reached $%.4f", entry.CustomName, *entry.BuyAlertPrice),
				DataSource:   dataKey,
			})
		}
		if entry.SellAlertPrice != nil && price >= *entry.SellAlertPrice {
			alerts = append(alerts, PriceAlert{
				Symbol:       entry.Symbol,
				CustomName:   entry.CustomName,
				Type:         "SELL",
				CurrentPrice: price,
				TargetPrice:  *entry.SellAlertPrice,
				Message:      fmt.Sprintf("SELL ALERT: %s reached $%.4f", entry.CustomName, *entry.SellAlertPrice),
				DataSource:   dataKey,
			})
		}
	}
	return alerts
}

// findCurrentPrice matches a watchlist symbol against snapshot keys, which may
// carry suffixes like BTC_crypto or AAPL_stock.
func findCurrentPrice(current map[string]AssetData, symbol string) (float64, string, bool) {
	needle := strings.ToLower(symbol)
	for key, data := range current {
		if strings.Contains(strings.ToLower(key), needle) {
			return data.CurrentPrice, key, true
		}
	}
	return 0, "", false
}

func (w *Watchlist) save() error {
	w.config.UpdatedAt = time.Now()
	raw, err := json.MarshalIndent(w.config, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode watchlist config: %w", err)
	}
	if err := atomicWrite(w.path, raw); err != nil {
		return fmt.Errorf("unable to save watchlist config: %w", err)
	}
	return nil
}
