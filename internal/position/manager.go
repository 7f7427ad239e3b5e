// Package position tracks open positions against live price: a per-refresh
// trading signal, P&L, and a one-way ACTIVE to CLOSED_* state machine with
// frozen final P&L. All mutation is serialized behind one mutex and every
// mutating call persists the whole collection once.
package position

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Type is the direction of a position.
type Type string

const (
	TypeLong  Type = "LONG"
	TypeShort Type = "SHORT"
)

// Status values. Closing reasons other than TP/SL/MANUAL produce a
// CLOSED_<reason> status via closedStatus.
const (
	StatusActive       = "ACTIVE"
	StatusClosedTP     = "CLOSED_TP"
	StatusClosedSL     = "CLOSED_SL"
	StatusClosedManual = "CLOSED_MANUAL"
)

func closedStatus(reason string) string {
	return "CLOSED_" + strings.ToUpper(reason)
}

// Position is an identity-bearing record, mutated on every refresh while
// ACTIVE and exactly once more when it closes.
type Position struct {
	ID              int       `json:"id"`
	Symbol          string    `json:"symbol"`
	EntryPrice      float64   `json:"entry_price"`
	PositionType    Type      `json:"position_type"`
	Quantity        float64   `json:"quantity"`
	TakeProfitPrice *float64  `json:"take_profit_price,omitempty"`
	CurrentPrice    float64   `json:"current_price"`
	EntryDate       time.Time `json:"entry_date"`
	LastUpdated     time.Time `json:"last_updated"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`

	PnL           float64 `json:"pnl"`
	PnLPct        float64 `json:"pnl_pct"`
	CurrentSignal Signal  `json:"current_signal"`
	ATRStopLoss   float64 `json:"atr_stop_loss"`

	ClosePrice  *float64   `json:"close_price,omitempty"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
	CloseReason string     `json:"close_reason,omitempty"`
	FinalPnL    *float64   `json:"final_pnl,omitempty"`
	FinalPnLPct *float64   `json:"final_pnl_pct,omitempty"`
}

// Active reports whether the position can still be mutated by refreshes.
func (p *Position) Active() bool {
	return p.Status == StatusActive
}

// Manager owns the position collection for all symbols and persists it after
// every mutating call.
type Manager struct {
	mu        sync.Mutex
	store     *Store
	positions map[string][]*Position
	logger    zerolog.Logger
}

// NewManager loads the persisted collection from dir.
func NewManager(dir string, logger zerolog.Logger) (*Manager, error) {
	store, err := NewStore(dir)
	if err != nil {
		return nil, err
	}

	positions, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:     store,
		positions: positions,
		logger:    logger.With().Str("component", "PositionManager").Logger(),
	}, nil
}

// Open creates a new ACTIVE position for symbol and persists the collection.
func (m *Manager) Open(symbol string, entryPrice float64, positionType Type, quantity float64, takeProfit *float64, notes string) (Position, error) {
	if entryPrice <= 0 {
		return Position{}, fmt.Errorf("entry price must be positive, got %v", entryPrice)
	}
	if positionType != TypeLong && positionType != TypeShort {
		return Position{}, fmt.Errorf("unknown position type %q", positionType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	now := time.Now()
	p := &Position{
		ID:              m.nextID(symbol),
		Symbol:          symbol,
		EntryPrice:      entryPrice,
		PositionType:    positionType,
		Quantity:        quantity,
		TakeProfitPrice: takeProfit,
		CurrentPrice:    entryPrice,
		EntryDate:       now,
		LastUpdated:     now,
		Status:          StatusActive,
		Notes:           notes,
		CurrentSignal:   SignalEntryZone,
	}

	m.positions[symbol] = append(m.positions[symbol], p)
	if err := m.save(); err != nil {
		return Position{}, err
	}

	m.logger.Info().Str("symbol", symbol).Int("id", p.ID).
		Str("type", string(positionType)).Float64("entry", entryPrice).
		Msg("position opened")
	return *p, nil
}

// nextID picks an ID unique within the symbol's list, surviving deletions.
func (m *Manager) nextID(symbol string) int {
	max := 0
	for _, p := range m.positions[symbol] {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// RefreshSignals updates every ACTIVE position of symbol against the current
// price: signal, P&L, ATR stop, and the auto-close transitions. Closed
// positions are never touched.
func (m *Manager) RefreshSignals(symbol string, currentPrice, atr float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	list, ok := m.positions[symbol]
	if !ok {
		return nil
	}

	changed := false
	for _, p := range list {
		if !p.Active() {
			continue
		}
		changed = true

		if atr <= 0 {
			atr = currentPrice * 0.02
		}
		if p.PositionType == TypeLong {
			p.ATRStopLoss = p.EntryPrice - 2*atr
		} else {
			p.ATRStopLoss = p.EntryPrice + 2*atr
		}

		p.CurrentPrice = currentPrice
		p.CurrentSignal = ClassifySignal(currentPrice, p.EntryPrice, p.PositionType)
		p.PnL, p.PnLPct = computePnL(p, currentPrice)
		p.LastUpdated = time.Now()

		// Auto-close: take-profit first, then the ATR stop.
		switch {
		case p.TakeProfitPrice != nil && takeProfitHit(p, currentPrice):
			m.closeLocked(p, currentPrice, "TP")
			p.CloseReason = "TAKE_PROFIT_HIT"
		case stopLossHit(p, currentPrice):
			m.closeLocked(p, currentPrice, "SL")
			p.CloseReason = "ATR_STOP_LOSS_HIT"
		}
	}

	if !changed {
		return nil
	}
	return m.save()
}

func takeProfitHit(p *Position, currentPrice float64) bool {
	if p.PositionType == TypeLong {
		return currentPrice >= *p.TakeProfitPrice
	}
	return currentPrice <= *p.TakeProfitPrice
}

func stopLossHit(p *Position, currentPrice float64) bool {
	if p.PositionType == TypeLong {
		return currentPrice <= p.ATRStopLoss
	}
	return currentPrice >= p.ATRStopLoss
}

// Close manually closes a position. closePrice nil means the last-seen
// current price. Returns false when no matching ACTIVE position exists, so
// retries are idempotent.
func (m *Manager) Close(symbol string, id int, closePrice *float64, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	for _, p := range m.positions[symbol] {
		if p.ID != id || !p.Active() {
			continue
		}

		price := p.CurrentPrice
		if closePrice != nil {
			price = *closePrice
		}
		if reason == "" {
			reason = "MANUAL"
		}
		m.closeLocked(p, price, reason)
		p.CloseReason = reason

		if err := m.save(); err != nil {
			return true, err
		}
		m.logger.Info().Str("symbol", symbol).Int("id", id).
			Str("reason", reason).Float64("close_price", price).
			Msg("position closed")
		return true, nil
	}
	return false, nil
}

// closeLocked performs the one-way transition to CLOSED_<reason> and freezes
// P&L at the close price. Caller holds the mutex.
func (m *Manager) closeLocked(p *Position, closePrice float64, reason string) {
	now := time.Now()
	p.Status = closedStatus(reason)
	p.ClosePrice = &closePrice
	p.CloseDate = &now
	p.CurrentPrice = closePrice
	p.LastUpdated = now

	pnl, pnlPct := computePnL(p, closePrice)
	p.PnL = pnl
	p.PnLPct = pnlPct
	p.FinalPnL = &pnl
	p.FinalPnLPct = &pnlPct
}

// Delete removes a position entirely. Returns false when it does not exist.
func (m *Manager) Delete(symbol string, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	list, ok := m.positions[symbol]
	if !ok {
		return false, nil
	}

	kept := list[:0]
	removed := false
	for _, p := range list {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return false, nil
	}

	if len(kept) == 0 {
		delete(m.positions, symbol)
	} else {
		m.positions[symbol] = kept
	}
	return true, m.save()
}

// Active returns copies of all ACTIVE positions keyed by symbol.
func (m *Manager) Active() map[string][]Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := map[string][]Position{}
	for symbol, list := range m.positions {
		for _, p := range list {
			if p.Active() {
				out[symbol] = append(out[symbol], *p)
			}
		}
	}
	return out
}

// All returns copies of every position keyed by symbol.
func (m *Manager) All() map[string][]Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]Position, len(m.positions))
	for symbol, list := range m.positions {
		copies := make([]Position, len(list))
		for i, p := range list {
			copies[i] = *p
		}
		out[symbol] = copies
	}
	return out
}

func computePnL(p *Position, price float64) (pnl, pnlPct float64) {
	if p.PositionType == TypeLong {
		pnl = (price - p.EntryPrice) * p.Quantity
		pnlPct = (price - p.EntryPrice) / p.EntryPrice * 100
	} else {
		pnl = (p.EntryPrice - price) * p.Quantity
		pnlPct = (p.EntryPrice - price) / p.EntryPrice * 100
	}
	return pnl, pnlPct
}

func (m *Manager) save() error {
	if err := m.store.Save(m.positions); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist positions")
		return err
	}
	return nil
}
