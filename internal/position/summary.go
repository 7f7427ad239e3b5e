package position

import (
	"math"
	"strings"
)

// SymbolSummary aggregates one symbol's positions.
type SymbolSummary struct {
	Active      int     `json:"active"`
	Closed      int     `json:"closed"`
	OpenPnL     float64 `json:"open_pnl"`
	RealizedPnL float64 `json:"realized_pnl"`
}

// Summary is a portfolio-level view of the whole collection.
type Summary struct {
	TotalPositions  int                      `json:"total_positions"`
	ActivePositions int                      `json:"active_positions"`
	ClosedPositions int                      `json:"closed_positions"`
	OpenPnL         float64                  `json:"open_pnl"`
	RealizedPnL     float64                  `json:"realized_pnl"`
	WinRate         float64                  `json:"win_rate"`
	Signals         map[Signal]int           `json:"signals"`
	Symbols         map[string]SymbolSummary `json:"symbols"`
}

// Summarize tallies counts, P&L, win rate over closed positions, and the
// current signal histogram of the active ones.
func (m *Manager) Summarize() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		Signals: map[Signal]int{},
		Symbols: map[string]SymbolSummary{},
	}

	wins := 0
	for symbol, list := range m.positions {
		sym := s.Symbols[symbol]
		for _, p := range list {
			s.TotalPositions++
			if p.Active() {
				s.ActivePositions++
				s.OpenPnL += p.PnL
				s.Signals[p.CurrentSignal]++
				sym.Active++
				sym.OpenPnL += p.PnL
				continue
			}

			s.ClosedPositions++
			sym.Closed++
			if p.FinalPnL != nil {
				s.RealizedPnL += *p.FinalPnL
				sym.RealizedPnL += *p.FinalPnL
				if *p.FinalPnL > 0 {
					wins++
				}
			}
		}
		sym.OpenPnL = round2(sym.OpenPnL)
		sym.RealizedPnL = round2(sym.RealizedPnL)
		s.Symbols[symbol] = sym
	}

	if s.ClosedPositions > 0 {
		s.WinRate = round2(float64(wins) / float64(s.ClosedPositions) * 100)
	}
	s.OpenPnL = round2(s.OpenPnL)
	s.RealizedPnL = round2(s.RealizedPnL)
	return s
}

// Get returns a copy of one position by symbol and ID.
func (m *Manager) Get(symbol string, id int) (Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.positions[strings.ToUpper(symbol)] {
		if p.ID == id {
			return *p, true
		}
	}
	return Position{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
