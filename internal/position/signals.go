package position

// Signal classifies an open position against its entry price on each refresh.
type Signal string

const (
	SignalWaitForDip      Signal = "WAIT_FOR_DIP"
	SignalWaitForRally    Signal = "WAIT_FOR_RALLY"
	SignalEntryZone       Signal = "ENTRY_ZONE"
	SignalTakeProfit      Signal = "TAKE_PROFIT"
	SignalHolding         Signal = "HOLDING"
	SignalStopLossWarning Signal = "STOP_LOSS_WARNING"
)

// ClassifySignal derives the trading signal for a position from current price
// vs entry. The entry band is checked first so a price within 2% of entry
// always reads ENTRY_ZONE, even when it also clears a profit or loss
// threshold.
func ClassifySignal(currentPrice, entryPrice float64, positionType Type) Signal {
	if entryPrice <= 0 {
		return SignalHolding
	}

	if abs(currentPrice-entryPrice)/entryPrice <= 0.02 {
		return SignalEntryZone
	}

	switch positionType {
	case TypeLong:
		pct := (currentPrice - entryPrice) / entryPrice * 100
		switch {
		case pct >= 5:
			return SignalTakeProfit
		case pct <= -2:
			return SignalStopLossWarning
		case currentPrice > entryPrice*1.02:
			return SignalWaitForDip
		default:
			return SignalHolding
		}
	case TypeShort:
		pct := (entryPrice - currentPrice) / entryPrice * 100
		switch {
		case pct >= 5:
			return SignalTakeProfit
		case pct <= -2:
			return SignalStopLossWarning
		case currentPrice < entryPrice*0.98:
			return SignalWaitForRally
		default:
			return SignalHolding
		}
	}
	return SignalHolding
}

// Interpretation explains a signal for presentation consumers.
type Interpretation struct {
	Description string `json:"description"`
	Action      string `json:"action"`
	Severity    string `json:"severity"`
}

var interpretations = map[Signal]Interpretation{
	SignalWaitForDip: {
		Description: "Price is more than 2% above your entry. Wait for a pullback before adding.",
		Action:      "WAIT - do not buy now",
		Severity:    "warn",
	},
	SignalWaitForRally: {
		Description: "Short position with solid gains. Wait for a rally before covering.",
		Action:      "WAIT - do not cover now",
		Severity:    "warn",
	},
	SignalEntryZone: {
		Description: "Price is within 2% of your entry. Good zone to enter or add.",
		Action:      "ENTER or ADD",
		Severity:    "ok",
	},
	SignalTakeProfit: {
		Description: "Gains above 5%. Consider taking partial or full profits.",
		Action:      "TAKE PROFITS",
		Severity:    "ok",
	},
	SignalHolding: {
		Description: "Position stable. Hold and monitor.",
		Action:      "HOLD",
		Severity:    "info",
	},
	SignalStopLossWarning: {
		Description: "Losses beyond 2%. Consider closing or tightening the stop.",
		Action:      "REVIEW POSITION",
		Severity:    "alert",
	},
}

// Interpret returns the human-facing reading of a signal.
func Interpret(signal Signal) Interpretation {
	if in, ok := interpretations[signal]; ok {
		return in
	}
	return Interpretation{Description: "Unknown signal", Action: "REVIEW", Severity: "info"}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
