package position

import "testing"

func TestClassifySignalLong(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		want    Signal
	}{
		{"just above entry", 101, SignalEntryZone},
		{"band edge", 100.5, SignalEntryZone},
		{"exactly two percent", 102, SignalEntryZone},
		{"ran away from entry", 103, SignalWaitForDip},
		{"profit threshold", 106, SignalTakeProfit},
		{"losing ground", 97, SignalStopLossWarning},
		{"small loss outside band", 97.9, SignalStopLossWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySignal(tt.current, 100, TypeLong); got != tt.want {
				t.Errorf("ClassifySignal(%v, 100, LONG) = %v, want %v", tt.current, got, tt.want)
			}
		})
	}
}

func TestClassifySignalShort(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		want    Signal
	}{
		{"near entry", 101, SignalEntryZone},
		{"profit threshold", 94, SignalTakeProfit},
		{"moving against", 103, SignalStopLossWarning},
		{"gain but not there yet", 97, SignalWaitForRally},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySignal(tt.current, 100, TypeShort); got != tt.want {
				t.Errorf("ClassifySignal(%v, 100, SHORT) = %v, want %v", tt.current, got, tt.want)
			}
		})
	}
}

func TestClassifySignalEntryBandWins(t *testing.T) {
	// 100.5 is both inside the band and below the 2% run-away threshold;
	// the band must win over every other reading.
	if got := ClassifySignal(100.5, 100, TypeLong); got != SignalEntryZone {
		t.Errorf("band should take precedence, got %v", got)
	}
}

func TestClassifySignalBadEntry(t *testing.T) {
	if got := ClassifySignal(100, 0, TypeLong); got != SignalHolding {
		t.Errorf("zero entry should read HOLDING, got %v", got)
	}
}

func TestInterpret(t *testing.T) {
	in := Interpret(SignalTakeProfit)
	if in.Action != "TAKE PROFITS" {
		t.Errorf("unexpected action %q", in.Action)
	}

	unknown := Interpret(Signal("BOGUS"))
	if unknown.Description != "Unknown signal" {
		t.Errorf("unexpected fallback %+v", unknown)
	}
}
