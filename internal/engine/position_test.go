package engine

import (
	"testing"
)

func exitParams() Params {
	return Params{
		TP1Cents:        3,
		TP2Cents:        6,
		SLCents:         2,
		TrailStartCents: 4,
		TrailGapCents:   2,
		TimeStopMin:     20,
	}
}

func TestBookOpenOnce(t *testing.T) {
	b := NewBook()

	if !b.Open("k", 0.50, 1000) {
		t.Fatal("Expected first open to succeed")
	}
	if b.Open("k", 0.60, 2000) {
		t.Error("Expected second open for the same key to be rejected")
	}

	pos, ok := b.Get("k")
	if !ok {
		t.Fatal("Expected position to exist")
	}
	if pos.EntryPrice != 0.50 {
		t.Errorf("Expected original entry price kept, got %f", pos.EntryPrice)
	}
	if pos.PeakPrice != 0.50 {
		t.Errorf("Expected peak initialized to entry, got %f", pos.PeakPrice)
	}
	if b.Len() != 1 {
		t.Errorf("Expected 1 open position, got %d", b.Len())
	}
}

func TestExitLadderTP2BeatsTP1(t *testing.T) {
	b := NewBook()
	b.Open("k", 0.50, 1000)

	// +7 cents clears both tiers; the full take-profit must win.
	action, fired := b.EvaluateExit("k", 0.57, 1060, exitParams())
	if !fired {
		t.Fatal("Expected an exit to fire")
	}
	if action != TakeProfitFull {
		t.Errorf("Expected TP2 priority over TP1, got %s", action)
	}
	if !action.Closes() {
		t.Error("Expected TP2 to close the position")
	}
}

func TestExitLadderTP1DoesNotClose(t *testing.T) {
	b := NewBook()
	b.Open("k", 0.50, 1000)

	action, fired := b.EvaluateExit("k", 0.53, 1060, exitParams())
	if !fired {
		t.Fatal("Expected TP1 to fire at +3 cents")
	}
	if action != TakeProfitPartial {
		t.Errorf("Expected TP1, got %s", action)
	}
	if action.Closes() {
		t.Error("TP1 is a scale-out signal and must not close the position")
	}
}

func TestExitLadderStopLoss(t *testing.T) {
	b := NewBook()
	b.Open("k", 0.50, 1000)

	action, fired := b.EvaluateExit("k", 0.48, 1060, exitParams())
	if !fired {
		t.Fatal("Expected stop loss at -2 cents")
	}
	if action != StopLoss {
		t.Errorf("Expected STOP, got %s", action)
	}
	if !action.Closes() {
		t.Error("Expected stop loss to close the position")
	}
}

func TestExitLadderTrailingStop(t *testing.T) {
	b := NewBook()
	b.Open("k", 0.50, 1000)

	// Peak runs to 0.55 (trail armed at +4 cents), then the price drops to
	// 0.52, clearing the 2-cent gap below the peak. Note 0.52 is also below
	// TP1 (+2 cents < 3), so only the trail can fire.
	b.UpdatePeak("k", 0.55)
	action, fired := b.EvaluateExit("k", 0.52, 1060, exitParams())
	if !fired {
		t.Fatal("Expected trailing stop to fire")
	}
	if action != TrailingStop {
		t.Errorf("Expected TRAIL, got %s", action)
	}
}

func TestExitLadderTrailNotArmedBelowStart(t *testing.T) {
	b := NewBook()
	b.Open("k", 0.50, 1000)

	// Peak only reached +3 cents; the trail never arms, and 0.52 is inside
	// every other band, so nothing fires.
	b.UpdatePeak("k", 0.53)
	if _, fired := b.EvaluateExit("k", 0.52, 1060, exitParams()); fired {
		t.Error("Expected no exit with an unarmed trail")
	}
}

func TestExitLadderTimeStop(t *testing.T) {
	b := NewBook()
	b.Open("k", 0.50, 1000)

	// 21 minutes later with +0.5 cents, below half of TP1.
	action, fired := b.EvaluateExit("k", 0.505, 1000+21*60, exitParams())
	if !fired {
		t.Fatal("Expected time stop on a stale flat position")
	}
	if action != TimeStop {
		t.Errorf("Expected TIME, got %s", action)
	}

	// 19 minutes in, the same price must not fire.
	b2 := NewBook()
	b2.Open("k", 0.50, 1000)
	if _, fired := b2.EvaluateExit("k", 0.505, 1000+19*60, exitParams()); fired {
		t.Error("Expected no time stop before the window elapsed")
	}

	// Old but progressing (at least half of TP1) must not time out.
	b3 := NewBook()
	b3.Open("k", 0.50, 1000)
	if _, fired := b3.EvaluateExit("k", 0.52, 1000+21*60, exitParams()); fired {
		t.Error("Expected no time stop on a position above half TP1")
	}
}

func TestUpdatePeakOnlyRaises(t *testing.T) {
	b := NewBook()
	b.Open("k", 0.50, 1000)

	b.UpdatePeak("k", 0.55)
	b.UpdatePeak("k", 0.52)

	pos, _ := b.Get("k")
	if pos.PeakPrice != 0.55 {
		t.Errorf("Expected peak to stay at high-water mark 0.55, got %f", pos.PeakPrice)
	}
}

func TestBookCloseAllowsReentry(t *testing.T) {
	b := NewBook()
	b.Open("k", 0.50, 1000)
	b.Close("k")

	if _, ok := b.Get("k"); ok {
		t.Error("Expected position removed after close")
	}
	if !b.Open("k", 0.60, 2000) {
		t.Error("Expected re-entry after close")
	}
}

func TestBookSnapshotRestoreRoundTrip(t *testing.T) {
	b := NewBook()
	b.Open("a", 0.50, 1000)
	b.Open("b", 0.30, 2000)
	b.UpdatePeak("a", 0.55)

	restored := NewBook()
	restored.Restore(b.Snapshot())

	if restored.Len() != 2 {
		t.Fatalf("Expected 2 restored positions, got %d", restored.Len())
	}
	pos, ok := restored.Get("a")
	if !ok {
		t.Fatal("Expected position a restored")
	}
	if pos.EntryPrice != 0.50 || pos.PeakPrice != 0.55 || pos.OpenedAt != 1000 {
		t.Errorf("Unexpected restored position: %+v", pos)
	}
}
