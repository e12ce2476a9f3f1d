package engine

import (
	"math"
	"testing"
)

func testParams() Params {
	return Params{
		MinPrice:         0.05,
		MaxPrice:         0.95,
		MinMove:          0.04,
		BigMove:          0.06,
		OpeningBigMove:   0.08,
		OpeningWindowMin: 30,
		MinSnaps:         12,
	}
}

func TestEvaluateTick(t *testing.T) {
	p := testParams()

	tests := []struct {
		name      string
		priceNow  float64
		pricePrev float64
		want      bool
	}{
		{"move at threshold", 0.54, 0.50, true},
		{"move above threshold", 0.60, 0.50, true},
		{"downward move", 0.46, 0.50, true},
		{"move below threshold", 0.53, 0.50, false},
		{"below min price guardrail", 0.04, 0.10, false},
		{"above max price guardrail", 0.96, 0.90, false},
		{"at min price guardrail", 0.05, 0.10, true},
		{"at max price guardrail", 0.95, 0.90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateTick(tt.priceNow, tt.pricePrev, p); got != tt.want {
				t.Errorf("EvaluateTick(%f, %f) = %t, want %t", tt.priceNow, tt.pricePrev, got, tt.want)
			}
		})
	}
}

func TestEvaluateWindow(t *testing.T) {
	p := testParams()

	move, ok := EvaluateWindow(0.50, 0.57, p)
	if !ok {
		t.Fatal("Expected qualifying window move")
	}
	if math.Abs(move-0.07) > 1e-9 {
		t.Errorf("Expected move 0.07, got %f", move)
	}

	move, ok = EvaluateWindow(0.57, 0.50, p)
	if !ok {
		t.Fatal("Expected qualifying downward window move")
	}
	if math.Abs(move+0.07) > 1e-9 {
		t.Errorf("Expected move -0.07, got %f", move)
	}

	if _, ok := EvaluateWindow(0.50, 0.55, p); ok {
		t.Error("Expected sub-threshold window move to be rejected")
	}
}

func TestEvaluateOpening(t *testing.T) {
	p := testParams()

	move, ok := EvaluateOpening(0.40, 0.50, 10, p)
	if !ok {
		t.Fatal("Expected qualifying opening move")
	}
	if math.Abs(move-0.10) > 1e-9 {
		t.Errorf("Expected move 0.10, got %f", move)
	}

	if _, ok := EvaluateOpening(0.40, 0.50, 31, p); ok {
		t.Error("Expected no opening signal after the window elapsed")
	}
	if _, ok := EvaluateOpening(0.40, 0.45, 10, p); ok {
		t.Error("Expected sub-threshold opening move to be rejected")
	}
}

func TestConfidenceRange(t *testing.T) {
	// Worst case stays at the floor, best case at the ceiling.
	low := Confidence(0.0, 0, 0.10, false, -10)
	if low != 1.0 {
		t.Errorf("Expected floor confidence 1.0, got %f", low)
	}

	high := Confidence(0.50, 100000, 0.01, true, 5)
	if high != 10.0 {
		t.Errorf("Expected ceiling confidence 10.0, got %f", high)
	}
}

func TestConfidenceMonotonicInMove(t *testing.T) {
	prev := 0.0
	for _, move := range []float64{0.0, 0.02, 0.04, 0.06, 0.08} {
		score := Confidence(move, 0, 0, false, 0)
		if score < prev {
			t.Errorf("Confidence decreased at move %f: %f < %f", move, score, prev)
		}
		prev = score
	}

	// The move component caps at +2.0.
	if Confidence(0.08, 0, 0, false, 0) != Confidence(0.50, 0, 0, false, 0) {
		t.Error("Expected move contribution to cap")
	}
}

func TestConfidenceComponents(t *testing.T) {
	base := Confidence(0.04, 0, 0, false, 0)

	if got := Confidence(0.04, 50000, 0, false, 0); math.Abs(got-base-1.0) > 1e-9 {
		t.Errorf("Expected +1.0 for deep liquidity, got delta %f", got-base)
	}
	if got := Confidence(0.04, 10000, 0, false, 0); math.Abs(got-base-0.5) > 1e-9 {
		t.Errorf("Expected +0.5 for moderate liquidity, got delta %f", got-base)
	}
	if got := Confidence(0.04, 0, 0.06, false, 0); math.Abs(got-base+1.0) > 1e-9 {
		t.Errorf("Expected -1.0 for wide spread, got delta %f", got-base)
	}
	if got := Confidence(0.04, 0, 0.01, false, 0); math.Abs(got-base-0.5) > 1e-9 {
		t.Errorf("Expected +0.5 for tight spread, got delta %f", got-base)
	}
	if got := Confidence(0.04, 0, 0, true, 0); math.Abs(got-base-0.5) > 1e-9 {
		t.Errorf("Expected +0.5 for live contract, got delta %f", got-base)
	}
	if got := Confidence(0.04, 0, 0, false, 0.5); math.Abs(got-base-0.5) > 1e-9 {
		t.Errorf("Expected league bonus applied, got delta %f", got-base)
	}
}
