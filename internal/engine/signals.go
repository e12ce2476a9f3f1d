package engine

import (
	"math"
	"time"
)

// Params holds the resolved numeric thresholds for one venue/league.
// Values are supplied by the configuration layer; the engine only consumes them.
type Params struct {
	// Price guardrails: observations outside [MinPrice, MaxPrice] never
	// trigger the tick-displacement signal.
	MinPrice float64
	MaxPrice float64

	// MinMove is the minimum tick-to-tick displacement that qualifies.
	MinMove float64
	// BigMove is the minimum window move for the slower scout signal.
	BigMove float64
	// OpeningBigMove and OpeningWindowMin bound the opening-move signal:
	// the contract appeared at most OpeningWindowMin minutes ago and already
	// moved at least OpeningBigMove from its first observed price.
	OpeningBigMove   float64
	OpeningWindowMin float64

	// MinSnaps is the warm-up observation count before any signal may fire.
	MinSnaps int

	// Cooldowns between two alerts of the same class for the same key.
	LiveCooldown    time.Duration
	PregameCooldown time.Duration

	// Quality filters, applied only when the venue reported the value.
	MinLiquidity float64
	MaxSpread    float64

	// LeagueBonus is a flat confidence bonus for the category.
	LeagueBonus float64

	// Exit ladder thresholds, in cents of probability.
	TP1Cents        float64
	TP2Cents        float64
	SLCents         float64
	TrailStartCents float64
	TrailGapCents   float64
	// TimeStopMin closes stale positions older than this many minutes that
	// never reached half of the first take-profit tier.
	TimeStopMin float64
}

// EvaluateTick reports whether the tick-to-tick displacement qualifies as
// alertable: the current price is inside the guardrails and the move against
// the immediately previous observation is at least MinMove.
func EvaluateTick(priceNow, pricePrev float64, p Params) bool {
	if priceNow < p.MinPrice || priceNow > p.MaxPrice {
		return false
	}
	return math.Abs(priceNow-pricePrev) >= p.MinMove
}

// EvaluateWindow returns the signed move between the oldest and newest prices
// of a window when its magnitude reaches BigMove. The boolean is false when
// the move does not qualify.
func EvaluateWindow(oldPrice, newPrice float64, p Params) (float64, bool) {
	move := newPrice - oldPrice
	if math.Abs(move) < p.BigMove {
		return 0, false
	}
	return move, true
}

// EvaluateOpening returns the signed move from the first observed price when
// the contract is still inside its opening window and has already moved at
// least OpeningBigMove.
func EvaluateOpening(firstSeenPrice, priceNow, elapsedMinutes float64, p Params) (float64, bool) {
	if elapsedMinutes > p.OpeningWindowMin {
		return 0, false
	}
	move := priceNow - firstSeenPrice
	if math.Abs(move) < p.OpeningBigMove {
		return 0, false
	}
	return move, true
}

// Confidence scores an alert on a 1-10 scale. It is a deterministic heuristic,
// not a statistical model: monotonically increasing in the move magnitude
// (capped), stepped up by liquidity tiers, nudged by spread tightness, with
// flat bonuses for in-play contracts and favored leagues.
func Confidence(move, liquidity, spread float64, live bool, leagueBonus float64) float64 {
	score := 5.0

	score += math.Min(math.Abs(move)*25, 2.0)

	switch {
	case liquidity >= 50000:
		score += 1.0
	case liquidity >= 10000:
		score += 0.5
	}

	switch {
	case spread > 0.05:
		score -= 1.0
	case spread > 0 && spread <= 0.02:
		score += 0.5
	}

	if live {
		score += 0.5
	}
	score += leagueBonus

	return math.Max(1.0, math.Min(10.0, score))
}
