package engine

import (
	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// ExitAction identifies which exit rule fired for an open position.
type ExitAction int

const (
	TakeProfitPartial ExitAction = iota
	TakeProfitFull
	StopLoss
	TrailingStop
	TimeStop
)

// String stringifies the provided exit action.
func (a ExitAction) String() string {
	switch a {
	case TakeProfitPartial:
		return "TP1"
	case TakeProfitFull:
		return "TP2"
	case StopLoss:
		return "STOP"
	case TrailingStop:
		return "TRAIL"
	case TimeStop:
		return "TIME"
	default:
		return "unknown"
	}
}

// Closes reports whether the action closes the position. The first take-profit
// tier is a scale-out signal only and leaves the position open.
func (a ExitAction) Closes() bool {
	return a != TakeProfitPartial
}

// Book tracks at most one open position per outcome key.
type Book struct {
	positions map[string]*models.Position
}

// NewBook creates an empty position book.
func NewBook() *Book {
	return &Book{positions: make(map[string]*models.Position)}
}

// Open creates a position for key at the given entry price. It is a no-op
// returning false when a position is already open: no averaging-in, no
// re-entry until the existing position closes.
func (b *Book) Open(key string, entryPrice float64, now int64) bool {
	if _, ok := b.positions[key]; ok {
		return false
	}
	b.positions[key] = &models.Position{
		EntryPrice: entryPrice,
		OpenedAt:   now,
		PeakPrice:  entryPrice,
	}
	return true
}

// Get returns a copy of the open position for key, if any.
func (b *Book) Get(key string) (models.Position, bool) {
	pos, ok := b.positions[key]
	if !ok {
		return models.Position{}, false
	}
	return *pos, true
}

// Len returns the number of open positions.
func (b *Book) Len() int {
	return len(b.positions)
}

// UpdatePeak raises the high-water mark for key's position when the current
// price exceeds it.
func (b *Book) UpdatePeak(key string, priceNow float64) {
	if pos, ok := b.positions[key]; ok && priceNow > pos.PeakPrice {
		pos.PeakPrice = priceNow
	}
}

// EvaluateExit checks the exit ladder for key's open position, first match
// wins. The ordering is deliberate: TP2 before TP1 so a large favorable move
// takes the full profit, and all profit exits before stop, trail, and time.
// The boolean is false when no position is open or no rule fired.
func (b *Book) EvaluateExit(key string, priceNow float64, now int64, p Params) (ExitAction, bool) {
	pos, ok := b.positions[key]
	if !ok {
		return 0, false
	}

	pnlCents := (priceNow - pos.EntryPrice) * 100

	switch {
	case pnlCents >= p.TP2Cents:
		return TakeProfitFull, true
	case pnlCents >= p.TP1Cents:
		return TakeProfitPartial, true
	case pnlCents <= -p.SLCents:
		return StopLoss, true
	}

	if (pos.PeakPrice-pos.EntryPrice)*100 >= p.TrailStartCents &&
		priceNow <= pos.PeakPrice-p.TrailGapCents/100 {
		return TrailingStop, true
	}

	if float64(now-pos.OpenedAt)/60 >= p.TimeStopMin && pnlCents < p.TP1Cents*0.5 {
		return TimeStop, true
	}

	return 0, false
}

// Close removes the position for key unconditionally.
func (b *Book) Close(key string) {
	delete(b.positions, key)
}

// Snapshot returns all open positions for persistence.
func (b *Book) Snapshot() map[string]models.Position {
	out := make(map[string]models.Position, len(b.positions))
	for key, pos := range b.positions {
		out[key] = *pos
	}
	return out
}

// Restore replaces all open positions from a persisted snapshot.
func (b *Book) Restore(positions map[string]models.Position) {
	b.positions = make(map[string]*models.Position, len(positions))
	for key, pos := range positions {
		p := pos
		b.positions[key] = &p
	}
}
