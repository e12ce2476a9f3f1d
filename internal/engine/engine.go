package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/storeupwealth-sys/SportsEdge/internal/logger"
	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// Alert classes. Each class cools down independently per key.
const (
	ClassEntry   = "entry"   // tick displacement; the only class that opens positions
	ClassScout   = "scout"   // window momentum
	ClassOpening = "opening" // big move shortly after first sight
)

// EventKind distinguishes the events produced by one scan cycle.
type EventKind int

const (
	KindAlert EventKind = iota
	KindPositionOpened
	KindPositionUpdate
)

// Event is one observable outcome of a scan cycle: an alert that passed its
// cooldown, a position opening, or a position update from the exit ladder.
type Event struct {
	Kind EventKind

	// Alert is set for KindAlert and KindPositionOpened events.
	Alert models.Alert

	// The remaining fields describe position updates.
	Key        string
	Outcome    string
	URL        string
	Action     ExitAction
	EntryPrice float64
	Price      float64
	Closed     bool
}

// DefaultMaxAlertLog bounds the persisted alert log when unconfigured.
const DefaultMaxAlertLog = 500

// Config configures the engine.
type Config struct {
	// HistoryCapacity bounds each key's rolling buffer.
	HistoryCapacity int
	// MaxAlertLog bounds the in-memory alert log, oldest trimmed first.
	MaxAlertLog int
	// Resolve returns the thresholds for a tick's venue/league.
	Resolve func(venue, league string) Params
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time
}

// Engine owns all mutable scan state: history buffers, cooldowns, open
// positions, first-seen records, and the bounded alert log. It is driven by a
// single scan loop; nothing else mutates it.
type Engine struct {
	cfg       Config
	history   *History
	cooldowns *CooldownGate
	book      *Book
	firstSeen map[string]models.FirstSeen
	alertLog  []models.Alert
}

// New creates an engine with empty state.
func New(cfg Config) *Engine {
	if cfg.MaxAlertLog <= 0 {
		cfg.MaxAlertLog = DefaultMaxAlertLog
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cfg:       cfg,
		history:   NewHistory(cfg.HistoryCapacity),
		cooldowns: NewCooldownGate(),
		book:      NewBook(),
		firstSeen: make(map[string]models.FirstSeen),
		alertLog:  []models.Alert{},
	}
}

// Restore loads persisted state into the engine. A nil snapshot is a cold start.
func (e *Engine) Restore(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	if snap.History != nil {
		e.history.Restore(snap.History)
	}
	e.cooldowns.Restore(snap.Cooldowns)
	if snap.Positions != nil {
		e.book.Restore(snap.Positions)
	}
	e.firstSeen = make(map[string]models.FirstSeen, len(snap.FirstSeen))
	for key, fs := range snap.FirstSeen {
		e.firstSeen[key] = fs
	}
	e.alertLog = append([]models.Alert{}, snap.Alerts...)
	e.trimAlertLog()
}

// Snapshot assembles the full serializable engine state.
func (e *Engine) Snapshot() *models.Snapshot {
	firstSeen := make(map[string]models.FirstSeen, len(e.firstSeen))
	for key, fs := range e.firstSeen {
		firstSeen[key] = fs
	}
	return &models.Snapshot{
		History:   e.history.Snapshot(),
		Cooldowns: e.cooldowns.Snapshot(),
		Positions: e.book.Snapshot(),
		FirstSeen: firstSeen,
		Alerts:    append([]models.Alert{}, e.alertLog...),
	}
}

// OpenPositions returns the number of currently open positions.
func (e *Engine) OpenPositions() int {
	return e.book.Len()
}

// ProcessScan runs one scan cycle over the discovered ticks and returns the
// resulting events in evaluation order. A failure in one key's evaluation is
// recovered and logged; it never aborts the cycle for the remaining keys.
func (e *Engine) ProcessScan(ticks []models.Tick) []Event {
	now := e.cfg.Now().Unix()
	var events []Event
	for i := range ticks {
		events = e.safeProcessTick(ticks[i], now, events)
	}
	return events
}

func (e *Engine) safeProcessTick(tick models.Tick, now int64, events []Event) (out []Event) {
	// Keep events accumulated from earlier keys if this one panics.
	out = events
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered while processing key %s: %v", tick.Key, r)
		}
	}()
	return e.processTick(tick, now, events)
}

// processTick handles a single observation. Out-of-guardrail prices are still
// pushed into history so warm-up counts every observation; the guardrails only
// gate signal evaluation.
func (e *Engine) processTick(tick models.Tick, now int64, events []Event) []Event {
	if err := tick.Validate(); err != nil {
		logger.Warn("Skipping malformed tick for key %s: %v", tick.Key, err)
		return events
	}

	p := e.cfg.Resolve(tick.Venue, tick.League)

	e.history.Push(tick.Key, tick.Price, tick.Timestamp)
	fs, seen := e.firstSeen[tick.Key]
	if !seen {
		fs = models.FirstSeen{Price: tick.Price, SeenAt: now}
		e.firstSeen[tick.Key] = fs
	}

	if e.history.Len(tick.Key) >= p.MinSnaps && e.passesFilters(tick, p) {
		events = e.evaluateSignals(tick, fs, now, p, events)
	}

	// Position maintenance runs even during warm-up so restored positions are
	// never orphaned.
	if pos, ok := e.book.Get(tick.Key); ok {
		e.book.UpdatePeak(tick.Key, tick.Price)
		if action, fired := e.book.EvaluateExit(tick.Key, tick.Price, now, p); fired {
			closed := action.Closes()
			events = append(events, Event{
				Kind:       KindPositionUpdate,
				Key:        tick.Key,
				Outcome:    tick.Outcome,
				URL:        tick.URL,
				Action:     action,
				EntryPrice: pos.EntryPrice,
				Price:      tick.Price,
				Closed:     closed,
			})
			if closed {
				e.book.Close(tick.Key)
			}
		}
	}

	return events
}

// evaluateSignals checks the three signal kinds in priority order: entry
// displacement, scout window momentum, opening move. The first class that
// both qualifies and clears its cooldown emits; lower-priority classes are
// not evaluated for the same tick, so one price move produces one alert.
func (e *Engine) evaluateSignals(tick models.Tick, fs models.FirstSeen, now int64, p Params, events []Event) []Event {
	cooldown := p.PregameCooldown
	if tick.Live {
		cooldown = p.LiveCooldown
	}

	if prev, ok := e.history.Previous(tick.Key); ok && EvaluateTick(tick.Price, prev, p) {
		if e.cooldowns.TryAcquire(tick.Key, ClassEntry, now, cooldown) {
			alert := e.recordAlert(tick, ClassEntry, tick.Price-prev, now, p)
			events = append(events, Event{Kind: KindAlert, Alert: alert})
			if e.book.Open(tick.Key, tick.Price, now) {
				events = append(events, Event{Kind: KindPositionOpened, Alert: alert})
			}
			return events
		}
	}

	if oldPrice, newPrice, ok := e.history.Window(tick.Key, p.MinSnaps); ok {
		if move, qualified := EvaluateWindow(oldPrice, newPrice, p); qualified {
			if e.cooldowns.TryAcquire(tick.Key, ClassScout, now, cooldown) {
				alert := e.recordAlert(tick, ClassScout, move, now, p)
				return append(events, Event{Kind: KindAlert, Alert: alert})
			}
		}
	}

	elapsedMinutes := float64(now-fs.SeenAt) / 60
	if move, qualified := EvaluateOpening(fs.Price, tick.Price, elapsedMinutes, p); qualified {
		if e.cooldowns.TryAcquire(tick.Key, ClassOpening, now, cooldown) {
			alert := e.recordAlert(tick, ClassOpening, move, now, p)
			return append(events, Event{Kind: KindAlert, Alert: alert})
		}
	}

	return events
}

// passesFilters applies the liquidity and spread quality filters. A missing
// value never filters a tick out; the venue simply did not report it.
func (e *Engine) passesFilters(tick models.Tick, p Params) bool {
	if tick.HasLiquidity && tick.Liquidity < p.MinLiquidity {
		return false
	}
	if tick.HasSpread && p.MaxSpread > 0 && tick.Spread > p.MaxSpread {
		return false
	}
	return true
}

func (e *Engine) recordAlert(tick models.Tick, class string, move float64, now int64, p Params) models.Alert {
	// Volume stands in for market depth when the venue reports no liquidity.
	depth := tick.Liquidity
	if !tick.HasLiquidity && tick.HasVolume {
		depth = tick.Volume
	}
	alert := models.Alert{
		ID:         uuid.New().String(),
		Key:        tick.Key,
		Venue:      tick.Venue,
		League:     tick.League,
		Class:      class,
		EventID:    tick.EventID,
		Outcome:    tick.Outcome,
		Price:      tick.Price,
		Move:       move,
		Confidence: Confidence(move, depth, tick.Spread, tick.Live, p.LeagueBonus),
		Live:       tick.Live,
		URL:        tick.URL,
		DetectedAt: now,
	}
	e.alertLog = append(e.alertLog, alert)
	e.trimAlertLog()
	return alert
}

func (e *Engine) trimAlertLog() {
	if excess := len(e.alertLog) - e.cfg.MaxAlertLog; excess > 0 {
		e.alertLog = append(e.alertLog[:0], e.alertLog[excess:]...)
	}
}
