package models

// Observation is one (timestamp, price) entry in an outcome's rolling history.
type Observation struct {
	Timestamp int64   `json:"ts"`
	Price     float64 `json:"price"`
}

// Position is a synthetic position held against one outcome key. PeakPrice is
// the high-water mark since entry and never decreases while the position is open.
type Position struct {
	EntryPrice float64 `json:"entry_price"`
	OpenedAt   int64   `json:"opened_at"`
	PeakPrice  float64 `json:"peak_price"`
}

// CooldownRecord is the last fire time for one (key, alert class) pair.
type CooldownRecord struct {
	Key      string `json:"key"`
	Class    string `json:"class"`
	LastFire int64  `json:"last_fire"`
}

// FirstSeen records the price and time an outcome was first observed,
// feeding the opening-move signal.
type FirstSeen struct {
	Price  float64 `json:"price"`
	SeenAt int64   `json:"seen_at"`
}

// Alert is one emitted alert, kept in a bounded log and persisted.
type Alert struct {
	ID         string  `json:"id"`
	Key        string  `json:"key"`
	Venue      string  `json:"venue"`
	League     string  `json:"league"`
	Class      string  `json:"class"`
	EventID    string  `json:"event_id"`
	Outcome    string  `json:"outcome"`
	Price      float64 `json:"price"`
	Move       float64 `json:"move"`
	Confidence float64 `json:"confidence"`
	Live       bool    `json:"live"`
	URL        string  `json:"url,omitempty"`
	DetectedAt int64   `json:"detected_at"`
}

// Result is the final outcome of an event, used to grade past alerts.
type Result struct {
	EventID    string `json:"event_id"`
	Winner     string `json:"winner"`
	FinishedAt int64  `json:"finished_at"`
}

// Snapshot is the full serializable engine state written at the end of every
// scan cycle and reloaded on startup.
type Snapshot struct {
	History   map[string][]Observation `json:"history"`
	Cooldowns []CooldownRecord         `json:"cooldowns"`
	Positions map[string]Position      `json:"positions"`
	FirstSeen map[string]FirstSeen     `json:"first_seen"`
	Alerts    []Alert                  `json:"alerts"`
}

// NewSnapshot returns an empty snapshot, the cold-start state.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		History:   make(map[string][]Observation),
		Cooldowns: []CooldownRecord{},
		Positions: make(map[string]Position),
		FirstSeen: make(map[string]FirstSeen),
		Alerts:    []Alert{},
	}
}
