// Package livefeed maintains a websocket subscription to a live-score feed
// and exposes the latest score per event through a read side channel. Writes
// are atomic replace-per-key; the scan loop tolerates stale or absent values.
package livefeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/storeupwealth-sys/SportsEdge/internal/logger"
)

// Score is the latest known state of one live event.
type Score struct {
	EventID   string `json:"event_id"`
	Period    string `json:"period"`
	Clock     string `json:"clock"`
	Home      int    `json:"home"`
	Away      int    `json:"away"`
	Final     bool   `json:"final"`
	Winner    string `json:"winner,omitempty"`
	UpdatedAt int64  `json:"-"`
}

const finalsBuffer = 64

// Listener owns the feed connection and the score side channel. It is the only
// writer; the scan loop only reads.
type Listener struct {
	url               string
	reconnectDelay    time.Duration
	maxReconnectDelay time.Duration

	scores *Channel
	finals chan Score
}

// Config configures the listener.
type Config struct {
	URL               string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

// New creates a listener. Run must be called to start receiving.
func New(cfg Config) *Listener {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.MaxReconnectDelay <= 0 {
		cfg.MaxReconnectDelay = 2 * time.Minute
	}
	return &Listener{
		url:               cfg.URL,
		reconnectDelay:    cfg.ReconnectDelay,
		maxReconnectDelay: cfg.MaxReconnectDelay,
		scores:            NewChannel(),
		finals:            make(chan Score, finalsBuffer),
	}
}

// Scores returns the read side channel.
func (l *Listener) Scores() *Channel {
	return l.scores
}

// Finals returns the channel of events that just went final. When the buffer
// is full further finals are dropped; the daily recap still catches them.
func (l *Listener) Finals() <-chan Score {
	return l.finals
}

// Run connects to the feed and reads until ctx is cancelled, reconnecting
// with doubling delay after any failure.
func (l *Listener) Run(ctx context.Context) {
	delay := l.reconnectDelay
	for {
		if err := l.readFeed(ctx); err != nil {
			logger.Warn("Live feed disconnected: %v (reconnecting in %v)", err, delay)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > l.maxReconnectDelay {
			delay = l.maxReconnectDelay
		}
	}
}

func (l *Listener) readFeed(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Info("Live feed connected: %s", l.url)

	// Unblock ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		l.handleMessage(data)
	}
}

func (l *Listener) handleMessage(data []byte) {
	var score Score
	if err := json.Unmarshal(data, &score); err != nil {
		logger.Debug("Dropping unparseable live feed message: %v", err)
		return
	}
	if score.EventID == "" {
		return
	}
	score.UpdatedAt = time.Now().Unix()

	prev, known := l.scores.Get(score.EventID)
	l.scores.Set(score)

	if score.Final && (!known || !prev.Final) {
		select {
		case l.finals <- score:
		default:
			logger.Warn("Finals channel at capacity, dropping final for %s", score.EventID)
		}
	}
}
