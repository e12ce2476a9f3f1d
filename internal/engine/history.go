// Package engine implements the signal/position core: rolling price history,
// movement signals, cooldown gating, synthetic positions with rule-based
// exits, and the per-cycle scan orchestrator that composes them.
package engine

import "github.com/storeupwealth-sys/SportsEdge/internal/models"

// DefaultHistoryCapacity bounds a key's rolling buffer when no capacity is configured.
const DefaultHistoryCapacity = 256

// History holds a bounded rolling buffer of price observations per outcome key.
// Buffers are created lazily on first push and evicted oldest-first at capacity.
type History struct {
	capacity int
	buffers  map[string][]models.Observation
}

// NewHistory creates an empty history store with the given per-key capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		buffers:  make(map[string][]models.Observation),
	}
}

// Push appends one observation for key, silently evicting the oldest entry
// once the buffer exceeds capacity.
func (h *History) Push(key string, price float64, timestamp int64) {
	buf := append(h.buffers[key], models.Observation{Timestamp: timestamp, Price: price})
	if len(buf) > h.capacity {
		buf = append(buf[:0], buf[1:]...)
	}
	h.buffers[key] = buf
}

// Len returns the number of observations held for key.
func (h *History) Len(key string) int {
	return len(h.buffers[key])
}

// Previous returns the second-most-recent price for key.
// The boolean is false when fewer than two observations exist.
func (h *History) Previous(key string) (float64, bool) {
	buf := h.buffers[key]
	if len(buf) < 2 {
		return 0, false
	}
	return buf[len(buf)-2].Price, true
}

// Window returns the oldest-of-last-n and newest prices for key.
// The boolean is false when fewer than n observations exist.
func (h *History) Window(key string, n int) (oldest, newest float64, ok bool) {
	buf := h.buffers[key]
	if n < 1 || len(buf) < n {
		return 0, 0, false
	}
	return buf[len(buf)-n].Price, buf[len(buf)-1].Price, true
}

// Snapshot returns a deep copy of all buffers for persistence.
func (h *History) Snapshot() map[string][]models.Observation {
	out := make(map[string][]models.Observation, len(h.buffers))
	for key, buf := range h.buffers {
		cp := make([]models.Observation, len(buf))
		copy(cp, buf)
		out[key] = cp
	}
	return out
}

// Restore replaces all buffers from a persisted snapshot, trimming any buffer
// that exceeds the configured capacity.
func (h *History) Restore(buffers map[string][]models.Observation) {
	h.buffers = make(map[string][]models.Observation, len(buffers))
	for key, buf := range buffers {
		if len(buf) > h.capacity {
			buf = buf[len(buf)-h.capacity:]
		}
		cp := make([]models.Observation, len(buf))
		copy(cp, buf)
		h.buffers[key] = cp
	}
}
