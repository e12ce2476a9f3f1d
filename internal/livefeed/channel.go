package livefeed

import "sync"

// Channel is the last-write-wins score side channel keyed by event ID.
// The listener replaces whole values; readers never see partial updates.
type Channel struct {
	scores sync.Map // event ID -> Score
}

// NewChannel creates an empty side channel.
func NewChannel() *Channel {
	return &Channel{}
}

// Set replaces the score for an event.
func (c *Channel) Set(score Score) {
	c.scores.Store(score.EventID, score)
}

// Get returns the latest score for an event, if any.
func (c *Channel) Get(eventID string) (Score, bool) {
	v, ok := c.scores.Load(eventID)
	if !ok {
		return Score{}, false
	}
	return v.(Score), true
}

// Delete removes an event's score, typically after it goes final.
func (c *Channel) Delete(eventID string) {
	c.scores.Delete(eventID)
}
