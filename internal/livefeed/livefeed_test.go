package livefeed

import (
	"testing"
)

func newTestListener() *Listener {
	return New(Config{URL: "ws://unused"})
}

func TestHandleMessageUpdatesSideChannel(t *testing.T) {
	l := newTestListener()

	l.handleMessage([]byte(`{"event_id": "e1", "period": "Q3", "clock": "4:12", "home": 88, "away": 84}`))

	score, ok := l.Scores().Get("e1")
	if !ok {
		t.Fatal("Expected score in side channel")
	}
	if score.Period != "Q3" || score.Home != 88 || score.Away != 84 {
		t.Errorf("Unexpected score: %+v", score)
	}
	if score.Final {
		t.Error("Expected non-final score")
	}
	if score.UpdatedAt <= 0 {
		t.Error("Expected UpdatedAt stamped")
	}
}

func TestHandleMessageLastWriteWins(t *testing.T) {
	l := newTestListener()

	l.handleMessage([]byte(`{"event_id": "e1", "home": 10, "away": 12}`))
	l.handleMessage([]byte(`{"event_id": "e1", "home": 14, "away": 12}`))

	score, _ := l.Scores().Get("e1")
	if score.Home != 14 {
		t.Errorf("Expected latest score to win, got %+v", score)
	}
}

func TestHandleMessageDropsMalformed(t *testing.T) {
	l := newTestListener()

	l.handleMessage([]byte(`not json`))
	l.handleMessage([]byte(`{"home": 10}`)) // no event ID

	if _, ok := l.Scores().Get(""); ok {
		t.Error("Expected no entry for empty event ID")
	}
}

func TestHandleMessagePushesFinalOnce(t *testing.T) {
	l := newTestListener()

	l.handleMessage([]byte(`{"event_id": "e1", "home": 100, "away": 95}`))
	l.handleMessage([]byte(`{"event_id": "e1", "home": 100, "away": 95, "final": true, "winner": "Lakers"}`))
	// A repeated final update must not be pushed again.
	l.handleMessage([]byte(`{"event_id": "e1", "home": 100, "away": 95, "final": true, "winner": "Lakers"}`))

	select {
	case score := <-l.Finals():
		if score.Winner != "Lakers" {
			t.Errorf("Unexpected winner: %s", score.Winner)
		}
	default:
		t.Fatal("Expected one final on the channel")
	}

	select {
	case <-l.Finals():
		t.Error("Expected the repeated final to be suppressed")
	default:
	}
}

func TestChannelDelete(t *testing.T) {
	c := NewChannel()
	c.Set(Score{EventID: "e1", Home: 1})

	if _, ok := c.Get("e1"); !ok {
		t.Fatal("Expected score present")
	}
	c.Delete("e1")
	if _, ok := c.Get("e1"); ok {
		t.Error("Expected score removed")
	}
	// Deleting an absent key is a no-op.
	c.Delete("missing")
}
