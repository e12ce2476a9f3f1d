// Package recap grades logged alerts against final game results and produces
// hit-rate summaries.
package recap

import (
	"fmt"
	"strings"
	"time"

	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// Store is the persistence surface the recap needs.
type Store interface {
	AlertsForEvent(eventID string) ([]models.Alert, error)
	AlertsSince(since int64) ([]models.Alert, error)
	Result(eventID string) (models.Result, bool, error)
}

// Recap grades alerts against recorded results.
type Recap struct {
	store Store
	now   func() time.Time
}

// New creates a recap over the given store.
func New(store Store) *Recap {
	return &Recap{store: store, now: time.Now}
}

// GradeEvent grades every alert logged for an event against its winner and
// returns a summary message. The boolean is false when no alerts were logged
// for the event.
func (r *Recap) GradeEvent(eventID, winner string) (string, bool, error) {
	alerts, err := r.store.AlertsForEvent(eventID)
	if err != nil {
		return "", false, fmt.Errorf("loading alerts for %s: %w", eventID, err)
	}
	if len(alerts) == 0 {
		return "", false, nil
	}

	wins := 0
	var lines []string
	for _, a := range alerts {
		hit := a.Outcome == winner
		mark := "❌"
		if hit {
			wins++
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("- %s @ %.2f (%s) %s", a.Outcome, a.Price, a.Class, mark))
	}

	hitRate := float64(wins) / float64(len(alerts)) * 100
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Recap: %s\n", eventID)
	fmt.Fprintf(&b, "Winner: %s\n", winner)
	fmt.Fprintf(&b, "Alerts: %d/%d hit (%.0f%%)\n", wins, len(alerts), hitRate)
	b.WriteString(strings.Join(lines, "\n"))
	return b.String(), true, nil
}

// DailySummary grades all alerts from the last 24 hours whose events have a
// recorded result. The boolean is false when there is nothing to report.
func (r *Recap) DailySummary() (string, bool, error) {
	since := r.now().Add(-24 * time.Hour).Unix()
	alerts, err := r.store.AlertsSince(since)
	if err != nil {
		return "", false, fmt.Errorf("loading recent alerts: %w", err)
	}
	if len(alerts) == 0 {
		return "", false, nil
	}

	winners := make(map[string]string)
	wins, graded := 0, 0
	for _, a := range alerts {
		winner, ok := winners[a.EventID]
		if !ok {
			result, found, err := r.store.Result(a.EventID)
			if err != nil {
				return "", false, fmt.Errorf("loading result for %s: %w", a.EventID, err)
			}
			if !found {
				winners[a.EventID] = ""
				continue
			}
			winner = result.Winner
			winners[a.EventID] = winner
		}
		if winner == "" {
			// Event still unresolved.
			continue
		}
		graded++
		if a.Outcome == winner {
			wins++
		}
	}
	if graded == 0 {
		return "", false, nil
	}

	hitRate := float64(wins) / float64(graded) * 100
	msg := fmt.Sprintf("📈 Daily recap\nGraded alerts: %d of %d\nHit rate: %d/%d (%.0f%%)",
		graded, len(alerts), wins, graded, hitRate)
	return msg, true, nil
}
