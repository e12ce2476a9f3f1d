package recap

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// fakeStore serves canned alerts and results.
type fakeStore struct {
	alerts  []models.Alert
	results map[string]models.Result
	err     error
}

func (f *fakeStore) AlertsForEvent(eventID string) ([]models.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Alert
	for _, a := range f.alerts {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) AlertsSince(since int64) ([]models.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Alert
	for _, a := range f.alerts {
		if a.DetectedAt >= since {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) Result(eventID string) (models.Result, bool, error) {
	if f.err != nil {
		return models.Result{}, false, f.err
	}
	r, ok := f.results[eventID]
	return r, ok, nil
}

func TestGradeEvent(t *testing.T) {
	store := &fakeStore{
		alerts: []models.Alert{
			{EventID: "e1", Outcome: "Lakers", Class: "entry", Price: 0.56},
			{EventID: "e1", Outcome: "Celtics", Class: "scout", Price: 0.40},
		},
	}
	r := New(store)

	msg, ok, err := r.GradeEvent("e1", "Lakers")
	if err != nil {
		t.Fatalf("GradeEvent failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected a recap message")
	}

	for _, want := range []string{"e1", "Winner: Lakers", "1/2 hit (50%)", "Lakers @ 0.56", "✅", "❌"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected recap to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestGradeEventNoAlerts(t *testing.T) {
	r := New(&fakeStore{})

	msg, ok, err := r.GradeEvent("e1", "Lakers")
	if err != nil {
		t.Fatalf("GradeEvent failed: %v", err)
	}
	if ok || msg != "" {
		t.Error("Expected no recap for an event without alerts")
	}
}

func TestGradeEventStoreError(t *testing.T) {
	r := New(&fakeStore{err: errors.New("db closed")})

	if _, _, err := r.GradeEvent("e1", "Lakers"); err == nil {
		t.Error("Expected store error propagated")
	}
}

func TestDailySummary(t *testing.T) {
	now := time.Now()
	store := &fakeStore{
		alerts: []models.Alert{
			{EventID: "e1", Outcome: "Lakers", DetectedAt: now.Add(-2 * time.Hour).Unix()},
			{EventID: "e1", Outcome: "Celtics", DetectedAt: now.Add(-2 * time.Hour).Unix()},
			{EventID: "e2", Outcome: "Chiefs", DetectedAt: now.Add(-3 * time.Hour).Unix()},
			// Outside the 24h window.
			{EventID: "e3", Outcome: "Bills", DetectedAt: now.Add(-30 * time.Hour).Unix()},
		},
		results: map[string]models.Result{
			"e1": {EventID: "e1", Winner: "Lakers"},
			// e2 unresolved.
		},
	}
	r := New(store)
	r.now = func() time.Time { return now }

	msg, ok, err := r.DailySummary()
	if err != nil {
		t.Fatalf("DailySummary failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected a summary message")
	}

	// Two graded alerts from e1, one hit; e2 skipped as unresolved.
	for _, want := range []string{"Graded alerts: 2 of 3", "1/2 (50%)"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestDailySummaryNothingGraded(t *testing.T) {
	now := time.Now()
	store := &fakeStore{
		alerts: []models.Alert{
			{EventID: "e1", Outcome: "Lakers", DetectedAt: now.Add(-time.Hour).Unix()},
		},
	}
	r := New(store)
	r.now = func() time.Time { return now }

	if _, ok, err := r.DailySummary(); err != nil || ok {
		t.Errorf("Expected no summary when no event is resolved (ok=%t, err=%v)", ok, err)
	}
}

func TestDailySummaryNoAlerts(t *testing.T) {
	r := New(&fakeStore{})
	if _, ok, err := r.DailySummary(); err != nil || ok {
		t.Errorf("Expected no summary without alerts (ok=%t, err=%v)", ok, err)
	}
}
