// Package notify delivers alert and position notifications to external
// channels. Delivery failures are reported to the caller, which logs them and
// continues; notification problems never abort a scan cycle.
package notify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// Update describes a position lifecycle event for delivery.
type Update struct {
	Key        string
	Outcome    string
	Action     string
	EntryPrice float64
	Price      float64
	Closed     bool
	URL        string
}

// Notifier delivers messages to one channel.
type Notifier interface {
	SendAlert(alert models.Alert) error
	SendUpdate(update Update) error
	SendText(text string) error
}

// Multi fans a message out to every configured notifier and joins the failures.
type Multi []Notifier

// SendAlert delivers an alert to every notifier.
func (m Multi) SendAlert(alert models.Alert) error {
	var errs error
	for _, n := range m {
		errs = errors.Join(errs, n.SendAlert(alert))
	}
	return errs
}

// SendUpdate delivers a position update to every notifier.
func (m Multi) SendUpdate(update Update) error {
	var errs error
	for _, n := range m {
		errs = errors.Join(errs, n.SendUpdate(update))
	}
	return errs
}

// SendText delivers a plain message to every notifier.
func (m Multi) SendText(text string) error {
	var errs error
	for _, n := range m {
		errs = errors.Join(errs, n.SendText(text))
	}
	return errs
}

// formatAlert renders the plain-text alert payload shared by all channels.
func formatAlert(alert models.Alert) string {
	var b strings.Builder

	header := "Pregame"
	if alert.Live {
		header = "Live"
	}
	fmt.Fprintf(&b, "🚨 %s %s %s\n", strings.ToUpper(alert.League), header, classLabel(alert.Class))
	fmt.Fprintf(&b, "%s @ %.2f\n", alert.Outcome, alert.Price)
	fmt.Fprintf(&b, "Move: %+.2f\n", alert.Move)
	fmt.Fprintf(&b, "Confidence: %.1f/10", alert.Confidence)
	if alert.URL != "" {
		fmt.Fprintf(&b, "\n%s", alert.URL)
	}
	return b.String()
}

// formatUpdate renders the plain-text position update payload.
func formatUpdate(update Update) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Scale Update\n")
	fmt.Fprintf(&b, "%s\n", update.Outcome)
	fmt.Fprintf(&b, "Entry: %.2f\n", update.EntryPrice)
	fmt.Fprintf(&b, "Now: %.2f\n", update.Price)
	fmt.Fprintf(&b, "Result: %s", update.Action)
	if update.Closed {
		b.WriteString(" (closed)")
	}
	return b.String()
}

func classLabel(class string) string {
	switch class {
	case "entry":
		return "Entry"
	case "scout":
		return "Scout"
	case "opening":
		return "Opening Move"
	default:
		return class
	}
}
