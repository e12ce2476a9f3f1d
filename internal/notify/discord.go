package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// Discord delivers notifications through a Discord webhook.
type Discord struct {
	webhookURL     string
	maxRetries     int
	retryDelayBase time.Duration
	httpc          *http.Client
}

// NewDiscord creates a Discord webhook client.
func NewDiscord(webhookURL string, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *Discord {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Discord{
		webhookURL:     webhookURL,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		httpc:          &http.Client{Timeout: timeout},
	}
}

// SendAlert delivers a signal alert.
func (d *Discord) SendAlert(alert models.Alert) error {
	return d.postContent(formatAlert(alert))
}

// SendUpdate delivers a position update.
func (d *Discord) SendUpdate(update Update) error {
	return d.postContent(formatUpdate(update))
}

// SendText delivers a plain message.
func (d *Discord) SendText(text string) error {
	return d.postContent(text)
}

// postContent posts a webhook message with linear-backoff retry on transport
// errors and 5xx responses.
func (d *Discord) postContent(content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	var lastErr error
	for i := 0; i < d.maxRetries; i++ {
		resp, err := d.httpc.Post(d.webhookURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			lastErr = err
			time.Sleep(d.retryDelayBase * time.Duration(i+1))
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(d.retryDelayBase * time.Duration(i+1))
			continue
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("webhook rejected: %d", resp.StatusCode)
		}
		return nil
	}
	return fmt.Errorf("failed after %d retries: %w", d.maxRetries, lastErr)
}
