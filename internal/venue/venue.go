// Package venue contains the per-venue market adapters. Each adapter wraps one
// venue's public API and reduces its listings to the plain tick values the
// engine consumes, so a single engine serves every venue.
package venue

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// Source is one venue market feed.
type Source interface {
	// Name identifies the venue in logs and tick keys.
	Name() string
	// Fetch returns one tick per discovered tradable outcome.
	Fetch(ctx context.Context) ([]models.Tick, error)
}

// doRequest performs a GET with linear-backoff retry on transport errors and
// 5xx responses.
func doRequest(ctx context.Context, httpc *http.Client, urlStr string, maxRetries int, retryDelayBase time.Duration) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := httpc.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(retryDelayBase * time.Duration(i+1))
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(retryDelayBase * time.Duration(i+1))
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
