package venue

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// Kalshi adapts the Kalshi trade API to the engine's tick contract. Kalshi
// markets are binary; each produces one tick for the yes side, priced at the
// last trade in cents.
type Kalshi struct {
	baseURL        string
	series         []string
	limit          int
	maxRetries     int
	retryDelayBase time.Duration
	httpc          *http.Client
}

// KalshiConfig configures the Kalshi adapter.
type KalshiConfig struct {
	BaseURL        string
	Series         []string
	Limit          int
	Timeout        time.Duration
	MaxRetries     int
	RetryDelayBase time.Duration
}

// NewKalshi creates a Kalshi adapter.
func NewKalshi(cfg KalshiConfig) *Kalshi {
	return &Kalshi{
		baseURL:        cfg.BaseURL,
		series:         cfg.Series,
		limit:          cfg.Limit,
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
		httpc:          &http.Client{Timeout: cfg.Timeout},
	}
}

// Name identifies the venue.
func (k *Kalshi) Name() string {
	return "kalshi"
}

// Fetch retrieves open markets for each configured series. A failed series
// fetch fails the whole call; the orchestrator downgrades it to a logged
// error without aborting the cycle.
func (k *Kalshi) Fetch(ctx context.Context) ([]models.Tick, error) {
	var ticks []models.Tick
	for _, series := range k.series {
		body, err := k.fetchSeries(ctx, series)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch series %s: %w", series, err)
		}
		ticks = append(ticks, k.parseMarkets(body, series)...)
	}
	return ticks, nil
}

func (k *Kalshi) fetchSeries(ctx context.Context, series string) ([]byte, error) {
	u, err := url.Parse(k.baseURL + "/trade-api/v2/markets")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("status", "open")
	q.Set("series_ticker", series)
	q.Set("limit", fmt.Sprintf("%d", k.limit))
	u.RawQuery = q.Encode()

	resp, err := doRequest(ctx, k.httpc, u.String(), k.maxRetries, k.retryDelayBase)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (k *Kalshi) parseMarkets(body []byte, series string) []models.Tick {
	now := time.Now().Unix()
	league := strings.ToLower(series)
	var ticks []models.Tick

	gjson.GetBytes(body, "markets").ForEach(func(_, market gjson.Result) bool {
		ticker := market.Get("ticker").String()
		lastPrice := market.Get("last_price").Int() // cents
		if ticker == "" || lastPrice <= 0 || lastPrice > 100 {
			return true
		}

		yesBid := market.Get("yes_bid").Int()
		yesAsk := market.Get("yes_ask").Int()
		hasSpread := yesBid > 0 && yesAsk > yesBid
		spread := 0.0
		if hasSpread {
			spread = float64(yesAsk-yesBid) / 100
		}

		tick := models.Tick{
			Key:       fmt.Sprintf("kalshi:%s:%s:%s:yes", league, market.Get("event_ticker").String(), ticker),
			Venue:     "kalshi",
			League:    league,
			EventID:   market.Get("event_ticker").String(),
			Outcome:   market.Get("yes_sub_title").String(),
			Price:     float64(lastPrice) / 100,
			Timestamp: now,
			Spread:    spread,
			HasSpread: hasSpread,
			URL:       "https://kalshi.com/markets/" + strings.ToLower(ticker),
		}
		if liq := market.Get("liquidity"); liq.Exists() {
			tick.Liquidity = liq.Float() / 100 // reported in cents
			tick.HasLiquidity = true
		}
		if vol := market.Get("volume_24h"); vol.Exists() {
			tick.Volume = vol.Float()
			tick.HasVolume = true
		}
		if tick.Outcome == "" {
			tick.Outcome = ticker
		}
		ticks = append(ticks, tick)
		return true
	})

	return ticks
}
