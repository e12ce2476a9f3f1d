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

// Polymarket adapts the Polymarket Gamma API to the engine's tick contract.
type Polymarket struct {
	gammaAPIURL    string
	leagues        map[string]bool
	limit          int
	maxRetries     int
	retryDelayBase time.Duration
	httpc          *http.Client
}

// PolymarketConfig configures the Polymarket adapter.
type PolymarketConfig struct {
	GammaAPIURL    string
	Leagues        []string
	Limit          int
	Timeout        time.Duration
	MaxRetries     int
	RetryDelayBase time.Duration
}

// NewPolymarket creates a Polymarket adapter.
func NewPolymarket(cfg PolymarketConfig) *Polymarket {
	leagues := make(map[string]bool, len(cfg.Leagues))
	for _, l := range cfg.Leagues {
		leagues[strings.ToLower(l)] = true
	}
	return &Polymarket{
		gammaAPIURL:    cfg.GammaAPIURL,
		leagues:        leagues,
		limit:          cfg.Limit,
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
		httpc:          &http.Client{Timeout: cfg.Timeout},
	}
}

// Name identifies the venue.
func (p *Polymarket) Name() string {
	return "polymarket"
}

// Fetch retrieves active events from the Gamma API and returns one tick per
// outcome of every market in a configured league. Outcomes whose price cannot
// be parsed are skipped; the engine never sees malformed values.
func (p *Polymarket) Fetch(ctx context.Context) ([]models.Tick, error) {
	u, err := url.Parse(p.gammaAPIURL + "/events")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("order", "volume24hr")
	q.Set("ascending", "false")
	q.Set("limit", fmt.Sprintf("%d", p.limit*3)) // fetch extra to allow for league filtering
	u.RawQuery = q.Encode()

	resp, err := doRequest(ctx, p.httpc, u.String(), p.maxRetries, p.retryDelayBase)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read events response: %w", err)
	}

	return p.parseEvents(body), nil
}

func (p *Polymarket) parseEvents(body []byte) []models.Tick {
	now := time.Now().Unix()
	var ticks []models.Tick
	count := 0

	gjson.ParseBytes(body).ForEach(func(_, event gjson.Result) bool {
		if count >= p.limit {
			return false
		}
		league := strings.ToLower(event.Get("category").String())
		if len(p.leagues) > 0 && !p.leagues[league] {
			return true
		}
		count++

		eventID := event.Get("id").String()
		slug := event.Get("slug").String()
		liquidity := event.Get("liquidity")
		volume := event.Get("volume24hr")

		event.Get("markets").ForEach(func(_, market gjson.Result) bool {
			ticks = append(ticks, p.parseMarket(market, league, eventID, slug, liquidity, volume, now)...)
			return true
		})
		return true
	})

	return ticks
}

// parseMarket expands one market into per-outcome ticks. The Gamma API encodes
// outcomes and prices as JSON strings inside the JSON response, so both fields
// are parsed a second time.
func (p *Polymarket) parseMarket(market gjson.Result, league, eventID, slug string, liquidity, volume gjson.Result, now int64) []models.Tick {
	outcomes := gjson.Parse(market.Get("outcomes").String()).Array()
	prices := gjson.Parse(market.Get("outcomePrices").String()).Array()
	marketID := market.Get("id").String()

	bestBid := market.Get("bestBid")
	bestAsk := market.Get("bestAsk")
	spread := 0.0
	hasSpread := bestBid.Exists() && bestAsk.Exists() && bestAsk.Float() > bestBid.Float()
	if hasSpread {
		spread = bestAsk.Float() - bestBid.Float()
	}

	var eventURL string
	if slug != "" {
		eventURL = "https://polymarket.com/event/" + slug
	}

	ticks := make([]models.Tick, 0, len(outcomes))
	for i, outcome := range outcomes {
		if i >= len(prices) {
			break
		}
		price := prices[i].Float()
		if price <= 0 || price > 1 {
			continue
		}
		name := outcome.String()
		tick := models.Tick{
			Key:       fmt.Sprintf("polymarket:%s:%s:%s:%s", league, eventID, marketID, name),
			Venue:     "polymarket",
			League:    league,
			EventID:   eventID,
			Outcome:   name,
			Price:     price,
			Timestamp: now,
			Spread:    spread,
			HasSpread: hasSpread,
			URL:       eventURL,
		}
		if liquidity.Exists() {
			tick.Liquidity = liquidity.Float()
			tick.HasLiquidity = true
		}
		if volume.Exists() {
			tick.Volume = volume.Float()
			tick.HasVolume = true
		}
		ticks = append(ticks, tick)
	}
	return ticks
}
