package venue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const gammaEventsResponse = `[
	{
		"id": "evt1",
		"slug": "lakers-celtics",
		"category": "NBA",
		"liquidity": 60000,
		"volume24hr": 125000,
		"markets": [
			{
				"id": "mkt1",
				"outcomes": "[\"Lakers\", \"Celtics\"]",
				"outcomePrices": "[\"0.56\", \"0.44\"]",
				"bestBid": 0.55,
				"bestAsk": 0.57
			}
		]
	},
	{
		"id": "evt2",
		"slug": "some-politics-event",
		"category": "Politics",
		"markets": [
			{
				"id": "mkt2",
				"outcomes": "[\"Yes\", \"No\"]",
				"outcomePrices": "[\"0.70\", \"0.30\"]"
			}
		]
	}
]`

func newTestPolymarket(apiURL string) *Polymarket {
	return NewPolymarket(PolymarketConfig{
		GammaAPIURL:    apiURL,
		Leagues:        []string{"nba", "nfl"},
		Limit:          10,
		Timeout:        5 * time.Second,
		MaxRetries:     2,
		RetryDelayBase: time.Millisecond,
	})
}

func TestPolymarketParseEvents(t *testing.T) {
	p := newTestPolymarket("http://unused")

	ticks := p.parseEvents([]byte(gammaEventsResponse))

	// The politics event is filtered out; the NBA event yields two outcomes.
	if len(ticks) != 2 {
		t.Fatalf("Expected 2 ticks, got %d", len(ticks))
	}

	tick := ticks[0]
	if tick.Key != "polymarket:nba:evt1:mkt1:Lakers" {
		t.Errorf("Unexpected key: %s", tick.Key)
	}
	if tick.Venue != "polymarket" || tick.League != "nba" {
		t.Errorf("Unexpected venue/league: %s/%s", tick.Venue, tick.League)
	}
	if tick.Price != 0.56 {
		t.Errorf("Expected price 0.56, got %f", tick.Price)
	}
	if !tick.HasLiquidity || tick.Liquidity != 60000 {
		t.Errorf("Unexpected liquidity: %f (has=%t)", tick.Liquidity, tick.HasLiquidity)
	}
	if !tick.HasVolume || tick.Volume != 125000 {
		t.Errorf("Unexpected volume: %f (has=%t)", tick.Volume, tick.HasVolume)
	}
	if !tick.HasSpread || tick.Spread < 0.019 || tick.Spread > 0.021 {
		t.Errorf("Unexpected spread: %f (has=%t)", tick.Spread, tick.HasSpread)
	}
	if tick.URL != "https://polymarket.com/event/lakers-celtics" {
		t.Errorf("Unexpected URL: %s", tick.URL)
	}
	if tick.Timestamp <= 0 {
		t.Error("Expected positive timestamp")
	}

	if ticks[1].Outcome != "Celtics" || ticks[1].Price != 0.44 {
		t.Errorf("Unexpected second tick: %+v", ticks[1])
	}
}

func TestPolymarketParseEventsSkipsInvalidPrices(t *testing.T) {
	body := `[
		{
			"id": "evt1",
			"category": "NBA",
			"markets": [
				{
					"id": "mkt1",
					"outcomes": "[\"A\", \"B\", \"C\"]",
					"outcomePrices": "[\"0\", \"1.5\", \"0.50\"]"
				}
			]
		}
	]`
	p := newTestPolymarket("http://unused")

	ticks := p.parseEvents([]byte(body))
	if len(ticks) != 1 {
		t.Fatalf("Expected only the valid price to survive, got %d ticks", len(ticks))
	}
	if ticks[0].Outcome != "C" || ticks[0].Price != 0.50 {
		t.Errorf("Unexpected tick: %+v", ticks[0])
	}
}

func TestPolymarketParseEventsMalformedBody(t *testing.T) {
	p := newTestPolymarket("http://unused")
	if ticks := p.parseEvents([]byte("not json")); len(ticks) != 0 {
		t.Errorf("Expected no ticks from malformed body, got %d", len(ticks))
	}
}

func TestPolymarketFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("active") != "true" || q.Get("closed") != "false" {
			t.Errorf("Unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(gammaEventsResponse)) //nolint:errcheck
	}))
	defer server.Close()

	p := newTestPolymarket(server.URL)
	ticks, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(ticks) != 2 {
		t.Errorf("Expected 2 ticks, got %d", len(ticks))
	}
}

func TestPolymarketFetchRetriesServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer server.Close()

	p := newTestPolymarket(server.URL)
	if _, err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("Expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}
