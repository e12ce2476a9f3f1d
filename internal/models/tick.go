// Package models defines the core domain entities: ticks, alerts, positions, and results.
package models

import "errors"

// Tick is one scan-cycle price observation for a single tradable outcome,
// handed to the engine by a venue adapter. Key uses the composite format
// "venue:league:eventID:outcome" so one engine can track every venue.
type Tick struct {
	Key       string  `json:"key"`
	Venue     string  `json:"venue"`
	League    string  `json:"league"`
	EventID   string  `json:"event_id"`
	Outcome   string  `json:"outcome"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`

	// Liquidity, spread, and volume are best-effort; the Has flags record
	// whether the venue reported them at all.
	Liquidity    float64 `json:"liquidity,omitempty"`
	HasLiquidity bool    `json:"has_liquidity,omitempty"`
	Spread       float64 `json:"spread,omitempty"`
	HasSpread    bool    `json:"has_spread,omitempty"`
	Volume       float64 `json:"volume,omitempty"`
	HasVolume    bool    `json:"has_volume,omitempty"`

	// Live marks an in-play contract; set from the live-score side channel.
	Live bool   `json:"live,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Validate checks tick field constraints.
func (t *Tick) Validate() error {
	if t.Key == "" {
		return errors.New("tick key must not be empty")
	}
	if t.Venue == "" {
		return errors.New("tick venue must not be empty")
	}
	if t.Price < 0.0 || t.Price > 1.0 {
		return errors.New("tick price must be between 0.0 and 1.0")
	}
	if t.Timestamp <= 0 {
		return errors.New("tick timestamp must be positive")
	}
	if t.HasLiquidity && t.Liquidity < 0 {
		return errors.New("tick liquidity must not be negative")
	}
	if t.HasSpread && t.Spread < 0 {
		return errors.New("tick spread must not be negative")
	}
	if t.HasVolume && t.Volume < 0 {
		return errors.New("tick volume must not be negative")
	}
	return nil
}
