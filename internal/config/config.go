// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/storeupwealth-sys/SportsEdge/internal/engine"
)

// Config represents the complete application configuration
type Config struct {
	Venues   VenuesConfig            `mapstructure:"venues"`
	Engine   EngineConfig            `mapstructure:"engine"`
	Leagues  map[string]LeagueConfig `mapstructure:"leagues"`
	Livefeed LivefeedConfig          `mapstructure:"livefeed"`
	Notify   NotifyConfig            `mapstructure:"notify"`
	Storage  StorageConfig           `mapstructure:"storage"`
	Recap    RecapConfig             `mapstructure:"recap"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// VenuesConfig holds per-venue adapter configuration
type VenuesConfig struct {
	Polymarket PolymarketConfig `mapstructure:"polymarket"`
	Kalshi     KalshiConfig     `mapstructure:"kalshi"`
}

// PolymarketConfig holds Polymarket Gamma API configuration
type PolymarketConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	GammaAPIURL    string        `mapstructure:"gamma_api_url"`
	Leagues        []string      `mapstructure:"leagues"`
	Limit          int           `mapstructure:"limit"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// KalshiConfig holds Kalshi API configuration
type KalshiConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	Series         []string      `mapstructure:"series"`
	Limit          int           `mapstructure:"limit"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// EngineConfig holds the default signal/position thresholds. Any league listed
// under leagues may override a subset; zero values inherit these defaults.
type EngineConfig struct {
	ScanInterval    time.Duration `mapstructure:"scan_interval"`
	HistoryCapacity int           `mapstructure:"history_capacity"`
	MaxAlertLog     int           `mapstructure:"max_alert_log"`

	MinPrice         float64 `mapstructure:"min_price"`
	MaxPrice         float64 `mapstructure:"max_price"`
	MinMove          float64 `mapstructure:"min_move"`
	BigMove          float64 `mapstructure:"big_move"`
	OpeningBigMove   float64 `mapstructure:"opening_big_move"`
	OpeningWindowMin float64 `mapstructure:"opening_window_min"`
	MinSnaps         int     `mapstructure:"min_snaps"`

	LiveCooldown    time.Duration `mapstructure:"live_cooldown"`
	PregameCooldown time.Duration `mapstructure:"pregame_cooldown"`

	MinLiquidity float64 `mapstructure:"min_liquidity"`
	MaxSpread    float64 `mapstructure:"max_spread"`

	TP1Cents        float64 `mapstructure:"tp1_cents"`
	TP2Cents        float64 `mapstructure:"tp2_cents"`
	SLCents         float64 `mapstructure:"sl_cents"`
	TrailStartCents float64 `mapstructure:"trail_start_cents"`
	TrailGapCents   float64 `mapstructure:"trail_gap_cents"`
	TimeStopMin     float64 `mapstructure:"time_stop_min"`
}

// LeagueConfig holds per-league threshold overrides. Zero values fall back to
// the engine defaults.
type LeagueConfig struct {
	MinMove          float64       `mapstructure:"min_move"`
	BigMove          float64       `mapstructure:"big_move"`
	OpeningBigMove   float64       `mapstructure:"opening_big_move"`
	OpeningWindowMin float64       `mapstructure:"opening_window_min"`
	MinSnaps         int           `mapstructure:"min_snaps"`
	LiveCooldown     time.Duration `mapstructure:"live_cooldown"`
	PregameCooldown  time.Duration `mapstructure:"pregame_cooldown"`
	MinLiquidity     float64       `mapstructure:"min_liquidity"`
	MaxSpread        float64       `mapstructure:"max_spread"`
	LeagueBonus      float64       `mapstructure:"league_bonus"`
}

// LivefeedConfig holds the live-score websocket feed configuration
type LivefeedConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	MaxReconnectDelay time.Duration `mapstructure:"max_reconnect_delay"`
}

// NotifyConfig holds notification delivery configuration
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// DiscordConfig holds Discord webhook configuration
type DiscordConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	WebhookURL     string        `mapstructure:"webhook_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	MaxAlerts int    `mapstructure:"max_alerts"`
}

// RecapConfig holds the daily recap job configuration
type RecapConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DailyAt string `mapstructure:"daily_at"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("SPORTSEDGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Venue defaults
	v.SetDefault("venues.polymarket.enabled", true)
	v.SetDefault("venues.polymarket.gamma_api_url", "https://gamma-api.polymarket.com")
	v.SetDefault("venues.polymarket.limit", 100)
	v.SetDefault("venues.polymarket.timeout", "15s")
	v.SetDefault("venues.polymarket.max_retries", 3)
	v.SetDefault("venues.polymarket.retry_delay_base", "1s")
	v.SetDefault("venues.kalshi.enabled", false)
	v.SetDefault("venues.kalshi.base_url", "https://api.elections.kalshi.com")
	v.SetDefault("venues.kalshi.limit", 100)
	v.SetDefault("venues.kalshi.timeout", "15s")
	v.SetDefault("venues.kalshi.max_retries", 3)
	v.SetDefault("venues.kalshi.retry_delay_base", "1s")

	// Engine defaults
	v.SetDefault("engine.scan_interval", "60s")
	v.SetDefault("engine.history_capacity", 256)
	v.SetDefault("engine.max_alert_log", 500)
	v.SetDefault("engine.min_price", 0.05)
	v.SetDefault("engine.max_price", 0.95)
	v.SetDefault("engine.min_move", 0.04)
	v.SetDefault("engine.big_move", 0.06)
	v.SetDefault("engine.opening_big_move", 0.08)
	v.SetDefault("engine.opening_window_min", 30)
	v.SetDefault("engine.min_snaps", 12)
	v.SetDefault("engine.live_cooldown", "2m")
	v.SetDefault("engine.pregame_cooldown", "15m")
	v.SetDefault("engine.min_liquidity", 0.0) // 0 = no filter
	v.SetDefault("engine.max_spread", 0.0)    // 0 = no filter
	v.SetDefault("engine.tp1_cents", 3)
	v.SetDefault("engine.tp2_cents", 6)
	v.SetDefault("engine.sl_cents", 2)
	v.SetDefault("engine.trail_start_cents", 4)
	v.SetDefault("engine.trail_gap_cents", 2)
	v.SetDefault("engine.time_stop_min", 20)

	// Livefeed defaults
	v.SetDefault("livefeed.enabled", false)
	v.SetDefault("livefeed.url", "wss://sports-api.polymarket.com/ws")
	v.SetDefault("livefeed.reconnect_delay", "5s")
	v.SetDefault("livefeed.max_reconnect_delay", "2m")

	// Notify defaults
	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.max_retries", 3)
	v.SetDefault("notify.telegram.retry_delay_base", "1s")
	v.SetDefault("notify.discord.enabled", false)
	v.SetDefault("notify.discord.timeout", "10s")
	v.SetDefault("notify.discord.max_retries", 3)
	v.SetDefault("notify.discord.retry_delay_base", "1s")

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/sportsedge.db")
	v.SetDefault("storage.max_alerts", 500)

	// Recap defaults
	v.SetDefault("recap.enabled", true)
	v.SetDefault("recap.daily_at", "09:00")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if !c.Venues.Polymarket.Enabled && !c.Venues.Kalshi.Enabled {
		return fmt.Errorf("at least one venue must be enabled")
	}
	if c.Venues.Polymarket.Enabled {
		if c.Venues.Polymarket.GammaAPIURL == "" {
			return fmt.Errorf("venues.polymarket.gamma_api_url is required")
		}
		if len(c.Venues.Polymarket.Leagues) == 0 {
			return fmt.Errorf("venues.polymarket.leagues must contain at least one league")
		}
		if c.Venues.Polymarket.Limit < 1 || c.Venues.Polymarket.Limit > 1000 {
			return fmt.Errorf("venues.polymarket.limit must be between 1 and 1000")
		}
	}
	if c.Venues.Kalshi.Enabled {
		if c.Venues.Kalshi.BaseURL == "" {
			return fmt.Errorf("venues.kalshi.base_url is required")
		}
		if len(c.Venues.Kalshi.Series) == 0 {
			return fmt.Errorf("venues.kalshi.series must contain at least one series")
		}
	}

	if c.Engine.ScanInterval < 5*time.Second {
		return fmt.Errorf("engine.scan_interval must be at least 5 seconds")
	}
	if c.Engine.HistoryCapacity < 2 {
		return fmt.Errorf("engine.history_capacity must be at least 2")
	}
	if c.Engine.MinPrice < 0 || c.Engine.MaxPrice > 1 || c.Engine.MinPrice >= c.Engine.MaxPrice {
		return fmt.Errorf("engine price guardrails must satisfy 0 <= min_price < max_price <= 1")
	}
	if c.Engine.MinMove <= 0 {
		return fmt.Errorf("engine.min_move must be positive")
	}
	if c.Engine.BigMove <= 0 {
		return fmt.Errorf("engine.big_move must be positive")
	}
	if c.Engine.MinSnaps < 2 {
		return fmt.Errorf("engine.min_snaps must be at least 2")
	}
	if c.Engine.MinSnaps > c.Engine.HistoryCapacity {
		return fmt.Errorf("engine.min_snaps must not exceed engine.history_capacity")
	}
	if c.Engine.LiveCooldown <= 0 || c.Engine.PregameCooldown <= 0 {
		return fmt.Errorf("engine cooldowns must be positive")
	}
	if c.Engine.TP1Cents <= 0 || c.Engine.TP2Cents <= c.Engine.TP1Cents {
		return fmt.Errorf("engine take-profit tiers must satisfy 0 < tp1_cents < tp2_cents")
	}
	if c.Engine.SLCents <= 0 {
		return fmt.Errorf("engine.sl_cents must be positive")
	}
	if c.Engine.TrailStartCents <= 0 || c.Engine.TrailGapCents <= 0 {
		return fmt.Errorf("engine trailing stop thresholds must be positive")
	}
	if c.Engine.TimeStopMin <= 0 {
		return fmt.Errorf("engine.time_stop_min must be positive")
	}

	if c.Livefeed.Enabled && c.Livefeed.URL == "" {
		return fmt.Errorf("livefeed.url is required when livefeed is enabled")
	}

	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Notify.Discord.Enabled && c.Notify.Discord.WebhookURL == "" {
		return fmt.Errorf("notify.discord.webhook_url is required when discord is enabled")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxAlerts < 1 {
		return fmt.Errorf("storage.max_alerts must be at least 1")
	}

	if c.Recap.Enabled && c.Recap.DailyAt != "" {
		if _, err := time.Parse("15:04", c.Recap.DailyAt); err != nil {
			return fmt.Errorf("recap.daily_at must be in HH:MM format: %w", err)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Resolve returns the engine thresholds for a venue/league pair: the engine
// defaults with any non-zero league overrides applied. Unknown leagues get
// the defaults.
func (c *Config) Resolve(venue, league string) engine.Params {
	e := c.Engine
	p := engine.Params{
		MinPrice:         e.MinPrice,
		MaxPrice:         e.MaxPrice,
		MinMove:          e.MinMove,
		BigMove:          e.BigMove,
		OpeningBigMove:   e.OpeningBigMove,
		OpeningWindowMin: e.OpeningWindowMin,
		MinSnaps:         e.MinSnaps,
		LiveCooldown:     e.LiveCooldown,
		PregameCooldown:  e.PregameCooldown,
		MinLiquidity:     e.MinLiquidity,
		MaxSpread:        e.MaxSpread,
		TP1Cents:         e.TP1Cents,
		TP2Cents:         e.TP2Cents,
		SLCents:          e.SLCents,
		TrailStartCents:  e.TrailStartCents,
		TrailGapCents:    e.TrailGapCents,
		TimeStopMin:      e.TimeStopMin,
	}

	o, ok := c.Leagues[league]
	if !ok {
		return p
	}
	if o.MinMove > 0 {
		p.MinMove = o.MinMove
	}
	if o.BigMove > 0 {
		p.BigMove = o.BigMove
	}
	if o.OpeningBigMove > 0 {
		p.OpeningBigMove = o.OpeningBigMove
	}
	if o.OpeningWindowMin > 0 {
		p.OpeningWindowMin = o.OpeningWindowMin
	}
	if o.MinSnaps > 0 {
		p.MinSnaps = o.MinSnaps
	}
	if o.LiveCooldown > 0 {
		p.LiveCooldown = o.LiveCooldown
	}
	if o.PregameCooldown > 0 {
		p.PregameCooldown = o.PregameCooldown
	}
	if o.MinLiquidity > 0 {
		p.MinLiquidity = o.MinLiquidity
	}
	if o.MaxSpread > 0 {
		p.MaxSpread = o.MaxSpread
	}
	p.LeagueBonus = o.LeagueBonus

	return p
}
