package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/storeupwealth-sys/SportsEdge/internal/config"
	"github.com/storeupwealth-sys/SportsEdge/internal/engine"
	"github.com/storeupwealth-sys/SportsEdge/internal/livefeed"
	"github.com/storeupwealth-sys/SportsEdge/internal/logger"
	"github.com/storeupwealth-sys/SportsEdge/internal/models"
	"github.com/storeupwealth-sys/SportsEdge/internal/notify"
	"github.com/storeupwealth-sys/SportsEdge/internal/recap"
	"github.com/storeupwealth-sys/SportsEdge/internal/storage"
	"github.com/storeupwealth-sys/SportsEdge/internal/venue"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

// app bundles the wired collaborators the scan loop drives each cycle.
type app struct {
	cfg       *config.Config
	eng       *engine.Engine
	store     *storage.Storage
	sources   []venue.Source
	feed      *livefeed.Listener
	notifiers notify.Multi
	telegram  *notify.Telegram
	rec       *recap.Recap
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(cfg.Storage.MaxAlerts, cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	eng := engine.New(engine.Config{
		HistoryCapacity: cfg.Engine.HistoryCapacity,
		MaxAlertLog:     cfg.Engine.MaxAlertLog,
		Resolve:         cfg.Resolve,
	})
	if snap, err := store.LoadSnapshot(); err != nil {
		logger.Warn("Failed to load persisted state, cold starting: %v", err)
	} else {
		eng.Restore(snap)
		logger.Info("Restored state: %d tracked keys, %d open positions, %d logged alerts",
			len(snap.History), len(snap.Positions), len(snap.Alerts))
	}

	var sources []venue.Source
	if cfg.Venues.Polymarket.Enabled {
		sources = append(sources, venue.NewPolymarket(venue.PolymarketConfig{
			GammaAPIURL:    cfg.Venues.Polymarket.GammaAPIURL,
			Leagues:        cfg.Venues.Polymarket.Leagues,
			Limit:          cfg.Venues.Polymarket.Limit,
			Timeout:        cfg.Venues.Polymarket.Timeout,
			MaxRetries:     cfg.Venues.Polymarket.MaxRetries,
			RetryDelayBase: cfg.Venues.Polymarket.RetryDelayBase,
		}))
	}
	if cfg.Venues.Kalshi.Enabled {
		sources = append(sources, venue.NewKalshi(venue.KalshiConfig{
			BaseURL:        cfg.Venues.Kalshi.BaseURL,
			Series:         cfg.Venues.Kalshi.Series,
			Limit:          cfg.Venues.Kalshi.Limit,
			Timeout:        cfg.Venues.Kalshi.Timeout,
			MaxRetries:     cfg.Venues.Kalshi.MaxRetries,
			RetryDelayBase: cfg.Venues.Kalshi.RetryDelayBase,
		}))
	}

	var notifiers notify.Multi
	var telegramClient *notify.Telegram
	if cfg.Notify.Telegram.Enabled {
		telegramClient, err = notify.NewTelegram(
			cfg.Notify.Telegram.BotToken,
			cfg.Notify.Telegram.ChatID,
			cfg.Notify.Telegram.MaxRetries,
			cfg.Notify.Telegram.RetryDelayBase,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		notifiers = append(notifiers, telegramClient)
		logger.Info("Telegram client initialized successfully")
	}
	if cfg.Notify.Discord.Enabled {
		notifiers = append(notifiers, notify.NewDiscord(
			cfg.Notify.Discord.WebhookURL,
			cfg.Notify.Discord.Timeout,
			cfg.Notify.Discord.MaxRetries,
			cfg.Notify.Discord.RetryDelayBase,
		))
		logger.Info("Discord webhook initialized successfully")
	}
	if len(notifiers) == 0 {
		logger.Debug("No notification channels enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &app{
		cfg:       cfg,
		eng:       eng,
		store:     store,
		sources:   sources,
		notifiers: notifiers,
		telegram:  telegramClient,
		rec:       recap.New(store),
	}

	if cfg.Livefeed.Enabled {
		a.feed = livefeed.New(livefeed.Config{
			URL:               cfg.Livefeed.URL,
			ReconnectDelay:    cfg.Livefeed.ReconnectDelay,
			MaxReconnectDelay: cfg.Livefeed.MaxReconnectDelay,
		})
		go a.feed.Run(ctx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if telegramClient != nil {
		telegramClient.ListenForCommands(ctx)
	}

	scheduler := gocron.NewScheduler(time.Local)
	if cfg.Recap.Enabled {
		if _, err := scheduler.Every(1).Day().At(cfg.Recap.DailyAt).Do(a.sendDailyRecap); err != nil {
			logger.Warn("Failed to schedule daily recap: %v", err)
		}
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	logger.Info("Starting scan service (interval: %v, venues: %d, min_snaps: %d, min_move: %.2f)",
		cfg.Engine.ScanInterval, len(sources), cfg.Engine.MinSnaps, cfg.Engine.MinMove)

	ticker := time.NewTicker(cfg.Engine.ScanInterval)
	defer ticker.Stop()

	consecutiveFailures := 0
	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Scan cycle failed: %v", err)
			if consecutiveFailures == 1 && a.telegram != nil {
				if sendErr := a.telegram.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && a.telegram != nil {
				if sendErr := a.telegram.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	logger.Debug("Running initial scan cycle")
	handleCycleResult(a.runScanCycle(ctx))

	for {
		select {
		case <-ctx.Done():
			a.checkpoint()
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			logger.Debug("Starting scheduled scan cycle")
			handleCycleResult(a.runScanCycle(ctx))
		}
	}
}

// runScanCycle performs one full scan: ingest results, fetch ticks from every
// venue, drive the engine, dispatch events, and persist the snapshot. Any
// panic is converted to an error after a best-effort state save; the loop
// must survive a single bad cycle.
func (a *app) runScanCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan cycle panic: %v", r)
			a.checkpoint()
		}
	}()

	startTime := time.Now()
	logger.Info("Starting scan cycle")

	a.drainFinals()

	var ticks []models.Tick
	fetched := 0
	for _, src := range a.sources {
		srcTicks, err := src.Fetch(ctx)
		if err != nil {
			logger.Error("Failed to fetch %s ticks: %v", src.Name(), err)
			continue
		}
		fetched++
		logger.Debug("Fetched %d ticks from %s", len(srcTicks), src.Name())
		ticks = append(ticks, srcTicks...)
	}
	if fetched == 0 && len(a.sources) > 0 {
		return fmt.Errorf("all %d venue fetches failed", len(a.sources))
	}

	a.markLive(ticks)

	events := a.eng.ProcessScan(ticks)
	logger.Info("Processed %d ticks: %d events, %d open positions",
		len(ticks), len(events), a.eng.OpenPositions())

	for _, ev := range events {
		a.dispatch(ev)
	}

	if err := a.store.SaveSnapshot(a.eng.Snapshot()); err != nil {
		logger.Error("Failed to persist snapshot: %v", err)
	}

	logger.Info("Scan cycle completed in %v", time.Since(startTime))
	return nil
}

// markLive flags ticks whose event has a non-final score in the side channel.
func (a *app) markLive(ticks []models.Tick) {
	if a.feed == nil {
		return
	}
	for i := range ticks {
		if score, ok := a.feed.Scores().Get(ticks[i].EventID); ok && !score.Final {
			ticks[i].Live = true
		}
	}
}

// drainFinals records freshly finished events and sends their recaps.
func (a *app) drainFinals() {
	if a.feed == nil {
		return
	}
	for {
		select {
		case score := <-a.feed.Finals():
			result := models.Result{
				EventID:    score.EventID,
				Winner:     score.Winner,
				FinishedAt: score.UpdatedAt,
			}
			if err := a.store.SetResult(result); err != nil {
				logger.Error("Failed to record result for %s: %v", score.EventID, err)
				continue
			}
			a.feed.Scores().Delete(score.EventID)
			msg, ok, err := a.rec.GradeEvent(score.EventID, score.Winner)
			if err != nil {
				logger.Error("Failed to grade alerts for %s: %v", score.EventID, err)
				continue
			}
			if ok {
				if err := a.notifiers.SendText(msg); err != nil {
					logger.Error("Failed to send recap for %s: %v", score.EventID, err)
				}
			}
		default:
			return
		}
	}
}

func (a *app) dispatch(ev engine.Event) {
	switch ev.Kind {
	case engine.KindAlert:
		logger.Info("Alert fired: key=%s class=%s price=%.3f move=%+.3f confidence=%.1f",
			ev.Alert.Key, ev.Alert.Class, ev.Alert.Price, ev.Alert.Move, ev.Alert.Confidence)
		if err := a.notifiers.SendAlert(ev.Alert); err != nil {
			logger.Error("Failed to send alert notification: %v", err)
		}

	case engine.KindPositionOpened:
		logger.Info("Position opened: key=%s entry=%.3f confidence=%.1f",
			ev.Alert.Key, ev.Alert.Price, ev.Alert.Confidence)

	case engine.KindPositionUpdate:
		logger.Info("Position update: key=%s action=%s entry=%.3f price=%.3f closed=%t",
			ev.Key, ev.Action, ev.EntryPrice, ev.Price, ev.Closed)
		update := notify.Update{
			Key:        ev.Key,
			Outcome:    ev.Outcome,
			Action:     ev.Action.String(),
			EntryPrice: ev.EntryPrice,
			Price:      ev.Price,
			Closed:     ev.Closed,
			URL:        ev.URL,
		}
		if err := a.notifiers.SendUpdate(update); err != nil {
			logger.Error("Failed to send update notification: %v", err)
		}
	}
}

// checkpoint persists the current engine state best-effort.
func (a *app) checkpoint() {
	if err := a.store.SaveSnapshot(a.eng.Snapshot()); err != nil {
		logger.Error("Failed to checkpoint state: %v", err)
	}
}

// sendDailyRecap runs on the daily schedule.
func (a *app) sendDailyRecap() {
	msg, ok, err := a.rec.DailySummary()
	if err != nil {
		logger.Error("Failed to build daily recap: %v", err)
		return
	}
	if !ok {
		logger.Debug("No graded alerts for daily recap")
		return
	}
	if err := a.notifiers.SendText(msg); err != nil {
		logger.Error("Failed to send daily recap: %v", err)
	}
}
