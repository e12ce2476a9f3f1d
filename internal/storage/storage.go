// Package storage provides SQLite-backed persistence for engine snapshots,
// the alert log, and game results.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db        *sql.DB
	maxAlerts int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/sportsedge/data.db.
func New(maxAlerts int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "sportsedge", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxAlerts: maxAlerts}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			key   TEXT NOT NULL,
			ts    INTEGER NOT NULL,
			price REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_key ON history(key)`,
		`CREATE TABLE IF NOT EXISTS cooldowns (
			key       TEXT NOT NULL,
			class     TEXT NOT NULL,
			last_fire INTEGER NOT NULL,
			PRIMARY KEY (key, class)
		)`,
		`CREATE TABLE IF NOT EXISTS positions (
			key         TEXT PRIMARY KEY,
			entry_price REAL NOT NULL,
			opened_at   INTEGER NOT NULL,
			peak_price  REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS first_seen (
			key     TEXT PRIMARY KEY,
			price   REAL NOT NULL,
			seen_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id          TEXT PRIMARY KEY,
			key         TEXT NOT NULL,
			venue       TEXT NOT NULL,
			league      TEXT,
			class       TEXT NOT NULL,
			event_id    TEXT,
			outcome     TEXT,
			price       REAL NOT NULL,
			move        REAL NOT NULL,
			confidence  REAL NOT NULL,
			live        INTEGER NOT NULL DEFAULT 0,
			url         TEXT,
			detected_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_event ON alerts(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_detected_at ON alerts(detected_at)`,
		`CREATE TABLE IF NOT EXISTS results (
			event_id    TEXT PRIMARY KEY,
			winner      TEXT NOT NULL,
			finished_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot replaces the persisted engine state with the provided snapshot
// in one transaction. Results survive snapshots; they are recorded separately.
func (s *Storage) SaveSnapshot(snap *models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"history", "cooldowns", "positions", "first_seen", "alerts"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for key, buf := range snap.History {
		for _, obs := range buf {
			if _, err := tx.Exec(`INSERT INTO history (key, ts, price) VALUES (?,?,?)`,
				key, obs.Timestamp, obs.Price); err != nil {
				return fmt.Errorf("failed to insert history: %w", err)
			}
		}
	}
	for _, rec := range snap.Cooldowns {
		if _, err := tx.Exec(`INSERT INTO cooldowns (key, class, last_fire) VALUES (?,?,?)`,
			rec.Key, rec.Class, rec.LastFire); err != nil {
			return fmt.Errorf("failed to insert cooldown: %w", err)
		}
	}
	for key, pos := range snap.Positions {
		if _, err := tx.Exec(`INSERT INTO positions (key, entry_price, opened_at, peak_price) VALUES (?,?,?,?)`,
			key, pos.EntryPrice, pos.OpenedAt, pos.PeakPrice); err != nil {
			return fmt.Errorf("failed to insert position: %w", err)
		}
	}
	for key, fs := range snap.FirstSeen {
		if _, err := tx.Exec(`INSERT INTO first_seen (key, price, seen_at) VALUES (?,?,?)`,
			key, fs.Price, fs.SeenAt); err != nil {
			return fmt.Errorf("failed to insert first seen: %w", err)
		}
	}
	for _, a := range snap.Alerts {
		if _, err := tx.Exec(`INSERT INTO alerts
			(id, key, venue, league, class, event_id, outcome, price, move, confidence, live, url, detected_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			a.ID, a.Key, a.Venue, a.League, a.Class, a.EventID, a.Outcome,
			a.Price, a.Move, a.Confidence, boolToInt(a.Live), a.URL, a.DetectedAt); err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
	}

	// Oldest-trimmed alert cap.
	if _, err := tx.Exec(`
		DELETE FROM alerts WHERE id NOT IN (
			SELECT id FROM alerts ORDER BY detected_at DESC LIMIT ?
		)`, s.maxAlerts); err != nil {
		return fmt.Errorf("failed to enforce alert cap: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot reads the persisted engine state. Callers treat any error as a
// cold start; a fresh database yields a valid empty snapshot.
func (s *Storage) LoadSnapshot() (*models.Snapshot, error) {
	snap := models.NewSnapshot()

	rows, err := s.db.Query(`SELECT key, ts, price FROM history ORDER BY key, ts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var obs models.Observation
		if err := rows.Scan(&key, &obs.Timestamp, &obs.Price); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		snap.History[key] = append(snap.History[key], obs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cdRows, err := s.db.Query(`SELECT key, class, last_fire FROM cooldowns`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cooldowns: %w", err)
	}
	defer cdRows.Close()
	for cdRows.Next() {
		var rec models.CooldownRecord
		if err := cdRows.Scan(&rec.Key, &rec.Class, &rec.LastFire); err != nil {
			return nil, fmt.Errorf("failed to scan cooldown: %w", err)
		}
		snap.Cooldowns = append(snap.Cooldowns, rec)
	}
	if err := cdRows.Err(); err != nil {
		return nil, err
	}

	posRows, err := s.db.Query(`SELECT key, entry_price, opened_at, peak_price FROM positions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer posRows.Close()
	for posRows.Next() {
		var key string
		var pos models.Position
		if err := posRows.Scan(&key, &pos.EntryPrice, &pos.OpenedAt, &pos.PeakPrice); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		snap.Positions[key] = pos
	}
	if err := posRows.Err(); err != nil {
		return nil, err
	}

	fsRows, err := s.db.Query(`SELECT key, price, seen_at FROM first_seen`)
	if err != nil {
		return nil, fmt.Errorf("failed to query first seen: %w", err)
	}
	defer fsRows.Close()
	for fsRows.Next() {
		var key string
		var fs models.FirstSeen
		if err := fsRows.Scan(&key, &fs.Price, &fs.SeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan first seen: %w", err)
		}
		snap.FirstSeen[key] = fs
	}
	if err := fsRows.Err(); err != nil {
		return nil, err
	}

	alerts, err := s.queryAlerts(`SELECT ` + alertCols + ` FROM alerts ORDER BY detected_at`)
	if err != nil {
		return nil, err
	}
	snap.Alerts = alerts

	return snap, nil
}

// AlertsForEvent returns all logged alerts for an event in detection order.
func (s *Storage) AlertsForEvent(eventID string) ([]models.Alert, error) {
	return s.queryAlerts(`SELECT `+alertCols+` FROM alerts WHERE event_id = ? ORDER BY detected_at`, eventID)
}

// AlertsSince returns all alerts detected at or after the given unix time.
func (s *Storage) AlertsSince(since int64) ([]models.Alert, error) {
	return s.queryAlerts(`SELECT `+alertCols+` FROM alerts WHERE detected_at >= ? ORDER BY detected_at`, since)
}

// SetResult records or replaces the final result of an event.
func (s *Storage) SetResult(result models.Result) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO results (event_id, winner, finished_at) VALUES (?,?,?)`,
		result.EventID, result.Winner, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to set result: %w", err)
	}
	return nil
}

// Result returns the recorded result for an event. The boolean is false when
// no result has been recorded.
func (s *Storage) Result(eventID string) (models.Result, bool, error) {
	row := s.db.QueryRow(`SELECT event_id, winner, finished_at FROM results WHERE event_id = ?`, eventID)
	var r models.Result
	err := row.Scan(&r.EventID, &r.Winner, &r.FinishedAt)
	if err == sql.ErrNoRows {
		return models.Result{}, false, nil
	}
	if err != nil {
		return models.Result{}, false, fmt.Errorf("failed to get result: %w", err)
	}
	return r, true, nil
}

const alertCols = `id, key, venue, league, class, event_id, outcome, price, move, confidence, live, url, detected_at`

func (s *Storage) queryAlerts(query string, args ...any) ([]models.Alert, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		var live int
		if err := rows.Scan(&a.ID, &a.Key, &a.Venue, &a.League, &a.Class, &a.EventID, &a.Outcome,
			&a.Price, &a.Move, &a.Confidence, &live, &a.URL, &a.DetectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Live = live != 0
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
