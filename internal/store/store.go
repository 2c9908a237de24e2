// Package store records burn-in runs in SQLite so long-haul pacing
// behavior can be compared across catalog revisions. The scheduler
// itself persists nothing; only harness output lands here.
package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/norddeich/castaway/internal/catalog"
	"github.com/norddeich/castaway/internal/sim"
)

// DB wraps a SQLite connection for burn-in run storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		hours REAL NOT NULL,
		total_frames INTEGER NOT NULL,
		total_events INTEGER NOT NULL,
		rare_events INTEGER NOT NULL,
		max_simultaneous INTEGER NOT NULL,
		cooldown_violations INTEGER NOT NULL,
		min_runtime_violations INTEGER NOT NULL,
		rare_interval_violations INTEGER NOT NULL,
		ambient_interval_violations INTEGER NOT NULL,
		timing_drift_seconds REAL NOT NULL,
		rare_ratio_warning TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_events (
		run_id INTEGER NOT NULL,
		event_id TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, event_id)
	);

	CREATE TABLE IF NOT EXISTS run_diagnostics (
		run_id INTEGER NOT NULL,
		entry_index INTEGER NOT NULL,
		event_id TEXT NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id);
	CREATE INDEX IF NOT EXISTS idx_run_diagnostics_run ON run_diagnostics(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one recorded burn-in session.
type Run struct {
	ID                        int64   `db:"id"`
	CreatedAt                 string  `db:"created_at"`
	Seed                      int64   `db:"seed"`
	Hours                     float64 `db:"hours"`
	TotalFrames               int     `db:"total_frames"`
	TotalEvents               int     `db:"total_events"`
	RareEvents                int     `db:"rare_events"`
	MaxSimultaneous           int     `db:"max_simultaneous"`
	CooldownViolations        int     `db:"cooldown_violations"`
	MinRuntimeViolations      int     `db:"min_runtime_violations"`
	RareIntervalViolations    int     `db:"rare_interval_violations"`
	AmbientIntervalViolations int     `db:"ambient_interval_violations"`
	TimingDriftSeconds        float64 `db:"timing_drift_seconds"`
	RareRatioWarning          string  `db:"rare_ratio_warning"`
}

// SaveRun writes one burn-in result with its per-event counts and the
// catalog diagnostics that accompanied the load. Returns the run id.
func (db *DB) SaveRun(stats sim.Stats, diags []catalog.Diagnostic) (int64, error) {
	tx, err := db.conn.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (
			created_at, seed, hours, total_frames, total_events, rare_events,
			max_simultaneous, cooldown_violations, min_runtime_violations,
			rare_interval_violations, ambient_interval_violations,
			timing_drift_seconds, rare_ratio_warning
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		stats.Seed, stats.Hours, stats.TotalFrames, stats.TotalEvents,
		stats.RareEventTotal, stats.MaxSimultaneous, stats.CooldownViolations,
		stats.MinRuntimeViolations, stats.RareIntervalViolations,
		stats.AmbientIntervalViolations, stats.TimingDriftSeconds,
		stats.RareRatioWarning,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for id, count := range stats.EventCounts {
		if _, err := tx.Exec(
			`INSERT INTO run_events (run_id, event_id, count) VALUES (?, ?, ?)`,
			runID, id, count,
		); err != nil {
			return 0, fmt.Errorf("insert run event: %w", err)
		}
	}

	for _, d := range diags {
		if _, err := tx.Exec(
			`INSERT INTO run_diagnostics (run_id, entry_index, event_id, reason) VALUES (?, ?, ?, ?)`,
			runID, d.Index, d.ID, d.Reason,
		); err != nil {
			return 0, fmt.Errorf("insert diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	slog.Info("burn-in run recorded", "run_id", runID, "events", stats.TotalEvents)
	return runID, nil
}

// RecentRuns returns the newest runs, most recent first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := db.conn.Select(&runs, `SELECT * FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return runs, nil
}

// EventCounts returns the per-event firing counts for a run.
func (db *DB) EventCounts(runID int64) (map[string]int, error) {
	rows, err := db.conn.Queryx(`SELECT event_id, count FROM run_events WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("select run events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}
