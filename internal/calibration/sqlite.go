package calibration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id     TEXT PRIMARY KEY,
    factor         REAL,
    last_estimate  INTEGER,
    last_actual    INTEGER,
    updated_at     TEXT,
    estimate_time  TEXT,
    calibrated_at  TEXT
);

CREATE TABLE IF NOT EXISTS meta (
    key    TEXT PRIMARY KEY,
    value  REAL NOT NULL
);
`

const recentAverageKey = "recent_average_factor"

// SQLiteBackend persists the store state in an embedded SQLite
// database. SQLite's own locking serializes concurrent hook firings,
// so this backend needs no sidecar lock file. The contract is the same
// full-state round trip as FileBackend: Load reads everything, Save
// rewrites everything in one transaction.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLiteBackend opens or creates the calibration database at path.
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating calibration dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("opening calibration db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Load reads the full session map and diagnostic average.
func (b *SQLiteBackend) Load() (State, error) {
	state := NewState()

	rows, err := b.db.Query(`SELECT session_id, factor, last_estimate, last_actual,
		updated_at, estimate_time, calibrated_at FROM sessions`)
	if err != nil {
		return state, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		var factor sql.NullFloat64
		var lastEstimate, lastActual sql.NullInt64
		var updatedAt, estimateTime, calibratedAt sql.NullString

		if err := rows.Scan(&id, &factor, &lastEstimate, &lastActual,
			&updatedAt, &estimateTime, &calibratedAt); err != nil {
			return state, err
		}

		rec := &Record{}
		if factor.Valid {
			rec.Factor = factor.Float64
		}
		if lastEstimate.Valid {
			v := int(lastEstimate.Int64)
			rec.LastEstimate = &v
		}
		if lastActual.Valid {
			v := int(lastActual.Int64)
			rec.LastActual = &v
		}
		rec.UpdatedAt = parseTime(updatedAt)
		rec.EstimateTime = parseTime(estimateTime)
		rec.CalibratedAt = parseTime(calibratedAt)

		state.Sessions[id] = rec
	}
	if err := rows.Err(); err != nil {
		return state, err
	}

	var avg float64
	err = b.db.QueryRow("SELECT value FROM meta WHERE key = ?", recentAverageKey).Scan(&avg)
	switch err {
	case nil:
		state.RecentAverageFactor = avg
	case sql.ErrNoRows:
		// fresh database, keep the 1.0 default
	default:
		return state, err
	}

	return state, nil
}

// Save rewrites the full state in one transaction.
func (b *SQLiteBackend) Save(state State) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return err
	}

	for id, rec := range state.Sessions {
		var factor any
		if rec.Calibrated() {
			factor = rec.Factor
		}
		var lastEstimate, lastActual any
		if rec.LastEstimate != nil {
			lastEstimate = int64(*rec.LastEstimate)
		}
		if rec.LastActual != nil {
			lastActual = int64(*rec.LastActual)
		}

		_, err := tx.Exec(`INSERT INTO sessions
			(session_id, factor, last_estimate, last_actual, updated_at, estimate_time, calibrated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, factor, lastEstimate, lastActual,
			formatTime(rec.UpdatedAt), formatTime(rec.EstimateTime), formatTime(rec.CalibratedAt),
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`,
		recentAverageKey, state.RecentAverageFactor)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
