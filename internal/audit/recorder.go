// Package audit persists a record of each resolution call to SQLite so
// bundle decisions can be inspected after the fact. Recording is best
// effort: a failed write is logged and never fails the resolution.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"dirigent/internal/engine"
)

// Recorder writes one row per resolution to a SQLite database.
type Recorder struct {
	db  *sql.DB
	log *zap.Logger
}

// Record is one persisted resolution, as read back by Recent.
type Record struct {
	RunID       string
	ProjectRoot string
	Mode        string
	UnitIDs     []string
	Dropped     []engine.DroppedUnit
	DurationMS  int64
	CreatedAt   time.Time
}

const schema = `
	CREATE TABLE IF NOT EXISTS resolutions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		project_root TEXT NOT NULL,
		mode TEXT,
		unit_ids TEXT NOT NULL,
		dropped TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_resolutions_created ON resolutions(created_at);
`

// Open opens (creating if needed) the audit database at path. A nil
// logger disables logging.
func Open(path string, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	return &Recorder{db: db, log: log}, nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Record persists one resolution. Errors are logged, not returned: the
// audit trail must never fail a successful resolution.
func (r *Recorder) Record(ctx context.Context, projectRoot, mode string, bundle *engine.Bundle, took time.Duration) {
	unitIDs, err := json.Marshal(bundle.UnitIDs())
	if err != nil {
		r.log.Warn("audit: failed to encode unit ids", zap.Error(err))
		return
	}
	dropped, err := json.Marshal(bundle.Dropped)
	if err != nil {
		r.log.Warn("audit: failed to encode dropped units", zap.Error(err))
		return
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO resolutions (run_id, project_root, mode, unit_ids, dropped, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		bundle.RunID, projectRoot, mode, string(unitIDs), string(dropped), took.Milliseconds())
	if err != nil {
		r.log.Warn("audit: failed to record resolution",
			zap.String("run_id", bundle.RunID),
			zap.Error(err))
		return
	}

	r.log.Debug("audit: resolution recorded", zap.String("run_id", bundle.RunID))
}

// Recent returns the most recent records, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, project_root, mode, unit_ids, dropped, duration_ms, created_at
		FROM resolutions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var unitIDs, dropped string
		if err := rows.Scan(&rec.RunID, &rec.ProjectRoot, &rec.Mode,
			&unitIDs, &dropped, &rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		if err := json.Unmarshal([]byte(unitIDs), &rec.UnitIDs); err != nil {
			return nil, fmt.Errorf("corrupt unit_ids for run %s: %w", rec.RunID, err)
		}
		if err := json.Unmarshal([]byte(dropped), &rec.Dropped); err != nil {
			return nil, fmt.Errorf("corrupt dropped for run %s: %w", rec.RunID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
