package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/civsim/internal/engine"
)

// ErrNotFound is returned when a requested snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// DB wraps a SQLite connection for snapshot and turn report storage.
type DB struct {
	conn *sqlx.DB
}

// SnapshotInfo describes a stored snapshot without its body.
type SnapshotInfo struct {
	ID        string `db:"id"`
	RunID     string `db:"run_id"`
	Turn      int    `db:"turn"`
	CreatedAt int64  `db:"created_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %v", ErrPersistence, err)
	}
	// SQLite serialises writers.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrPersistence, err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		body TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turn_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		body TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_run ON turn_reports(run_id, turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// NewRunID returns a fresh identifier grouping the saves of one run.
func NewRunID() string {
	return uuid.NewString()
}

// SaveSnapshot stores the snapshot and returns its ID.
func (db *DB) SaveSnapshot(ctx context.Context, runID string, s Snapshot) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("%w: marshal snapshot: %v", ErrPersistence, err)
	}

	id := uuid.NewString()
	_, err = db.conn.ExecContext(ctx,
		"INSERT INTO snapshots (id, run_id, turn, created_at, body) VALUES (?, ?, ?, ?, ?)",
		id, runID, s.Turn, time.Now().UnixNano(), string(body),
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert snapshot: %v", ErrPersistence, err)
	}

	slog.Debug("snapshot stored", "id", id, "run_id", runID, "turn", s.Turn)
	return id, nil
}

// LoadSnapshot returns the snapshot with the given ID.
func (db *DB) LoadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	var body string
	err := db.conn.GetContext(ctx, &body, "SELECT body FROM snapshots WHERE id = ?", id)
	return decodeRow(body, err)
}

// LatestSnapshot returns the most recently stored snapshot.
func (db *DB) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	var body string
	err := db.conn.GetContext(ctx, &body, "SELECT body FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1")
	return decodeRow(body, err)
}

// ListSnapshots returns stored snapshot metadata, newest first.
func (db *DB) ListSnapshots(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := db.conn.SelectContext(ctx, &infos,
		"SELECT id, run_id, turn, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list snapshots: %v", ErrPersistence, err)
	}
	return infos, nil
}

func decodeRow(body string, err error) (Snapshot, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: query snapshot: %v", ErrPersistence, err)
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode snapshot: %v", ErrPersistence, err)
	}
	return s, nil
}

// SaveReports appends turn reports for a run.
func (db *DB) SaveReports(ctx context.Context, runID string, reports []engine.TurnReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	for _, r := range reports {
		body, err := r.JSON()
		if err != nil {
			return fmt.Errorf("%w: marshal report %d: %v", ErrPersistence, r.Turn, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO turn_reports (run_id, turn, body) VALUES (?, ?, ?)",
			runID, r.Turn, string(body),
		); err != nil {
			return fmt.Errorf("%w: insert report %d: %v", ErrPersistence, r.Turn, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPersistence, err)
	}
	return nil
}

// Reports returns the stored reports of a run in turn order.
func (db *DB) Reports(ctx context.Context, runID string) ([]engine.TurnReport, error) {
	var bodies []string
	err := db.conn.SelectContext(ctx, &bodies,
		"SELECT body FROM turn_reports WHERE run_id = ? ORDER BY turn, id", runID)
	if err != nil {
		return nil, fmt.Errorf("%w: query reports: %v", ErrPersistence, err)
	}

	reports := make([]engine.TurnReport, 0, len(bodies))
	for _, b := range bodies {
		var r engine.TurnReport
		if err := json.Unmarshal([]byte(b), &r); err != nil {
			return nil, fmt.Errorf("%w: decode report: %v", ErrPersistence, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: save meta: %v", ErrPersistence, err)
	}
	return nil
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get meta: %v", ErrPersistence, err)
	}
	return value, nil
}
