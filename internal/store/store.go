// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/wordmonster/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Record names of the two independently keyed progress payloads.
const (
	RecordMastery     = "mastery"
	RecordWrongCounts = "wrong_counts"
)

// ErrRecordNotFound is returned when a progress record has never been written.
var ErrRecordNotFound = errors.New("progress record not found")

// Store wraps SQLite access for progress and run history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps writes ordered and lets ":memory:" databases work.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS progress_records (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			pool_size INTEGER NOT NULL,
			score INTEGER NOT NULL,
			hearts_left INTEGER NOT NULL,
			game_over INTEGER NOT NULL,
			mastered_after INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadMastery returns the stored mastery keys.
func (s *Store) LoadMastery(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.loadRecord(ctx, RecordMastery, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// LoadWrongCounts returns the stored wrong-count map. Negative counts are
// treated as a corrupt payload.
func (s *Store) LoadWrongCounts(ctx context.Context) (map[string]int, error) {
	var counts map[string]int
	if err := s.loadRecord(ctx, RecordWrongCounts, &counts); err != nil {
		return nil, err
	}
	for k, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("record %s: negative count %d for %q", RecordWrongCounts, n, k)
		}
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return counts, nil
}

// SaveMastery replaces the mastery record.
func (s *Store) SaveMastery(ctx context.Context, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	return s.saveRecord(ctx, RecordMastery, keys)
}

// SaveWrongCounts replaces the wrong-count record.
func (s *Store) SaveWrongCounts(ctx context.Context, counts map[string]int) error {
	if counts == nil {
		counts = map[string]int{}
	}
	return s.saveRecord(ctx, RecordWrongCounts, counts)
}

func (s *Store) loadRecord(ctx context.Context, name string, dst any) error {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM progress_records WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("record %s: %w", name, ErrRecordNotFound)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return fmt.Errorf("record %s: malformed payload: %w", name, err)
	}
	return nil
}

func (s *Store) saveRecord(ctx context.Context, name string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO progress_records (name, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, string(payload), s.now().Format(time.RFC3339Nano))
	return err
}

// InsertRun stores a finished run.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord) (int64, error) {
	gameOver := 0
	if run.GameOver {
		gameOver = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, mode, started_at, ended_at, pool_size, score, hearts_left, game_over, mastered_after)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Mode.String(),
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.PoolSize,
		run.Score,
		run.HeartsLeft,
		gameOver,
		run.MasteredAfter,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns finished runs in chronological order, filtered by cfg.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != nil {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode.String())
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT run_id, mode, started_at, ended_at, pool_size, score, hearts_left, game_over, mastered_after
		FROM runs
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var mode, startedAt, endedAt string
		var gameOver int
		if err := rows.Scan(&run.RunID, &mode, &startedAt, &endedAt, &run.PoolSize, &run.Score, &run.HeartsLeft, &gameOver, &run.MasteredAfter); err != nil {
			return nil, err
		}
		if run.Mode, err = model.ParseMode(mode); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		run.GameOver = gameOver != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return runs, nil
}
