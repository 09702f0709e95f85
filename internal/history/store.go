package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tiermover/internal/mover"
)

// keepRuns bounds the history to the most recent runs.
const keepRuns = 50

// Run is one recorded orchestration pass.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	DryRun        bool
	Status        string
	Detail        string
	MoviesMoved   int
	EpisodesMoved int
	VideosMoved   int
	SubsMoved     int
	ItemsSkipped  int
	Errors        int
}

// Duration returns the wall-clock length of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists run history in SQLite.
type Store struct {
	db *sql.DB
}

// Open initializes or connects to the history database.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    dry_run INTEGER NOT NULL,
    status TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    movies_moved INTEGER NOT NULL DEFAULT 0,
    episodes_moved INTEGER NOT NULL DEFAULT 0,
    videos_moved INTEGER NOT NULL DEFAULT 0,
    subs_moved INTEGER NOT NULL DEFAULT 0,
    items_skipped INTEGER NOT NULL DEFAULT 0,
    errors INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Record inserts a completed run and prunes history beyond the retention cap.
func (s *Store) Record(ctx context.Context, started, finished time.Time, dryRun bool, status, detail string, stats mover.Stats) (Run, error) {
	run := Run{
		ID:            uuid.NewString(),
		StartedAt:     started.UTC(),
		FinishedAt:    finished.UTC(),
		DryRun:        dryRun,
		Status:        status,
		Detail:        detail,
		MoviesMoved:   stats.MoviesMoved,
		EpisodesMoved: stats.EpisodesMoved,
		VideosMoved:   stats.VideosMoved,
		SubsMoved:     stats.SubtitlesMoved(),
		ItemsSkipped:  stats.ItemsSkipped,
		Errors:        stats.Errors,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, dry_run, status, detail,
            movies_moved, episodes_moved, videos_moved, subs_moved, items_skipped, errors
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.Format(time.RFC3339Nano),
		run.FinishedAt.Format(time.RFC3339Nano),
		boolToInt(run.DryRun),
		run.Status,
		run.Detail,
		run.MoviesMoved,
		run.EpisodesMoved,
		run.VideosMoved,
		run.SubsMoved,
		run.ItemsSkipped,
		run.Errors,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
            SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
        )`, keepRuns,
	); err != nil {
		return Run{}, fmt.Errorf("prune history: %w", err)
	}

	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > keepRuns {
		limit = keepRuns
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, dry_run, status, detail,
                movies_moved, episodes_moved, videos_moved, subs_moved, items_skipped, errors
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		var dryRun int
		if err := rows.Scan(
			&run.ID, &started, &finished, &dryRun, &run.Status, &run.Detail,
			&run.MoviesMoved, &run.EpisodesMoved, &run.VideosMoved,
			&run.SubsMoved, &run.ItemsSkipped, &run.Errors,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.DryRun = dryRun != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
