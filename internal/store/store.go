package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dubsync/internal/subtitle"
)

// Store persists pipeline state backed by SQLite. The lines table holds
// the full tabular view of every subtitle line; the stages table records
// which stages have completed so an interrupted run can resume.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the workspace database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
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

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// StartRun records the start of a pipeline run.
func (s *Store) StartRun(ctx context.Context, runID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO runs (id, started_at) VALUES (?, ?)", runID, now); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ReplaceLines swaps the persisted line set for the given one in a single
// transaction. Stages overwrite the whole table rather than patching rows
// so a checkpoint always reflects exactly one stage's output.
func (s *Store) ReplaceLines(ctx context.Context, lines []subtitle.Line) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lines tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM lines"); err != nil {
		return fmt.Errorf("clear lines: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lines (
        idx, source, translation, clips_json,
        start_sec, end_sec, duration,
        gap, tolerance, tol_dur, est_dur, speed_flag,
        cut_off, real_dur, new_times_json
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare line insert: %w", err)
	}
	defer stmt.Close()

	for i := range lines {
		line := &lines[i]
		clipsJSON, err := json.Marshal(clipsOrEmpty(line.Clips))
		if err != nil {
			return fmt.Errorf("marshal clips for line %d: %w", line.Index, err)
		}
		timesJSON, err := json.Marshal(timesOrEmpty(line.NewTimes))
		if err != nil {
			return fmt.Errorf("marshal times for line %d: %w", line.Index, err)
		}
		if _, err := stmt.ExecContext(ctx,
			line.Index, line.Source, line.Translation, string(clipsJSON),
			line.Start, line.End, line.Duration,
			line.Gap, line.Tolerance, line.TolDur, line.EstDur, line.SpeedFlag,
			line.CutOff, line.RealDur, string(timesJSON),
		); err != nil {
			return fmt.Errorf("insert line %d: %w", line.Index, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lines: %w", err)
	}
	return nil
}

// Lines returns every persisted line ordered by index.
func (s *Store) Lines(ctx context.Context) ([]subtitle.Line, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
        idx, source, translation, clips_json,
        start_sec, end_sec, duration,
        gap, tolerance, tol_dur, est_dur, speed_flag,
        cut_off, real_dur, new_times_json
    FROM lines ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var lines []subtitle.Line
	for rows.Next() {
		var line subtitle.Line
		var clipsJSON, timesJSON string
		if err := rows.Scan(
			&line.Index, &line.Source, &line.Translation, &clipsJSON,
			&line.Start, &line.End, &line.Duration,
			&line.Gap, &line.Tolerance, &line.TolDur, &line.EstDur, &line.SpeedFlag,
			&line.CutOff, &line.RealDur, &timesJSON,
		); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if err := json.Unmarshal([]byte(clipsJSON), &line.Clips); err != nil {
			return nil, fmt.Errorf("decode clips for line %d: %w", line.Index, err)
		}
		if err := json.Unmarshal([]byte(timesJSON), &line.NewTimes); err != nil {
			return nil, fmt.Errorf("decode times for line %d: %w", line.Index, err)
		}
		if len(line.Clips) == 0 {
			line.Clips = nil
		}
		if len(line.NewTimes) == 0 {
			line.NewTimes = nil
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lines: %w", err)
	}
	return lines, nil
}

// MarkStageComplete checkpoints a finished stage for the given run.
func (s *Store) MarkStageComplete(ctx context.Context, name, runID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO stages (name, run_id, completed_at) VALUES (?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET run_id = excluded.run_id, completed_at = excluded.completed_at`,
		name, runID, now); err != nil {
		return fmt.Errorf("mark stage %s: %w", name, err)
	}
	return nil
}

// StageComplete reports whether a stage has a recorded checkpoint.
func (s *Store) StageComplete(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM stages WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check stage %s: %w", name, err)
	}
	return count > 0, nil
}

// StageCompletions returns the completion timestamps keyed by stage name.
func (s *Store) StageCompletions(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, completed_at FROM stages")
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	completions := make(map[string]string)
	for rows.Next() {
		var name, completedAt string
		if err := rows.Scan(&name, &completedAt); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		completions[name] = completedAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stages: %w", err)
	}
	return completions, nil
}

// ResetStages drops every stage checkpoint, forcing a full re-run.
func (s *Store) ResetStages(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM stages"); err != nil {
		return fmt.Errorf("reset stages: %w", err)
	}
	return nil
}

// ClearStagesFrom drops the named stage checkpoints so those stages run
// again while earlier ones stay checkpointed.
func (s *Store) ClearStagesFrom(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM stages WHERE name = ?", name); err != nil {
			return fmt.Errorf("clear stage %s: %w", name, err)
		}
	}
	return nil
}

func clipsOrEmpty(clips []string) []string {
	if clips == nil {
		return []string{}
	}
	return clips
}

func timesOrEmpty(times [][2]float64) [][2]float64 {
	if times == nil {
		return [][2]float64{}
	}
	return times
}
