package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pthm-cable/flock/telemetry"
)

// Run describes one simulation run.
type Run struct {
	ID        int64
	Seed      int64
	Boundary  string
	Prey      int
	Predators int
	Length    float64
	EndTime   float64
	Config    string
	StartedAt time.Time

	Finished  bool
	Ticks     int
	PreyAlive int
	PropDead  float64
	MaxKills  int
}

// Evaluation is one optimizer fitness evaluation.
type Evaluation struct {
	Study        string
	Eval         int
	Params       []float64
	Fitness      float64
	PropDead     float64
	Polarization float64
	Accepted     bool
}

// RunStore is a SQLite-backed record of runs and evaluations.
type RunStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*RunStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &RunStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *RunStore) Path() string { return s.path }

// BeginRun records the start of a run and returns its ID.
func (s *RunStore) BeginRun(ctx context.Context, r Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (seed, boundary, prey, predators, length, end_time, config, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Seed, r.Boundary, r.Prey, r.Predators, r.Length, r.EndTime, r.Config,
		r.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

// AddWindow stores one stats window of a run.
func (s *RunStore) AddWindow(ctx context.Context, runID int64, w telemetry.WindowStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO window_stats
			(run_id, window_end, sim_time, prey, predators, kills, polarization, prey_speed_mean, group_count, largest_group)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, w.WindowEndTick, w.SimTimeSec, w.PreyCount, w.PredCount, w.Kills,
		w.Polarization, w.PreySpeedMean, w.Groups, w.LargestGroup)
	if err != nil {
		return fmt.Errorf("failed to insert window: %w", err)
	}
	return nil
}

// FinishRun records the end-of-run summary.
func (s *RunStore) FinishRun(ctx context.Context, runID int64, sum telemetry.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, ticks = ?, prey_alive = ?, prop_dead = ?, max_kills = ?
		WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), sum.Ticks, sum.PreyAlive, sum.PropDead, sum.MaxKills, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// Runs returns every recorded run, oldest first.
func (s *RunStore) Runs(ctx context.Context) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, boundary, prey, predators, length, end_time, config, started_at,
		       finished_at, ticks, prey_alive, prop_dead, max_kills
		FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var config, finishedAt sql.NullString
		var startedAt string
		var ticks, preyAlive, maxKills sql.NullInt64
		var propDead sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Seed, &r.Boundary, &r.Prey, &r.Predators, &r.Length, &r.EndTime,
			&config, &startedAt, &finishedAt, &ticks, &preyAlive, &propDead, &maxKills); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Config = config.String
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		r.Finished = finishedAt.Valid
		r.Ticks = int(ticks.Int64)
		r.PreyAlive = int(preyAlive.Int64)
		r.PropDead = propDead.Float64
		r.MaxKills = int(maxKills.Int64)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Windows returns the stats windows of a run in tick order. Only the
// persisted columns are populated.
func (s *RunStore) Windows(ctx context.Context, runID int64) ([]telemetry.WindowStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT window_end, sim_time, prey, predators, kills, polarization, prey_speed_mean, group_count, largest_group
		FROM window_stats WHERE run_id = ? ORDER BY window_end`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	defer rows.Close()

	var out []telemetry.WindowStats
	for rows.Next() {
		var w telemetry.WindowStats
		if err := rows.Scan(&w.WindowEndTick, &w.SimTimeSec, &w.PreyCount, &w.PredCount, &w.Kills,
			&w.Polarization, &w.PreySpeedMean, &w.Groups, &w.LargestGroup); err != nil {
			return nil, fmt.Errorf("failed to scan window: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// AddEvaluation stores one optimizer evaluation.
func (s *RunStore) AddEvaluation(ctx context.Context, e Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, err := json.Marshal(e.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (study, eval, params, fitness, prop_dead, polarization, accepted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Study, e.Eval, string(params), e.Fitness, e.PropDead, e.Polarization, e.Accepted,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}
	return nil
}

// BestEvaluation returns the lowest-fitness evaluation of a study.
func (s *RunStore) BestEvaluation(ctx context.Context, study string) (Evaluation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e Evaluation
	var params string
	err := s.db.QueryRowContext(ctx, `
		SELECT study, eval, params, fitness, prop_dead, polarization, accepted
		FROM evaluations WHERE study = ? ORDER BY fitness ASC, eval ASC LIMIT 1`, study).
		Scan(&e.Study, &e.Eval, &params, &e.Fitness, &e.PropDead, &e.Polarization, &e.Accepted)
	if err == sql.ErrNoRows {
		return Evaluation{}, false, nil
	}
	if err != nil {
		return Evaluation{}, false, fmt.Errorf("failed to query best evaluation: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
		return Evaluation{}, false, fmt.Errorf("failed to unmarshal params: %w", err)
	}
	return e, true, nil
}

// AcceptedCount returns the number of accepted evaluations in a study.
func (s *RunStore) AcceptedCount(ctx context.Context, study string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evaluations WHERE study = ? AND accepted = 1`, study).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count accepted: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *RunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
