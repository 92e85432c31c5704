package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flock/store"
)

// EvalRecord is one row of evaluations.csv.
type EvalRecord struct {
	Eval           int     `csv:"eval"`
	Fitness        float64 `csv:"fitness"`
	PropDead       float64 `csv:"prop_dead"`
	PropDeadStd    float64 `csv:"prop_dead_std"`
	Polarization   float64 `csv:"polarization"`
	Accepted       bool    `csv:"accepted"`
	Alignment      float64 `csv:"prey_alignment"`
	Attraction     float64 `csv:"prey_attraction"`
	Repulsion      float64 `csv:"prey_repulsion"`
	CrossAlignment float64 `csv:"prey_evasion"`
	CrossRepulsion float64 `csv:"prey_flee"`
}

func newEvalRecord(eval int, fitness float64, accepted bool, res EvalResult) EvalRecord {
	p := res.Params
	return EvalRecord{
		Eval:           eval,
		Fitness:        fitness,
		PropDead:       res.PropDead,
		PropDeadStd:    res.PropDeadStd,
		Polarization:   res.Polarization,
		Accepted:       accepted,
		Alignment:      p[0],
		Attraction:     p[1],
		Repulsion:      p[2],
		CrossAlignment: p[3],
		CrossRepulsion: p[4],
	}
}

// studyLog records every evaluation of a study to CSV and, when a store is
// open, to the run database.
type studyLog struct {
	study  string
	total  int
	store  *store.RunStore
	file   *os.File
	header bool

	count int
	start time.Time
}

func newStudyLog(dir, study string, total int, st *store.RunStore) (*studyLog, error) {
	f, err := os.Create(filepath.Join(dir, "evaluations.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluation log: %w", err)
	}
	return &studyLog{study: study, total: total, store: st, file: f, start: time.Now()}, nil
}

// Record appends one evaluation and logs progress.
func (l *studyLog) Record(ctx context.Context, fitness float64, accepted bool, res EvalResult) error {
	l.count++
	rec := []EvalRecord{newEvalRecord(l.count, fitness, accepted, res)}

	var err error
	if !l.header {
		err = gocsv.Marshal(rec, l.file)
		l.header = true
	} else {
		err = gocsv.MarshalWithoutHeaders(rec, l.file)
	}
	if err != nil {
		return fmt.Errorf("writing evaluations.csv: %w", err)
	}

	if l.store != nil {
		if err := l.store.AddEvaluation(ctx, store.Evaluation{
			Study:        l.study,
			Eval:         l.count,
			Params:       res.Params,
			Fitness:      fitness,
			PropDead:     res.PropDead,
			Polarization: res.Polarization,
			Accepted:     accepted,
		}); err != nil {
			return err
		}
	}

	elapsed := time.Since(l.start)
	remaining := time.Duration(0)
	if l.total > l.count {
		remaining = time.Duration(l.total-l.count) * (elapsed / time.Duration(l.count))
	}
	slog.Info("evaluation",
		"eval", l.count,
		"of", l.total,
		"fitness", fitness,
		"prop_dead", res.PropDead,
		"accepted", accepted,
		"elapsed", formatDuration(elapsed),
		"eta", formatDuration(remaining),
	)
	return nil
}

// Count returns the number of recorded evaluations.
func (l *studyLog) Count() int {
	return l.count
}

// Elapsed returns the time since the study started.
func (l *studyLog) Elapsed() time.Duration {
	return time.Since(l.start)
}

func (l *studyLog) Close() error {
	return l.file.Close()
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
