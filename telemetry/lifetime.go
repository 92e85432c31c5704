package telemetry

import "gonum.org/v1/gonum/stat"

// HuntStats tracks one predator's kills over the run.
type HuntStats struct {
	Kills        int
	LastKillTick int
	Intervals    []float64 // seconds between consecutive kills
}

// LifetimeTracker manages per-predator hunting statistics, keyed by agent index.
type LifetimeTracker struct {
	dt    float64
	stats map[int]*HuntStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker(dt float64) *LifetimeTracker {
	return &LifetimeTracker{
		dt:    dt,
		stats: make(map[int]*HuntStats),
	}
}

// Get returns the stats for a predator, or nil if it never killed.
func (lt *LifetimeTracker) Get(predator int) *HuntStats {
	return lt.stats[predator]
}

// RecordKill records a kill by predator at tick.
func (lt *LifetimeTracker) RecordKill(predator, tick int) {
	s := lt.stats[predator]
	if s == nil {
		s = &HuntStats{}
		lt.stats[predator] = s
	} else {
		s.Intervals = append(s.Intervals, float64(tick-s.LastKillTick)*lt.dt)
	}
	s.Kills++
	s.LastKillTick = tick
}

// HuntSummary aggregates hunting over all predators.
type HuntSummary struct {
	Hunters          int     `csv:"hunters"` // predators with at least one kill
	MaxKills         int     `csv:"max_kills"`
	MeanKillInterval float64 `csv:"mean_kill_interval"`
}

// Summary aggregates the tracked predators.
func (lt *LifetimeTracker) Summary() HuntSummary {
	var out HuntSummary
	var intervals []float64
	for _, s := range lt.stats {
		out.Hunters++
		out.MaxKills = max(out.MaxKills, s.Kills)
		intervals = append(intervals, s.Intervals...)
	}
	if len(intervals) > 0 {
		out.MeanKillInterval = stat.Mean(intervals, nil)
	}
	return out
}
