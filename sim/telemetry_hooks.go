package sim

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/telemetry"
)

// TelemetryOptions configures what a run records while it steps.
type TelemetryOptions struct {
	Seed           int64
	StatsWindow    float64 // seconds per stats window
	Groups         telemetry.GroupParams
	Output         *telemetry.OutputManager // nil disables CSV output
	PositionsEvery int                      // ticks between positions.csv rows, 0 disables
	SnapshotDir    string                   // bookmark snapshots, empty disables
	LogStats       bool
	StatsCallback  func(telemetry.WindowStats)
}

type observer struct {
	opts      TelemetryOptions
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	hunts     *telemetry.LifetimeTracker
	events    []telemetry.KillEvent
	positions []telemetry.PositionRecord
}

// TelemetryFrom builds telemetry options from the config file sections.
// Output, snapshots and logging are left for the caller to set.
func TelemetryFrom(cfg *config.Config, seed int64) TelemetryOptions {
	return TelemetryOptions{
		Seed:        seed,
		StatsWindow: cfg.Telemetry.StatsWindow,
		Groups: telemetry.GroupParams{
			Eps:       cfg.Telemetry.GroupEps,
			MinPoints: cfg.Telemetry.GroupMinPoints,
		},
		PositionsEvery: cfg.Telemetry.PositionsEvery,
	}
}

// EnableTelemetry attaches window statistics, kill events and bookmark
// detection to every subsequent step.
func (s *Simulation) EnableTelemetry(opts TelemetryOptions) {
	opts.Groups.Boundary = s.cfg.Boundary
	opts.Groups.Length = s.cfg.Length
	s.obs = &observer{
		opts:      opts,
		collector: telemetry.NewCollector(opts.StatsWindow, s.clock.Dt(), opts.Groups),
		bookmarks: telemetry.NewBookmarkDetector(10),
		hunts:     telemetry.NewLifetimeTracker(s.clock.Dt()),
	}
	s.writePositions()
}

// observe runs after the clock advances.
func (s *Simulation) observe() {
	if s.obs == nil {
		return
	}
	s.recordKills()
	if every := s.obs.opts.PositionsEvery; every > 0 && s.clock.CurrentIndex()%every == 0 {
		s.writePositions()
	}
	s.flushTelemetry()
}

// recordKills feeds the last step's kills to the collector and deaths.csv.
func (s *Simulation) recordKills() {
	if len(s.kills) == 0 {
		return
	}
	o := s.obs
	o.events = o.events[:0]
	for _, k := range s.kills {
		o.collector.RecordKill()
		o.hunts.RecordKill(k.Predator, k.Tick)
		o.events = append(o.events, telemetry.KillEvent{
			Tick:      k.Tick,
			Time:      s.clock.TimeAt(k.Tick),
			Predator:  k.Predator,
			Prey:      k.Prey,
			X:         k.Pos.X,
			Y:         k.Pos.Y,
			PreySpeed: r2.Norm(k.PreyVel),
		})
	}
	if o.opts.Output != nil {
		if err := o.opts.Output.WriteKills(o.events); err != nil {
			slog.Error("failed to write kills", "error", err)
		}
	}
}

// writePositions appends every agent's latest state to positions.csv.
func (s *Simulation) writePositions() {
	o := s.obs
	if o.opts.Output == nil || !o.opts.Output.WantsPositions() || o.opts.PositionsEvery <= 0 {
		return
	}
	tick, t := s.clock.CurrentIndex(), s.clock.CurrentTime()
	o.positions = o.positions[:0]
	for i := range s.agents {
		a := s.Agent(i)
		o.positions = append(o.positions, telemetry.NewPositionRecord(
			tick, t, i, a.Kind, a.Alive(),
			a.Position.X, a.Position.Y, a.Velocity.X, a.Velocity.Y,
		))
	}
	if err := o.opts.Output.WritePositions(o.positions); err != nil {
		slog.Error("failed to write positions", "error", err)
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	o := s.obs
	tick := s.clock.CurrentIndex()
	if !o.collector.ShouldFlush(tick) {
		return
	}

	stats := o.collector.Flush(tick, s.sample())

	if o.opts.StatsCallback != nil {
		o.opts.StatsCallback(stats)
	}

	var perfStats telemetry.PerfStats
	if s.perf != nil {
		perfStats = s.perf.Stats()
	}

	if o.opts.LogStats {
		stats.LogStats()
		if s.perf != nil {
			perfStats.LogStats()
		}
	}

	if o.opts.Output != nil {
		if err := o.opts.Output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if s.perf != nil {
			if err := o.opts.Output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
	}

	for _, bm := range o.bookmarks.Check(stats) {
		if o.opts.LogStats {
			bm.LogBookmark()
		}
		if o.opts.SnapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes the current state to the snapshot directory.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.Snapshot(s.obs.opts.Seed, bookmark), s.obs.opts.SnapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", s.clock.CurrentIndex())
}

// Finish writes summary.csv and timeline.csv when CSV output is enabled.
func (s *Simulation) Finish() error {
	if s.obs == nil || s.obs.opts.Output == nil {
		return nil
	}
	return s.obs.opts.Output.WriteSummary(s.Summary(s.obs.opts.Seed), s.Timeline())
}
