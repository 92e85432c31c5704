package main

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sim"
	"github.com/pthm-cable/flock/store"
	"github.com/pthm-cable/flock/telemetry"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation headless until its end time",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir, _ := cmd.Flags().GetString("output-dir")
			snapshotDir, _ := cmd.Flags().GetString("snapshot-dir")
			logStats, _ := cmd.Flags().GetBool("log-stats")
			dbPath, _ := cmd.Flags().GetString("db")
			statsWindow, _ := cmd.Flags().GetFloat64("stats-window")
			positionsEvery, _ := cmd.Flags().GetInt("positions-every")
			maxTicks, _ := cmd.Flags().GetInt("max-ticks")

			cfg := config.Cfg()
			if statsWindow > 0 {
				cfg.Telemetry.StatsWindow = statsWindow
			}
			if positionsEvery >= 0 {
				cfg.Telemetry.PositionsEvery = positionsEvery
			}
			cfg.Recompute()

			return runHeadless(cmd.Context(), cfg, runOptions{
				Seed:        seedFlag(cmd),
				OutputDir:   outputDir,
				SnapshotDir: snapshotDir,
				LogStats:    logStats,
				DBPath:      dbPath,
				MaxTicks:    maxTicks,
			})
		},
	}

	cmd.Flags().String("output-dir", "", "Output directory for CSV logs and config snapshot")
	cmd.Flags().String("snapshot-dir", "", "Directory for bookmark snapshots")
	cmd.Flags().Bool("log-stats", false, "Output window stats via slog")
	cmd.Flags().String("db", "", "SQLite run store to record the run in")
	cmd.Flags().Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	cmd.Flags().Int("positions-every", -1, "Ticks between positions.csv rows (-1 = use config, 0 = off)")
	cmd.Flags().Int("max-ticks", 0, "Stop after N ticks (0 = run to end time)")

	return cmd
}

// runOptions holds the headless run settings not found in the config file.
type runOptions struct {
	Seed        int64
	OutputDir   string
	SnapshotDir string
	LogStats    bool
	DBPath      string
	MaxTicks    int
}

// runHeadless builds, steps and records one simulation.
func runHeadless(ctx context.Context, cfg *config.Config, ro runOptions) error {
	simCfg, err := sim.ConfigFrom(cfg)
	if err != nil {
		return err
	}
	s, err := sim.Build(simCfg, rand.New(rand.NewSource(ro.Seed)))
	if err != nil {
		return err
	}
	s.EnablePerf(cfg.Telemetry.PerfWindow)

	opts := sim.TelemetryFrom(cfg, ro.Seed)
	opts.LogStats = ro.LogStats
	opts.SnapshotDir = ro.SnapshotDir

	om, err := telemetry.NewOutputManager(ro.OutputDir, opts.PositionsEvery > 0)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}
	opts.Output = om

	var (
		runs  *store.RunStore
		runID int64
	)
	if ro.DBPath != "" {
		runs, err = store.Open(ro.DBPath)
		if err != nil {
			return err
		}
		defer runs.Close()

		cfgYAML, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		runID, err = runs.BeginRun(ctx, store.Run{
			Seed:      ro.Seed,
			Boundary:  simCfg.Boundary.String(),
			Prey:      simCfg.PreyCount,
			Predators: simCfg.PredatorCount,
			Length:    simCfg.Length,
			EndTime:   simCfg.EndTime,
			Config:    string(cfgYAML),
		})
		if err != nil {
			return err
		}
		opts.StatsCallback = func(w telemetry.WindowStats) {
			if err := runs.AddWindow(ctx, runID, w); err != nil {
				slog.Error("failed to store window", "error", err)
			}
		}
	}
	s.EnableTelemetry(opts)

	slog.Info("starting headless simulation",
		"seed", ro.Seed,
		"prey", simCfg.PreyCount,
		"predators", simCfg.PredatorCount,
		"boundary", simCfg.Boundary.String(),
		"end_time", simCfg.EndTime,
	)

	start := time.Now()
	for !s.Done() {
		if ctx.Err() != nil {
			slog.Warn("run interrupted", "tick", s.Tick())
			break
		}
		if ro.MaxTicks > 0 && s.Tick() >= ro.MaxTicks {
			slog.Info("max ticks reached", "tick", s.Tick())
			break
		}
		s.Step()
	}

	if err := s.Finish(); err != nil {
		return err
	}
	sum := s.Summary(ro.Seed)
	if runs != nil {
		// The run context may already be cancelled by an interrupt
		if err := runs.FinishRun(context.WithoutCancel(ctx), runID, sum); err != nil {
			return err
		}
	}

	slog.Info("run finished",
		"ticks", sum.Ticks,
		"sim_time", sum.SimTime,
		"prey_alive", sum.PreyAlive,
		"prop_dead", sum.PropDead,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}
