package game

import (
	"github.com/pthm-cable/flock/sim"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/ui"
)

// attachTelemetry feeds window statistics to the quick stats panel.
// The viewer writes no files.
func (g *Game) attachTelemetry() {
	g.hasStats = false
	opts := sim.TelemetryFrom(g.cfg, g.seed)
	opts.PositionsEvery = 0
	opts.StatsCallback = func(s telemetry.WindowStats) {
		g.lastStats = s
		g.hasStats = true
	}
	g.sim.EnableTelemetry(opts)
}

// quickStatsData converts the latest window into panel data.
func (g *Game) quickStatsData() ui.QuickStatsData {
	if !g.hasStats {
		return ui.QuickStatsData{ProportionDead: float32(g.sim.ProportionDead())}
	}
	return ui.QuickStatsData{
		KillsPerSec:    float32(g.lastStats.KillRate),
		ProportionDead: float32(g.lastStats.PropDead),
		MeanSpeed:      float32(g.lastStats.PreySpeedMean),
		Groups:         g.lastStats.Groups,
	}
}
