package game

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// logPerfStats logs step and draw timing for the current frame window.
func (g *Game) logPerfStats() {
	g.perf.Stats().LogStats()

	total := g.drawPerf.Total()
	attrs := []any{
		"tick", g.sim.Tick(),
		"speed", g.stepsPerFrame,
		"fps", rl.GetFPS(),
		"draw_total", total.Round(time.Microsecond).String(),
	}
	for _, name := range g.drawPerf.SortedNames() {
		attrs = append(attrs, "draw_"+name, g.drawPerf.Avg(name).Round(time.Microsecond).String())
	}
	slog.Info("draw perf", attrs...)
}
