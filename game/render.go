package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/ui"
)

// Draw renders the current frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	start := time.Now()
	g.domain.DrawBackground(g.camera)
	g.drawWorldOverlays()
	g.drawPerf.Record("world", time.Since(start))

	start = time.Now()
	g.agents.Draw(g.camera, g.views)
	g.flashes.Draw(g.camera)
	g.domain.DrawOutline(g.camera)
	g.drawSelection()
	g.drawPerf.Record("agents", time.Since(start))

	start = time.Now()
	g.drawUI()
	g.drawPerf.Record("ui", time.Since(start))

	rl.EndDrawing()
}

// drawUI renders the HUD and panels in screen space.
func (g *Game) drawUI() {
	clock := g.sim.Clock()
	preyAlive, predAlive := g.sim.AliveCounts()

	g.hud.Draw(ui.HUDData{
		Title:        g.opts.Title,
		Tick:         clock.CurrentIndex(),
		Time:         clock.CurrentTime(),
		EndTime:      clock.EndTime(),
		PreyAlive:    preyAlive,
		PreyTotal:    g.sim.PreyCount(),
		PredAlive:    predAlive,
		Boundary:     g.sim.Boundary().String(),
		Polarization: g.polarization(),
		Speed:        g.stepsPerFrame,
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
		Done:         g.sim.Done(),
	})

	y := int32(130)
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		stats := g.perf.Stats()
		g.perfPanel.SetPosition(10, y)
		g.perfPanel.Draw(stats, g.drawPerf.Total())
		y += 46 + 14*int32(len(stats.Phases()))
	}
	if g.controls.IsVisible() {
		g.controls.SetPosition(10, y)
		g.controls.Draw(g.overlays)
	}

	g.quickStats.Draw(g.quickStatsData())

	if changed, reset := g.params.Draw(g.cfg); reset {
		g.resetParams()
	} else if changed {
		g.needsRebuild = true
	}

	if a, ok := g.selectedView(); ok {
		x := int32(g.screenWidth) - g.inspector.Width() - 10
		if g.params.IsVisible() {
			x -= g.params.Width() + 10
		}
		g.inspector.Draw(x, 10, g.inspectorData(a))
	}

	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsLegend)
}

// polarization is the order parameter of the living prey.
func (g *Game) polarization() float64 {
	vels := make([]r2.Vec, 0, len(g.views))
	for i := range g.views {
		if a := &g.views[i]; a.Kind == components.KindPrey && a.Alive() {
			vels = append(vels, a.Velocity)
		}
	}
	return telemetry.Polarization(vels)
}
