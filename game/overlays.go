package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/ui"
)

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	g.overlays.HandleKeys(rl.IsKeyPressed)
	g.params.SetVisible(g.overlays.IsEnabled(ui.OverlayParams))
	g.agents.ShowDead = g.overlays.IsEnabled(ui.OverlayDead)
}

// drawWorldOverlays renders enabled overlays that live under the agents.
func (g *Game) drawWorldOverlays() {
	numCells, cellSize := g.sim.GridShape()
	for _, id := range g.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlayGrid:
			g.domain.DrawGrid(g.camera, numCells, cellSize)
		case ui.OverlayCellCounts:
			g.domain.DrawGrid(g.camera, numCells, cellSize)
			g.domain.DrawCellCounts(g.camera, numCells, cellSize, g.sim.CellCount)
		case ui.OverlaySoftBand:
			g.domain.DrawSoftBand(g.camera, g.sim.Boundary())
		case ui.OverlayTrails:
			g.drawTrails()
		}
	}
}

// drawTrails renders the recent path of every living agent.
func (g *Game) drawTrails() {
	theme := ui.DefaultTheme()
	for i := range g.views {
		a := &g.views[i]
		if !a.Alive() {
			continue
		}
		color := theme.PreyColor
		if a.Kind == components.KindPredator {
			color = theme.PredatorColor
		}
		g.tail = g.sim.Tail(a.Index, trailLength, g.tail[:0])
		g.trails.Draw(g.camera, g.tail, color)
	}
}

// drawSelection highlights the selected agent and its vision circle.
func (g *Game) drawSelection() {
	a, ok := g.selectedView()
	if !ok {
		return
	}
	cfg := g.sim.Config()
	vision := cfg.Prey.VisionRadius
	if a.Kind == components.KindPredator {
		vision = cfg.Predator.VisionRadius
	}
	g.agents.DrawSelection(g.camera, a, vision, g.overlays.IsEnabled(ui.OverlayVision))
}
