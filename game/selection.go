package game

import (
	"math"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/sim"
	"github.com/pthm-cable/flock/ui"
)

// maxPickDistance is how far from an agent, in pixels, a click still selects it.
const maxPickDistance = 20.0

// findAgentAt returns the index of the agent drawn closest to the screen point.
// Ghost copies near a periodic seam count as well.
func (g *Game) findAgentAt(sx, sy float32) (int, bool) {
	return nearestAgent(g.views, func(a *sim.AgentView) float64 {
		wx, wy := float32(a.Position.X), float32(a.Position.Y)
		ax, ay := g.camera.WorldToScreen(wx, wy)
		best := math.Hypot(float64(ax-sx), float64(ay-sy))
		for _, p := range g.camera.GhostPositions(wx, wy) {
			best = min(best, math.Hypot(float64(p.X-sx), float64(p.Y-sy)))
		}
		return best
	})
}

// nearestAgent picks the agent with the smallest screen distance within
// maxPickDistance. Living agents win ties over dead ones.
func nearestAgent(views []sim.AgentView, dist func(a *sim.AgentView) float64) (int, bool) {
	found := -1
	closest := maxPickDistance
	for i := range views {
		a := &views[i]
		d := dist(a)
		if d > closest {
			continue
		}
		if found >= 0 && d == closest && !a.Alive() {
			continue
		}
		found = a.Index
		closest = d
	}
	return found, found >= 0
}

// selectedView returns the selected agent, if any.
func (g *Game) selectedView() (sim.AgentView, bool) {
	if g.selected < 0 || g.selected >= len(g.views) {
		return sim.AgentView{}, false
	}
	return g.views[g.selected], true
}

// inspectorData gathers what the inspector shows for agent a.
func (g *Game) inspectorData(a sim.AgentView) *ui.InspectorData {
	cfg := g.sim.Config()
	params := cfg.Prey
	if a.Kind == components.KindPredator {
		params = cfg.Predator
	}

	data := &ui.InspectorData{
		Agent:      a,
		Params:     params,
		HistoryLen: g.sim.HistoryLen(a.Index),
	}
	if !a.Alive() {
		data.DeathTime = g.sim.Clock().TimeAt(a.Status.DeathTick)
		return data
	}

	b := g.sim.Boundary()
	for i := range g.views {
		nb := &g.views[i]
		if nb.Index == a.Index || !nb.Alive() {
			continue
		}
		if b.Distance(a.Position, nb.Position, g.sim.Length()) < params.VisionRadius {
			data.Neighbors++
		}
	}
	return data
}
