// Package renderer draws the flock viewer's world layer through the camera.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/sim"
)

// AgentStyle holds colors and sizes for agents.
type AgentStyle struct {
	Prey     rl.Color
	Predator rl.Color
	Dead     rl.Color
	Outline  rl.Color
	Radius   float32 // world units
	MinPx    float32 // smallest on-screen radius
}

// DefaultAgentStyle returns the viewer's agent colors.
func DefaultAgentStyle() AgentStyle {
	return AgentStyle{
		Prey:     rl.Color{R: 120, G: 200, B: 255, A: 255},
		Predator: rl.Color{R: 240, G: 80, B: 70, A: 255},
		Dead:     rl.Color{R: 90, G: 90, B: 90, A: 160},
		Outline:  rl.Color{R: 255, G: 255, B: 255, A: 90},
		Radius:   0.06,
		MinPx:    3,
	}
}

// AgentRenderer draws agents as oriented triangles.
type AgentRenderer struct {
	Style    AgentStyle
	ShowDead bool
}

// NewAgentRenderer creates an agent renderer with the default style.
func NewAgentRenderer() *AgentRenderer {
	return &AgentRenderer{Style: DefaultAgentStyle()}
}

// Draw renders every agent. Agents near the seam of a wrapping domain are
// also drawn at their ghost positions.
func (r *AgentRenderer) Draw(cam *camera.Camera, agents []sim.AgentView) {
	radius := max(r.Style.Radius*cam.Scale(), r.Style.MinPx)

	for i := range agents {
		a := &agents[i]
		wx, wy := float32(a.Position.X), float32(a.Position.Y)

		if !a.Alive() {
			if !r.ShowDead {
				continue
			}
			r.drawDead(cam, wx, wy, radius)
			continue
		}

		color := r.Style.Prey
		size := radius
		if a.Kind == components.KindPredator {
			color = r.Style.Predator
			size *= 1.5
		}
		heading := float32(a.Heading())

		if cam.IsVisible(wx, wy, r.Style.Radius*2) {
			sx, sy := cam.WorldToScreen(wx, wy)
			drawOrientedTriangle(sx, sy, heading, size, color, r.Style.Outline)
		}
		for _, g := range cam.GhostPositions(wx, wy) {
			drawOrientedTriangle(g.X, g.Y, heading, size, color, r.Style.Outline)
		}
	}
}

func (r *AgentRenderer) drawDead(cam *camera.Camera, wx, wy, radius float32) {
	if !cam.IsVisible(wx, wy, r.Style.Radius) {
		return
	}
	sx, sy := cam.WorldToScreen(wx, wy)
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius*0.5, r.Style.Dead)
}

// DrawSelection rings the selected agent and optionally its vision circle.
func (r *AgentRenderer) DrawSelection(cam *camera.Camera, a sim.AgentView, vision float64, showVision bool) {
	wx, wy := float32(a.Position.X), float32(a.Position.Y)
	sx, sy := cam.WorldToScreen(wx, wy)
	s := cam.Scale()

	ring := max(r.Style.Radius*s*3, r.Style.MinPx*3)
	rl.DrawCircleLines(int32(sx), int32(sy), ring, rl.Yellow)

	if showVision && a.Alive() {
		rl.DrawCircleLines(int32(sx), int32(sy), float32(vision)*s, rl.Color{R: 255, G: 255, B: 0, A: 90})
		for _, g := range cam.GhostPositions(wx, wy) {
			rl.DrawCircleLines(int32(g.X), int32(g.Y), float32(vision)*s, rl.Color{R: 255, G: 255, B: 0, A: 50})
		}
	}
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
func drawOrientedTriangle(x, y, heading, radius float32, color, outline rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	front := rl.Vector2{X: x + cos*radius*1.5, Y: y + sin*radius*1.5}

	backAngle := float64(heading) + math.Pi*0.8
	backLeft := rl.Vector2{X: x + float32(math.Cos(backAngle))*radius, Y: y + float32(math.Sin(backAngle))*radius}

	backAngle = float64(heading) - math.Pi*0.8
	backRight := rl.Vector2{X: x + float32(math.Cos(backAngle))*radius, Y: y + float32(math.Sin(backAngle))*radius}

	// DrawTriangle requires counter-clockwise winding
	rl.DrawTriangle(front, backRight, backLeft, color)
	rl.DrawTriangleLines(front, backLeft, backRight, outline)
}
