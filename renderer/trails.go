package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/camera"
)

// TrailRenderer draws the recent path of an agent as a fading polyline.
type TrailRenderer struct {
	Length int // states drawn per agent
	Alpha  uint8
}

// NewTrailRenderer creates a trail renderer.
func NewTrailRenderer(length int) *TrailRenderer {
	return &TrailRenderer{Length: length, Alpha: 140}
}

// Draw renders the tail of positions. Segments that cross a periodic seam
// are skipped instead of being drawn across the screen.
func (t *TrailRenderer) Draw(cam *camera.Camera, positions []r2.Vec, color rl.Color) {
	n := len(positions)
	if n < 2 {
		return
	}
	start := max(0, n-t.Length)
	half := float64(cam.Length) / 2

	for k := start + 1; k < n; k++ {
		a, b := positions[k-1], positions[k]
		if cam.Wrap && (abs(b.X-a.X) > half || abs(b.Y-a.Y) > half) {
			continue
		}
		ax, ay := cam.WorldToScreen(float32(a.X), float32(a.Y))
		bx, by := cam.WorldToScreen(float32(b.X), float32(b.Y))
		if cam.Wrap && (absf(bx-ax) > cam.ViewportW/2 || absf(by-ay) > cam.ViewportH/2) {
			continue
		}
		c := color
		c.A = uint8(int(t.Alpha) * (k - start) / (n - start))
		rl.DrawLineV(rl.Vector2{X: ax, Y: ay}, rl.Vector2{X: bx, Y: by}, c)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
