package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/sim"
)

// KillFlash is a short-lived marker at a kill site.
type KillFlash struct {
	X, Y    float32 // world position
	Life    int     // frames remaining
	MaxLife int
}

// ParticleRenderer renders fading kill flashes.
type ParticleRenderer struct {
	flashes []KillFlash
	life    int
}

// NewParticleRenderer creates a particle renderer whose flashes last life frames.
func NewParticleRenderer(life int) *ParticleRenderer {
	return &ParticleRenderer{life: max(1, life)}
}

// Spawn adds one flash per kill.
func (r *ParticleRenderer) Spawn(kills []sim.Kill) {
	for _, k := range kills {
		r.flashes = append(r.flashes, KillFlash{
			X:       float32(k.Pos.X),
			Y:       float32(k.Pos.Y),
			Life:    r.life,
			MaxLife: r.life,
		})
	}
}

// Update ages flashes and drops expired ones.
func (r *ParticleRenderer) Update() {
	live := r.flashes[:0]
	for _, f := range r.flashes {
		f.Life--
		if f.Life > 0 {
			live = append(live, f)
		}
	}
	r.flashes = live
}

// Clear removes all flashes.
func (r *ParticleRenderer) Clear() {
	r.flashes = r.flashes[:0]
}

// Len returns the number of live flashes.
func (r *ParticleRenderer) Len() int {
	return len(r.flashes)
}

// Draw renders all flashes as expanding rings.
func (r *ParticleRenderer) Draw(cam *camera.Camera) {
	s := cam.Scale()
	for i := range r.flashes {
		f := &r.flashes[i]

		// Calculate life ratio for fade
		lifeRatio := float32(f.Life) / float32(f.MaxLife)
		color := rl.Color{R: 255, G: 150, B: 50, A: uint8(lifeRatio * 220)}

		size := max((1.5-lifeRatio)*0.15*s, 2)
		if !cam.IsVisible(f.X, f.Y, 0.2) {
			continue
		}
		sx, sy := cam.WorldToScreen(f.X, f.Y)
		rl.DrawCircleLines(int32(sx), int32(sy), size, color)
	}
}
