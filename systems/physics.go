package systems

import "gonum.org/v1/gonum/spatial/r2"

// Integrate advances one explicit Euler step. The new velocity is clamped to
// maxVel and collapses to zero when negligible; the position moves by the new
// velocity.
func Integrate(pos, vel, force r2.Vec, dt, maxVel float64) (r2.Vec, r2.Vec) {
	v := ClampLength(r2.Add(vel, r2.Scale(dt, force)), maxVel)
	p := r2.Add(pos, r2.Scale(dt, v))
	return p, v
}
