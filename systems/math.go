// Package systems contains the per-tick mechanics of the simulation: neighbor
// lookup, steering forces, integration, boundary handling and predation.
package systems

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidConfig is returned when simulation parameters cannot produce a valid world.
var ErrInvalidConfig = errors.New("invalid configuration")

// negligible is the magnitude below which forces and velocities collapse to zero.
const negligible = 1e-6

// coincident is the distance at or below which two agents are treated as the same point.
const coincident = 1e-12

// Perp returns v rotated a quarter turn counter-clockwise.
func Perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// ClampLength scales v down to maxLen if it is longer, and returns the zero
// vector if the result is negligible.
func ClampLength(v r2.Vec, maxLen float64) r2.Vec {
	n := r2.Norm(v)
	if n > maxLen {
		v = r2.Scale(maxLen/n, v)
		n = maxLen
	}
	if n < negligible {
		return r2.Vec{}
	}
	return v
}

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Wrap maps x into [0, length).
// Wrap(Wrap(x)) == Wrap(x) for every finite x.
func Wrap(x, length float64) float64 {
	r := math.Mod(x, length)
	if r < 0 {
		r += length
	}
	// -tiny + length rounds to length
	if r >= length {
		r = 0
	}
	return r
}

// MinImage returns the shortest signed separation d on a ring of circumference length.
func MinImage(d, length float64) float64 {
	return Wrap(d+length/2, length) - length/2
}

// Heading returns the angle of v in radians.
func Heading(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}
