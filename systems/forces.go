package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// Body is the tick-N state of one agent as seen by the force model.
type Body struct {
	Index int
	Kind  components.Kind
	Pos   r2.Vec
	Vel   r2.Vec
}

// ForceModel computes steering forces from a neighborhood.
type ForceModel struct {
	Boundary   Boundary
	Length     float64
	NoiseSigma float64 // per-axis standard deviation, 0 disables noise
}

// PreyTerms are the averaged neighbor sums acting on a prey agent.
// Each sum is divided by its own neighbor count, or left zero.
type PreyTerms struct {
	Alignment     r2.Vec // mean relative velocity of prey
	Repulsion     r2.Vec // mean Δ/|Δ|² to prey
	Attraction    r2.Vec // mean Δ to prey
	PredAlign     r2.Vec // mean absolute velocity of predators
	PredRepulsion r2.Vec // mean Δ/|Δ|² to predators
	PredCentering r2.Vec // negated mean Δ to predators
	Prey          int
	Predators     int
}

// PredatorTerms are the averaged neighbor sums acting on a predator.
type PredatorTerms struct {
	PreyAttraction r2.Vec // mean Δ/|Δ|³ to prey
	PredAlign      r2.Vec // mean relative velocity of predators
	PredRepulsion  r2.Vec // mean Δ/|Δ|² to predators
	Prey           int
	Predators      int
}

// Force returns the clamped steering force on self given its candidate
// neighbors. Candidates farther than the vision radius, coincident with self
// or equal to self are ignored.
func (m *ForceModel) Force(self Body, p components.SpeciesParams, candidates []Body, rng *rand.Rand) r2.Vec {
	var f r2.Vec
	switch self.Kind {
	case components.KindPrey:
		f = combinePrey(m.PreyTerms(self, p, candidates), p)
	case components.KindPredator:
		f = combinePredator(m.PredatorTerms(self, p, candidates), p)
	}
	return m.finish(f, self.Pos, p, rng)
}

// visible returns the offset to nb and whether nb contributes to self's sums.
func (m *ForceModel) visible(self, nb Body, vision float64) (r2.Vec, float64, bool) {
	if nb.Index == self.Index {
		return r2.Vec{}, 0, false
	}
	d := m.Boundary.Offset(self.Pos, nb.Pos, m.Length)
	dist := r2.Norm(d)
	if dist <= coincident || dist >= vision {
		return r2.Vec{}, 0, false
	}
	return d, dist, true
}

// PreyTerms accumulates the neighbor sums for a prey agent.
func (m *ForceModel) PreyTerms(self Body, p components.SpeciesParams, candidates []Body) PreyTerms {
	var t PreyTerms
	var toPred r2.Vec
	for _, nb := range candidates {
		d, dist, ok := m.visible(self, nb, p.VisionRadius)
		if !ok {
			continue
		}
		inv2 := r2.Scale(1/(dist*dist), d)
		switch nb.Kind {
		case components.KindPrey:
			t.Alignment = r2.Add(t.Alignment, r2.Sub(nb.Vel, self.Vel))
			t.Repulsion = r2.Add(t.Repulsion, inv2)
			t.Attraction = r2.Add(t.Attraction, d)
			t.Prey++
		case components.KindPredator:
			t.PredAlign = r2.Add(t.PredAlign, nb.Vel)
			t.PredRepulsion = r2.Add(t.PredRepulsion, inv2)
			toPred = r2.Add(toPred, d)
			t.Predators++
		}
	}
	if t.Prey > 0 {
		k := 1 / float64(t.Prey)
		t.Alignment = r2.Scale(k, t.Alignment)
		t.Repulsion = r2.Scale(k, t.Repulsion)
		t.Attraction = r2.Scale(k, t.Attraction)
	}
	if t.Predators > 0 {
		k := 1 / float64(t.Predators)
		t.PredAlign = r2.Scale(k, t.PredAlign)
		t.PredRepulsion = r2.Scale(k, t.PredRepulsion)
		t.PredCentering = r2.Scale(-k, toPred)
	}
	return t
}

// EvasionHeading returns the perpendicular of -predAlign that points along
// centering, the direction away from the predators' centroid. A zero dot
// product flips the perpendicular.
func EvasionHeading(predAlign, centering r2.Vec) r2.Vec {
	perp := Perp(r2.Scale(-1, predAlign))
	if r2.Dot(perp, centering) <= 0 {
		perp = r2.Scale(-1, perp)
	}
	return perp
}

func combinePrey(t PreyTerms, p components.SpeciesParams) r2.Vec {
	f := r2.Scale(p.Alignment, t.Alignment)
	f = r2.Sub(f, r2.Scale(p.CrossRepulsion, t.PredRepulsion))
	f = r2.Sub(f, r2.Scale(p.Repulsion, t.Repulsion))
	f = r2.Add(f, r2.Scale(p.Attraction, t.Attraction))
	f = r2.Add(f, r2.Scale(p.CrossAlignment, EvasionHeading(t.PredAlign, t.PredCentering)))
	return f
}

// PredatorTerms accumulates the neighbor sums for a predator.
func (m *ForceModel) PredatorTerms(self Body, p components.SpeciesParams, candidates []Body) PredatorTerms {
	var t PredatorTerms
	for _, nb := range candidates {
		d, dist, ok := m.visible(self, nb, p.VisionRadius)
		if !ok {
			continue
		}
		switch nb.Kind {
		case components.KindPrey:
			t.PreyAttraction = r2.Add(t.PreyAttraction, r2.Scale(1/(dist*dist*dist), d))
			t.Prey++
		case components.KindPredator:
			t.PredAlign = r2.Add(t.PredAlign, r2.Sub(nb.Vel, self.Vel))
			t.PredRepulsion = r2.Add(t.PredRepulsion, r2.Scale(1/(dist*dist), d))
			t.Predators++
		}
	}
	if t.Prey > 0 {
		t.PreyAttraction = r2.Scale(1/float64(t.Prey), t.PreyAttraction)
	}
	if t.Predators > 0 {
		k := 1 / float64(t.Predators)
		t.PredAlign = r2.Scale(k, t.PredAlign)
		t.PredRepulsion = r2.Scale(k, t.PredRepulsion)
	}
	return t
}

func combinePredator(t PredatorTerms, p components.SpeciesParams) r2.Vec {
	f := r2.Scale(p.CrossAttraction, t.PreyAttraction)
	f = r2.Add(f, r2.Scale(p.Alignment, t.PredAlign))
	f = r2.Sub(f, r2.Scale(p.Repulsion, t.PredRepulsion))
	return f
}

// finish adds boundary bias and noise, then clamps to the species' maximum
// acceleration. Inside the soft band the bias is scaled by the force built so
// far so it can dominate.
func (m *ForceModel) finish(f, pos r2.Vec, p components.SpeciesParams, rng *rand.Rand) r2.Vec {
	if bias := m.Boundary.Bias(pos, m.Length); bias != (r2.Vec{}) {
		f = r2.Add(f, r2.Scale(p.Boundary+r2.Norm(f), bias))
	}
	if m.NoiseSigma > 0 {
		f.X += rng.NormFloat64() * m.NoiseSigma
		f.Y += rng.NormFloat64() * m.NoiseSigma
	}
	return ClampLength(f, p.MaxAcceleration)
}
