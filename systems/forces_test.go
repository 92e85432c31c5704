package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

func vecNear(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestPerp(t *testing.T) {
	if got := Perp(r2.Vec{X: 1, Y: 0}); got != (r2.Vec{X: 0, Y: 1}) {
		t.Errorf("Perp(x) = %v", got)
	}
	if got := Perp(r2.Vec{X: 2, Y: 3}); got != (r2.Vec{X: -3, Y: 2}) {
		t.Errorf("Perp(2,3) = %v", got)
	}
}

func TestClampLength(t *testing.T) {
	tests := []struct {
		name string
		in   r2.Vec
		max  float64
		want r2.Vec
	}{
		{"under limit", r2.Vec{X: 0.3, Y: 0.4}, 1, r2.Vec{X: 0.3, Y: 0.4}},
		{"over limit", r2.Vec{X: 3, Y: 4}, 1, r2.Vec{X: 0.6, Y: 0.8}},
		{"negligible collapses", r2.Vec{X: 1e-7}, 1, r2.Vec{}},
		{"zero limit", r2.Vec{X: 1}, 0, r2.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampLength(tt.in, tt.max); !vecNear(got, tt.want, 1e-12) {
				t.Errorf("ClampLength = %v, want %v", got, tt.want)
			}
		})
	}
}

func preyParams() components.SpeciesParams {
	return components.SpeciesParams{
		VisionRadius:    1,
		Alignment:       1,
		Attraction:      1,
		Repulsion:       1,
		CrossAlignment:  1,
		CrossRepulsion:  1,
		MaxAcceleration: 100,
		MaxVelocity:     1,
		Boundary:        1,
	}
}

func TestPreyTerms(t *testing.T) {
	m := &ForceModel{Boundary: Periodic(), Length: 10}
	self := Body{Index: 0, Kind: components.KindPrey, Pos: r2.Vec{X: 5, Y: 5}, Vel: r2.Vec{X: 1}}
	candidates := []Body{
		self,
		{Index: 1, Kind: components.KindPrey, Pos: r2.Vec{X: 5.5, Y: 5}, Vel: r2.Vec{Y: 1}},
		{Index: 2, Kind: components.KindPrey, Pos: r2.Vec{X: 5, Y: 5}},         // coincident
		{Index: 3, Kind: components.KindPrey, Pos: r2.Vec{X: 6.5, Y: 5}},       // out of sight
		{Index: 4, Kind: components.KindPredator, Pos: r2.Vec{X: 5, Y: 5.5}, Vel: r2.Vec{X: 2}},
	}

	terms := m.PreyTerms(self, preyParams(), candidates)

	if terms.Prey != 1 || terms.Predators != 1 {
		t.Fatalf("counts = %d prey, %d predators; want 1, 1", terms.Prey, terms.Predators)
	}
	checks := []struct {
		name      string
		got, want r2.Vec
	}{
		{"alignment", terms.Alignment, r2.Vec{X: -1, Y: 1}},
		{"repulsion", terms.Repulsion, r2.Vec{X: 2}},
		{"attraction", terms.Attraction, r2.Vec{X: 0.5}},
		{"pred align", terms.PredAlign, r2.Vec{X: 2}},
		{"pred repulsion", terms.PredRepulsion, r2.Vec{Y: 2}},
		{"pred centering", terms.PredCentering, r2.Vec{Y: -0.5}},
	}
	for _, c := range checks {
		if !vecNear(c.got, c.want, 1e-12) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestPreyTermsAverages(t *testing.T) {
	m := &ForceModel{Boundary: Periodic(), Length: 10}
	self := Body{Index: 0, Kind: components.KindPrey, Pos: r2.Vec{X: 5, Y: 5}}
	candidates := []Body{
		{Index: 1, Kind: components.KindPrey, Pos: r2.Vec{X: 5.5, Y: 5}},
		{Index: 2, Kind: components.KindPrey, Pos: r2.Vec{X: 4.5, Y: 5}},
		{Index: 3, Kind: components.KindPrey, Pos: r2.Vec{X: 5, Y: 5.5}},
	}
	terms := m.PreyTerms(self, preyParams(), candidates)
	if !vecNear(terms.Attraction, r2.Vec{Y: 0.5 / 3}, 1e-12) {
		t.Errorf("attraction = %v, want mean offset", terms.Attraction)
	}
}

func TestMinimumImageNeighbors(t *testing.T) {
	self := Body{Index: 0, Kind: components.KindPrey, Pos: r2.Vec{X: 0.1, Y: 5}}
	other := Body{Index: 1, Kind: components.KindPrey, Pos: r2.Vec{X: 9.9, Y: 5}}

	periodic := &ForceModel{Boundary: Periodic(), Length: 10}
	terms := periodic.PreyTerms(self, preyParams(), []Body{other})
	if terms.Prey != 1 || !vecNear(terms.Attraction, r2.Vec{X: -0.2}, 1e-9) {
		t.Errorf("periodic: prey=%d attraction=%v", terms.Prey, terms.Attraction)
	}

	hard := &ForceModel{Boundary: Hard(), Length: 10}
	if terms := hard.PreyTerms(self, preyParams(), []Body{other}); terms.Prey != 0 {
		t.Errorf("hard: neighbor across the edge should be out of sight")
	}
}

func TestEvasionHeading(t *testing.T) {
	tests := []struct {
		name      string
		predAlign r2.Vec
		centering r2.Vec
		want      r2.Vec
	}{
		// Predator moving up, sitting to the right: flee left.
		{"flees away from centroid", r2.Vec{Y: 1}, r2.Vec{X: -0.5}, r2.Vec{X: -1}},
		{"keeps perpendicular already pointing away", r2.Vec{Y: 1}, r2.Vec{X: 0.5}, r2.Vec{X: 1}},
		{"zero dot flips", r2.Vec{X: 1}, r2.Vec{X: -1}, r2.Vec{Y: 1}},
		{"no predators", r2.Vec{}, r2.Vec{}, r2.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvasionHeading(tt.predAlign, tt.centering); !vecNear(got, tt.want, 1e-12) {
				t.Errorf("EvasionHeading = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredatorTerms(t *testing.T) {
	m := &ForceModel{Boundary: Periodic(), Length: 10}
	self := Body{Index: 0, Kind: components.KindPredator, Pos: r2.Vec{X: 5, Y: 5}, Vel: r2.Vec{X: 1}}
	candidates := []Body{
		{Index: 1, Kind: components.KindPrey, Pos: r2.Vec{X: 5.5, Y: 5}},
		{Index: 2, Kind: components.KindPredator, Pos: r2.Vec{X: 5, Y: 6}, Vel: r2.Vec{X: 1, Y: 1}},
		{Index: 3, Kind: components.KindPrey, Pos: r2.Vec{X: 8, Y: 5}}, // out of sight
	}
	p := components.SpeciesParams{VisionRadius: 2, MaxAcceleration: 100}

	terms := m.PredatorTerms(self, p, candidates)
	if terms.Prey != 1 || terms.Predators != 1 {
		t.Fatalf("counts = %d prey, %d predators", terms.Prey, terms.Predators)
	}
	if !vecNear(terms.PreyAttraction, r2.Vec{X: 4}, 1e-12) {
		t.Errorf("prey attraction = %v, want inverse cube (4,0)", terms.PreyAttraction)
	}
	if !vecNear(terms.PredAlign, r2.Vec{Y: 1}, 1e-12) {
		t.Errorf("pred align = %v, want relative velocity (0,1)", terms.PredAlign)
	}
	if !vecNear(terms.PredRepulsion, r2.Vec{Y: 1}, 1e-12) {
		t.Errorf("pred repulsion = %v", terms.PredRepulsion)
	}
}

func TestForceCombination(t *testing.T) {
	m := &ForceModel{Boundary: Periodic(), Length: 10}
	self := Body{Index: 0, Kind: components.KindPredator, Pos: r2.Vec{X: 5, Y: 5}}
	prey := Body{Index: 1, Kind: components.KindPrey, Pos: r2.Vec{X: 5.5, Y: 5}}
	p := components.SpeciesParams{VisionRadius: 2, CrossAttraction: 0.5, MaxAcceleration: 100}

	got := m.Force(self, p, []Body{prey}, nil)
	if !vecNear(got, r2.Vec{X: 2}, 1e-12) {
		t.Errorf("Force = %v, want (2,0)", got)
	}
}

func TestForceClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	m := &ForceModel{Boundary: Soft(2), Length: 10, NoiseSigma: 0.05}
	p := preyParams()
	p.Alignment, p.Repulsion, p.CrossRepulsion = 50, 80, 120
	p.MaxAcceleration = 1.5

	for trial := 0; trial < 500; trial++ {
		bodies := make([]Body, 20)
		for k := range bodies {
			kind := components.KindPrey
			if k%7 == 0 {
				kind = components.KindPredator
			}
			bodies[k] = Body{
				Index: k,
				Kind:  kind,
				Pos:   r2.Vec{X: rng.Float64() * 10, Y: rng.Float64() * 10},
				Vel:   r2.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64()},
			}
		}
		self := bodies[1]
		f := m.Force(self, p, bodies, rng)
		if n := r2.Norm(f); n > p.MaxAcceleration+1e-9 {
			t.Fatalf("trial %d: |F| = %v exceeds %v", trial, n, p.MaxAcceleration)
		}
	}
}

func TestSoftBiasScaling(t *testing.T) {
	m := &ForceModel{Boundary: Soft(2), Length: 10}
	p := preyParams()
	self := Body{Kind: components.KindPrey, Pos: r2.Vec{X: 0, Y: 5}}

	if got := m.Force(self, p, nil, nil); !vecNear(got, r2.Vec{X: 2}, 1e-12) {
		t.Errorf("Force at wall = %v, want (2,0)", got)
	}

	// An existing force scales the bias so the push off the wall dominates it.
	pushing := Body{Index: 1, Kind: components.KindPrey, Pos: r2.Vec{X: 0.5, Y: 5}}
	p.Attraction, p.Repulsion = 0, 0
	p.Alignment = 1
	pushing.Vel = r2.Vec{X: -3}
	got := m.Force(self, p, []Body{pushing}, nil)
	// alignment (-3,0), bias (2,0) scaled by 1+3
	if !vecNear(got, r2.Vec{X: 5}, 1e-12) {
		t.Errorf("Force = %v, want (5,0)", got)
	}
}

func TestNoNeighborsNoNoise(t *testing.T) {
	m := &ForceModel{Boundary: Periodic(), Length: 10}
	self := Body{Kind: components.KindPrey, Pos: r2.Vec{X: 5, Y: 5}, Vel: r2.Vec{X: 1}}
	if got := m.Force(self, preyParams(), nil, nil); got != (r2.Vec{}) {
		t.Errorf("Force = %v, want zero", got)
	}
}

func TestIntegrate(t *testing.T) {
	tests := []struct {
		name            string
		pos, vel, force r2.Vec
		maxVel          float64
		wantPos         r2.Vec
		wantVel         r2.Vec
	}{
		{"free flight", r2.Vec{}, r2.Vec{X: 0.5}, r2.Vec{}, 1, r2.Vec{X: 0.05}, r2.Vec{X: 0.5}},
		{"accelerates", r2.Vec{}, r2.Vec{X: 0.5}, r2.Vec{X: 1}, 1, r2.Vec{X: 0.06}, r2.Vec{X: 0.6}},
		{"velocity capped", r2.Vec{}, r2.Vec{X: 0.95}, r2.Vec{X: 10}, 1, r2.Vec{X: 0.1}, r2.Vec{X: 1}},
		{"tiny velocity stops", r2.Vec{X: 1}, r2.Vec{X: 1e-8}, r2.Vec{}, 1, r2.Vec{X: 1}, r2.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, v := Integrate(tt.pos, tt.vel, tt.force, 0.1, tt.maxVel)
			if !vecNear(p, tt.wantPos, 1e-12) || !vecNear(v, tt.wantVel, 1e-12) {
				t.Errorf("Integrate = %v %v, want %v %v", p, v, tt.wantPos, tt.wantVel)
			}
		})
	}
}
