package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestWrapIdempotent(t *testing.T) {
	const L = 10.0
	values := []float64{0, 1e-17, -1e-17, 5, 9.999999, 10, -10, 10.5, -0.5, 35.25, -1e9, 1e9}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		values = append(values, (rng.Float64()-0.5)*100)
	}

	for _, v := range values {
		w := Wrap(v, L)
		if w < 0 || w >= L {
			t.Errorf("Wrap(%v) = %v, outside [0, %v)", v, w, L)
		}
		if ww := Wrap(w, L); ww != w {
			t.Errorf("Wrap not idempotent for %v: %v then %v", v, w, ww)
		}
	}
}

func TestMinImageDistance(t *testing.T) {
	const L = 10.0
	b := Periodic()
	bound := L * math.Sqrt2 / 2
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 2000; i++ {
		a := r2.Vec{X: rng.Float64() * L, Y: rng.Float64() * L}
		c := r2.Vec{X: rng.Float64() * L, Y: rng.Float64() * L}
		ab := b.Distance(a, c, L)
		ba := b.Distance(c, a, L)
		if math.Abs(ab-ba) > 1e-12 {
			t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
		}
		if ab > bound+1e-12 {
			t.Fatalf("distance %v exceeds %v", ab, bound)
		}
	}
}

func TestOffset(t *testing.T) {
	const L = 10.0
	a := r2.Vec{X: 0.1, Y: 5}
	c := r2.Vec{X: 9.9, Y: 5}

	tests := []struct {
		name string
		b    Boundary
		want r2.Vec
	}{
		{"periodic takes the short way", Periodic(), r2.Vec{X: -0.2}},
		{"hard is euclidean", Hard(), r2.Vec{X: 9.8}},
		{"soft is euclidean", Soft(2), r2.Vec{X: 9.8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.b.Offset(a, c, L)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Offset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSoftBias(t *testing.T) {
	const L = 10.0
	b := Soft(2)

	tests := []struct {
		name string
		pos  r2.Vec
		want r2.Vec
	}{
		{"center", r2.Vec{X: 5, Y: 5}, r2.Vec{}},
		{"lower edge", r2.Vec{X: 0, Y: 5}, r2.Vec{X: 2}},
		{"upper edge", r2.Vec{X: 5, Y: L}, r2.Vec{Y: -2}},
		{"half band", r2.Vec{X: 1, Y: 9}, r2.Vec{X: 1, Y: -1}},
		{"band edge", r2.Vec{X: 2, Y: 8}, r2.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Bias(tt.pos, L)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Bias(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}

	if got := Hard().Bias(r2.Vec{}, L); got != (r2.Vec{}) {
		t.Errorf("hard boundary bias = %v, want zero", got)
	}
	if got := Periodic().Bias(r2.Vec{}, L); got != (r2.Vec{}) {
		t.Errorf("periodic boundary bias = %v, want zero", got)
	}
}

func TestCorrect(t *testing.T) {
	const L = 10.0
	vel := r2.Vec{X: 1, Y: -1}

	tests := []struct {
		name    string
		b       Boundary
		pos     r2.Vec
		wantPos r2.Vec
		wantVel r2.Vec
	}{
		{"hard clamps past upper edge", Hard(), r2.Vec{X: L + 0.5, Y: 3}, r2.Vec{X: L, Y: 3}, r2.Vec{}},
		{"hard clamps below zero", Hard(), r2.Vec{X: 3, Y: -0.1}, r2.Vec{X: 3, Y: 0}, r2.Vec{}},
		{"hard leaves interior alone", Hard(), r2.Vec{X: 3, Y: 4}, r2.Vec{X: 3, Y: 4}, vel},
		{"soft also clamps", Soft(2), r2.Vec{X: -1, Y: 4}, r2.Vec{X: 0, Y: 4}, r2.Vec{}},
		{"periodic wraps and keeps velocity", Periodic(), r2.Vec{X: L + 0.5, Y: -0.5}, r2.Vec{X: 0.5, Y: L - 0.5}, vel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, v := tt.b.Correct(tt.pos, vel, L)
			if math.Abs(p.X-tt.wantPos.X) > 1e-12 || math.Abs(p.Y-tt.wantPos.Y) > 1e-12 {
				t.Errorf("pos = %v, want %v", p, tt.wantPos)
			}
			if v != tt.wantVel {
				t.Errorf("vel = %v, want %v", v, tt.wantVel)
			}
		})
	}
}

func TestSwapCycle(t *testing.T) {
	b := Soft(1.5)
	b = b.Swap()
	if b.Kind != BoundaryPeriodic {
		t.Fatalf("soft should swap to periodic, got %v", b)
	}
	b = b.Swap()
	if b.Kind != BoundaryHard {
		t.Fatalf("periodic should swap to hard, got %v", b)
	}
	b = b.Swap()
	if b.Kind != BoundarySoft || b.SoftRange != 1.5 {
		t.Fatalf("hard should swap back to soft(1.5), got %v", b)
	}

	if got := Hard().Swap(); got.SoftRange != DefaultSoftRange {
		t.Errorf("swap without remembered range = %v, want %v", got.SoftRange, DefaultSoftRange)
	}
}

func TestParseBoundary(t *testing.T) {
	tests := []struct {
		name    string
		soft    float64
		want    BoundaryKind
		wantErr bool
	}{
		{"periodic", 0, BoundaryPeriodic, false},
		{"Hard", 0, BoundaryHard, false},
		{" soft ", 2, BoundarySoft, false},
		{"soft", 0, 0, true},
		{"reflective", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBoundary(tt.name, tt.soft)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("err = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Kind != tt.want {
				t.Errorf("kind = %v, want %v", b.Kind, tt.want)
			}
		})
	}
}
