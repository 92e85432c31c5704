package renderer

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/sim"
)

func TestParticleRendererLifecycle(t *testing.T) {
	r := NewParticleRenderer(3)
	r.Spawn([]sim.Kill{
		{Pos: r2.Vec{X: 1, Y: 2}},
		{Pos: r2.Vec{X: 3, Y: 4}},
	})
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	r.Update()
	r.Update()
	if r.Len() != 2 {
		t.Errorf("after 2 updates Len() = %d, want 2", r.Len())
	}
	r.Update()
	if r.Len() != 0 {
		t.Errorf("after 3 updates Len() = %d, want 0", r.Len())
	}
}

func TestParticleRendererClear(t *testing.T) {
	r := NewParticleRenderer(0)
	r.Spawn([]sim.Kill{{}})
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", r.Len())
	}
}
