package telemetry

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/systems"
)

func blob(rng *rand.Rand, center r2.Vec, n int, spread float64) []r2.Vec {
	out := make([]r2.Vec, n)
	for i := range out {
		out[i] = r2.Vec{
			X: center.X + (rng.Float64()-0.5)*spread,
			Y: center.Y + (rng.Float64()-0.5)*spread,
		}
	}
	return out
}

func TestFindGroups(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	var pos []r2.Vec
	pos = append(pos, blob(rng, r2.Vec{X: 2, Y: 2}, 20, 0.4)...)
	pos = append(pos, blob(rng, r2.Vec{X: 7, Y: 7}, 12, 0.4)...)
	pos = append(pos, r2.Vec{X: 2, Y: 8}, r2.Vec{X: 8, Y: 2}) // stragglers

	g := FindGroups(pos, GroupParams{Eps: 0.5, MinPoints: 5, Boundary: systems.Hard(), Length: 10})

	if g.Groups != 2 {
		t.Errorf("Groups = %d, want 2", g.Groups)
	}
	if g.Largest != 20 {
		t.Errorf("Largest = %d, want 20", g.Largest)
	}
	if g.Stragglers != 2 {
		t.Errorf("Stragglers = %d, want 2", g.Stragglers)
	}
	if len(g.Labels) != len(pos) {
		t.Errorf("len(Labels) = %d, want %d", len(g.Labels), len(pos))
	}
}

func TestFindGroupsAcrossPeriodicEdge(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var pos []r2.Vec
	pos = append(pos, blob(rng, r2.Vec{X: 0.1, Y: 5}, 6, 0.1)...)
	pos = append(pos, blob(rng, r2.Vec{X: 9.9, Y: 5}, 6, 0.1)...)
	for i := range pos {
		pos[i].X = systems.Wrap(pos[i].X, 10)
	}

	periodic := FindGroups(pos, GroupParams{Eps: 0.5, MinPoints: 5, Boundary: systems.Periodic(), Length: 10})
	if periodic.Groups != 1 || periodic.Largest != 12 {
		t.Errorf("periodic: %d groups, largest %d; want one group of 12", periodic.Groups, periodic.Largest)
	}

	hard := FindGroups(pos, GroupParams{Eps: 0.5, MinPoints: 5, Boundary: systems.Hard(), Length: 10})
	if hard.Groups != 2 {
		t.Errorf("hard: %d groups, want 2", hard.Groups)
	}
}

func TestFindGroupsDegenerate(t *testing.T) {
	if g := FindGroups(nil, GroupParams{Eps: 0.5, MinPoints: 5, Length: 10}); g.Groups != 0 {
		t.Errorf("empty input gave %d groups", g.Groups)
	}
	pos := []r2.Vec{{X: 1, Y: 1}, {X: 1.1, Y: 1}}
	if g := FindGroups(pos, GroupParams{Eps: 0, MinPoints: 5, Length: 10}); g.Stragglers != 2 {
		t.Errorf("zero eps should mark everything as stragglers, got %+v", g)
	}
}
