package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
)

// DefaultStrikeDistance is the kill range in domain units.
const DefaultStrikeDistance = 0.05

// PredationRule decides which prey a predator kills.
type PredationRule struct {
	StrikeDistance  float64
	EnforceCooldown bool // when false, cooldowns are tracked but never block a kill
}

// CanStrike reports whether a predator with the given cooldown may kill this tick.
func (r PredationRule) CanStrike(cd *components.Cooldown) bool {
	return !r.EnforceCooldown || cd == nil || cd.Ready()
}

// FindVictim returns the position in candidates of the first alive prey within
// strike distance of the predator at pos. alive reports an agent's status by index.
func (r PredationRule) FindVictim(pos r2.Vec, candidates []Body, alive func(idx int) bool, b Boundary, length float64) (int, bool) {
	for k, c := range candidates {
		if c.Kind != components.KindPrey || !alive(c.Index) {
			continue
		}
		if b.Distance(pos, c.Pos, length) < r.StrikeDistance {
			return k, true
		}
	}
	return -1, false
}
