// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Kind tags an agent's species.
type Kind uint8

const (
	KindPrey Kind = iota
	KindPredator
)

func (k Kind) String() string {
	switch k {
	case KindPrey:
		return "prey"
	case KindPredator:
		return "predator"
	default:
		return "unknown"
	}
}

// Species holds the species tag and its immutable behavioral parameters.
type Species struct {
	Kind   Kind
	Params SpeciesParams
}

// LifeState is the alive/dead state of an agent.
type LifeState uint8

const (
	Alive LifeState = iota
	Dead
)

// Status tracks whether an agent is alive. DeathTick and DeathPos are only
// meaningful once State is Dead.
type Status struct {
	State     LifeState
	DeathTick int
	DeathPos  r2.Vec
}

// Alive reports whether the agent is still alive.
func (s Status) Alive() bool {
	return s.State == Alive
}

// Kill marks the agent dead at the given history index and position.
// Killing an already dead agent has no effect.
func (s *Status) Kill(tick int, pos r2.Vec) bool {
	if s.State == Dead {
		return false
	}
	s.State = Dead
	s.DeathTick = tick
	s.DeathPos = pos
	return true
}

// Cooldown is the time remaining before a predator may kill again.
type Cooldown struct {
	Remaining float64
}

// Reset restores the cooldown to the species value. Prey carry zero.
func (c *Cooldown) Reset(p SpeciesParams) {
	c.Remaining = p.KillCooldown
}

// Decrease counts the cooldown down by dt, stopping at zero.
func (c *Cooldown) Decrease(dt float64) {
	c.Remaining -= dt
	if c.Remaining < 0 {
		c.Remaining = 0
	}
}

// Ready reports whether the cooldown has elapsed.
func (c *Cooldown) Ready() bool {
	return c.Remaining <= 0
}
