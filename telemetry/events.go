// Package telemetry provides population health tracking and experiment output.
package telemetry

import "github.com/pthm-cable/flock/components"

// KillEvent records a single prey death.
type KillEvent struct {
	Tick      int     `csv:"tick"`
	Time      float64 `csv:"time"`
	Predator  int     `csv:"predator"`
	Prey      int     `csv:"prey"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	PreySpeed float64 `csv:"prey_speed"`
}

// PositionRecord is one agent's state at one tick, as written to positions.csv.
type PositionRecord struct {
	Tick  int     `csv:"tick"`
	Time  float64 `csv:"time"`
	Agent int     `csv:"agent"`
	Kind  string  `csv:"kind"`
	Alive bool    `csv:"alive"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	VX    float64 `csv:"vx"`
	VY    float64 `csv:"vy"`
}

// NewPositionRecord builds a positions.csv row.
func NewPositionRecord(tick int, t float64, agent int, kind components.Kind, alive bool, x, y, vx, vy float64) PositionRecord {
	return PositionRecord{
		Tick:  tick,
		Time:  t,
		Agent: agent,
		Kind:  kind.String(),
		Alive: alive,
		X:     x,
		Y:     y,
		VX:    vx,
		VY:    vy,
	}
}
