package telemetry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/systems"
)

// Sample is the population state handed to the collector at a flush.
type Sample struct {
	PreyTotal      int // prey at construction
	PreyAlive      int
	PredAlive      int
	PreyPositions  []r2.Vec // living prey only
	PreyVelocities []r2.Vec
	PredVelocities []r2.Vec
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int
	dt                  float64
	groups              GroupParams

	// Current window tracking
	windowStartTick int

	// Event counters for current window
	kills int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64, groups GroupParams) *Collector {
	ticksPerWindow := 1
	if dt > 0 {
		ticksPerWindow = max(1, int(math.Round(windowDurationSec/dt)))
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		groups:              groups,
	}
}

// SetBoundary changes the distance rule used for group detection.
func (c *Collector) SetBoundary(b systems.Boundary) {
	c.groups.Boundary = b
}

// RecordKill records a kill.
func (c *Collector) RecordKill() {
	c.kills++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int, s Sample) WindowStats {
	elapsed := float64(currentTick-c.windowStartTick) * c.dt

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		PreyCount:       s.PreyAlive,
		PredCount:       s.PredAlive,
		Kills:           c.kills,
	}
	if s.PreyTotal > 0 {
		stats.PropDead = float64(s.PreyTotal-s.PreyAlive) / float64(s.PreyTotal)
	}
	if elapsed > 0 {
		stats.KillRate = float64(c.kills) / elapsed
	}

	stats.Polarization = Polarization(s.PreyVelocities)
	stats.PreySpeedMean, stats.PreySpeedStd, stats.PreySpeedP10, stats.PreySpeedP50, stats.PreySpeedP90 =
		ComputeSpeedStats(Speeds(s.PreyVelocities))
	stats.PredSpeedMean, _, _, _, _ = ComputeSpeedStats(Speeds(s.PredVelocities))

	g := FindGroups(s.PreyPositions, c.groups)
	stats.Groups = g.Groups
	stats.LargestGroup = g.Largest
	stats.Stragglers = g.Stragglers

	// Reset for next window
	c.windowStartTick = currentTick
	c.kills = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int {
	return c.windowDurationTicks
}
