package sim

import (
	"fmt"

	"github.com/pthm-cable/flock/systems"
)

// Clock is the simulation's tick sequence. times[0] is 0 and every tick adds dt.
type Clock struct {
	times   []float64
	dt      float64
	endTime float64
	current int
}

// NewClock creates a clock at tick 0.
func NewClock(dt, endTime float64) (Clock, error) {
	if !(dt > 0) {
		return Clock{}, fmt.Errorf("time step %v must be positive: %w", dt, systems.ErrInvalidConfig)
	}
	if endTime < 0 {
		return Clock{}, fmt.Errorf("end time %v must not be negative: %w", endTime, systems.ErrInvalidConfig)
	}
	return Clock{
		times:   []float64{0},
		dt:      dt,
		endTime: endTime,
	}, nil
}

// Dt returns the time step.
func (c *Clock) Dt() float64 { return c.dt }

// EndTime returns the time at which Run stops.
func (c *Clock) EndTime() float64 { return c.endTime }

// CurrentIndex returns the current tick index.
func (c *Clock) CurrentIndex() int { return c.current }

// CurrentTime returns the time of the current tick.
func (c *Clock) CurrentTime() float64 { return c.times[c.current] }

// TimeAt returns the time of tick i.
func (c *Clock) TimeAt(i int) float64 { return c.times[i] }

// Times returns a copy of every tick time so far.
func (c *Clock) Times() []float64 {
	out := make([]float64, len(c.times))
	copy(out, c.times)
	return out
}

// Done reports whether the current time has reached the end time.
func (c *Clock) Done() bool {
	return c.CurrentTime() >= c.endTime
}

// Progress returns the fraction of the run completed, in [0, 1].
func (c *Clock) Progress() float64 {
	if c.endTime <= 0 {
		return 1
	}
	return min(1, c.CurrentTime()/c.endTime)
}

func (c *Clock) advance() {
	c.times = append(c.times, c.times[c.current]+c.dt)
	c.current++
}
