package components

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// History is an append-only sequence of vectors indexed by tick.
// With a positive capacity it keeps only the most recent entries in a ring,
// while Len keeps counting every append so tick indices stay stable.
type History struct {
	buf      []r2.Vec
	capacity int
	total    int
}

// NewHistory creates a history. capacity <= 0 keeps every entry; otherwise at
// least two entries are retained.
func NewHistory(capacity int) History {
	if capacity <= 0 {
		return History{}
	}
	capacity = max(capacity, 2)
	return History{buf: make([]r2.Vec, 0, capacity), capacity: capacity}
}

// Append adds the entry for the next tick.
func (h *History) Append(v r2.Vec) {
	if h.capacity == 0 || len(h.buf) < h.capacity {
		h.buf = append(h.buf, v)
	} else {
		h.buf[h.total%h.capacity] = v
	}
	h.total++
}

// Len returns the number of entries ever appended.
func (h *History) Len() int {
	return h.total
}

// Oldest returns the lowest tick index still retained.
func (h *History) Oldest() int {
	return h.total - len(h.buf)
}

// Lookup returns the entry for tick i, or false if it was never written or has
// been evicted from the ring.
func (h *History) Lookup(i int) (r2.Vec, bool) {
	if i < h.Oldest() || i >= h.total {
		return r2.Vec{}, false
	}
	if h.capacity == 0 {
		return h.buf[i], true
	}
	return h.buf[i%h.capacity], true
}

// At returns the entry for tick i. Asking for an index outside the retained
// range is a programming error and panics.
func (h *History) At(i int) r2.Vec {
	v, ok := h.Lookup(i)
	if !ok {
		panic(fmt.Sprintf("history: index %d outside retained range [%d,%d)", i, h.Oldest(), h.total))
	}
	return v
}

// Last returns the most recent entry.
func (h *History) Last() r2.Vec {
	return h.At(h.total - 1)
}

// Values returns a copy of the retained entries in tick order.
func (h *History) Values() []r2.Vec {
	out := make([]r2.Vec, 0, len(h.buf))
	for i := h.Oldest(); i < h.total; i++ {
		out = append(out, h.At(i))
	}
	return out
}

// TrackSummary accumulates statistics over the whole trajectory, including
// entries a ring history has already dropped.
type TrackSummary struct {
	Samples  int
	SpeedSum float64
	MaxSpeed float64
}

// MeanSpeed returns the average speed over all samples.
func (s TrackSummary) MeanSpeed() float64 {
	if s.Samples == 0 {
		return 0
	}
	return s.SpeedSum / float64(s.Samples)
}

// Motion holds an agent's kinematic history.
// Positions.Len() == Velocities.Len() at all times.
type Motion struct {
	Positions  History
	Velocities History
	Summary    TrackSummary
}

// NewMotion creates a motion history seeded with the initial state.
func NewMotion(pos, vel r2.Vec, capacity int) Motion {
	m := Motion{
		Positions:  NewHistory(capacity),
		Velocities: NewHistory(capacity),
	}
	m.Append(pos, vel)
	return m
}

// Append records the state for the next tick.
func (m *Motion) Append(pos, vel r2.Vec) {
	m.Positions.Append(pos)
	m.Velocities.Append(vel)

	speed := r2.Norm(vel)
	m.Summary.Samples++
	m.Summary.SpeedSum += speed
	if speed > m.Summary.MaxSpeed {
		m.Summary.MaxSpeed = speed
	}
}

// Len returns the number of recorded ticks.
func (m *Motion) Len() int {
	return m.Positions.Len()
}

// State returns position and velocity at tick i.
func (m *Motion) State(i int) (r2.Vec, r2.Vec) {
	return m.Positions.At(i), m.Velocities.At(i)
}

// Latest returns the most recent position and velocity.
func (m *Motion) Latest() (r2.Vec, r2.Vec) {
	return m.Positions.Last(), m.Velocities.Last()
}
