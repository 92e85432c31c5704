package sim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// AgentView is a read-only copy of one agent's latest state.
type AgentView struct {
	Index    int
	Kind     components.Kind
	Status   components.Status
	Position r2.Vec
	Velocity r2.Vec
	Cooldown float64
}

// Alive reports whether the agent is alive.
func (a AgentView) Alive() bool { return a.Status.State == components.Alive }

// Heading returns the direction of travel in radians.
func (a AgentView) Heading() float64 { return systems.Heading(a.Velocity) }

// NumAgents returns the total number of agents, dead included.
func (s *Simulation) NumAgents() int { return len(s.agents) }

// PreyCount returns the number of prey at construction.
func (s *Simulation) PreyCount() int { return s.cfg.PreyCount }

// PredatorCount returns the number of predators at construction.
func (s *Simulation) PredatorCount() int { return s.cfg.PredatorCount }

// Agent returns the latest state of agent i. Dead agents report their
// state at the death tick.
func (s *Simulation) Agent(i int) AgentView {
	e := s.agents[i]
	pos, vel := s.motionMap.Get(e).Latest()
	return AgentView{
		Index:    i,
		Kind:     s.speciesMap.Get(e).Kind,
		Status:   *s.statusMap.Get(e),
		Position: pos,
		Velocity: vel,
		Cooldown: s.cooldownMap.Get(e).Remaining,
	}
}

// Agents appends every agent's view to dst.
func (s *Simulation) Agents(dst []AgentView) []AgentView {
	for i := range s.agents {
		dst = append(dst, s.Agent(i))
	}
	return dst
}

// Status returns agent i's life state.
func (s *Simulation) Status(i int) components.Status {
	return *s.statusMap.Get(s.agents[i])
}

// HistoryLen returns the number of recorded ticks for agent i.
func (s *Simulation) HistoryLen(i int) int {
	return s.motionMap.Get(s.agents[i]).Len()
}

// StateAt returns agent i's position and velocity at tick t. ok is false
// when t is outside the retained history.
func (s *Simulation) StateAt(i, t int) (pos, vel r2.Vec, ok bool) {
	m := s.motionMap.Get(s.agents[i])
	if pos, ok = m.Positions.Lookup(t); !ok {
		return r2.Vec{}, r2.Vec{}, false
	}
	vel, _ = m.Velocities.Lookup(t)
	return pos, vel, true
}

// Positions returns a copy of agent i's retained position history.
func (s *Simulation) Positions(i int) []r2.Vec {
	return s.motionMap.Get(s.agents[i]).Positions.Values()
}

// Tail appends up to n of agent i's most recent positions to dst, oldest first.
func (s *Simulation) Tail(i, n int, dst []r2.Vec) []r2.Vec {
	m := s.motionMap.Get(s.agents[i])
	end := m.Positions.Len()
	for t := max(m.Positions.Oldest(), end-n); t < end; t++ {
		dst = append(dst, m.Positions.At(t))
	}
	return dst
}

// Velocities returns a copy of agent i's retained velocity history.
func (s *Simulation) Velocities(i int) []r2.Vec {
	return s.motionMap.Get(s.agents[i]).Velocities.Values()
}

// Track returns agent i's running speed summary.
func (s *Simulation) Track(i int) components.TrackSummary {
	return s.motionMap.Get(s.agents[i]).Summary
}

// AliveCounts returns the number of living prey and predators.
func (s *Simulation) AliveCounts() (prey, predators int) {
	return s.preyAlive, s.predAlive
}

// ProportionDead returns the fraction of prey killed so far.
func (s *Simulation) ProportionDead() float64 {
	if s.cfg.PreyCount == 0 {
		return 0
	}
	return float64(s.cfg.PreyCount-s.preyAlive) / float64(s.cfg.PreyCount)
}

// DeathTicks returns the death tick of every dead prey, in agent order.
func (s *Simulation) DeathTicks() []int {
	var out []int
	for i := 0; i < s.cfg.PreyCount; i++ {
		if st := s.statusMap.Get(s.agents[i]); !st.Alive() {
			out = append(out, st.DeathTick)
		}
	}
	return out
}

// Kills returns the kills made during the most recent step.
func (s *Simulation) Kills() []Kill {
	out := make([]Kill, len(s.kills))
	copy(out, s.kills)
	return out
}

// Clock returns the simulation clock.
func (s *Simulation) Clock() *Clock { return &s.clock }

// Tick returns the current tick index.
func (s *Simulation) Tick() int { return s.clock.CurrentIndex() }

// Time returns the current simulation time.
func (s *Simulation) Time() float64 { return s.clock.CurrentTime() }

// Done reports whether the run has reached its end time.
func (s *Simulation) Done() bool { return s.clock.Done() }

// Boundary returns the boundary policy.
func (s *Simulation) Boundary() systems.Boundary { return s.cfg.Boundary }

// Length returns the side length of the domain.
func (s *Simulation) Length() float64 { return s.cfg.Length }

// VisionRatio returns the predator neighbor ring in cells.
func (s *Simulation) VisionRatio() int { return s.visionRatio }

// GridShape returns the cells per axis and the cell side length.
func (s *Simulation) GridShape() (numCells int, cellSize float64) {
	return s.grid.NumCells(), s.grid.CellSize()
}

// CellCount returns the number of agents bucketed in cell (i, j).
func (s *Simulation) CellCount(i, j int) int {
	return len(s.grid.Members(i, j))
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// Snapshot captures the latest state of every agent.
func (s *Simulation) Snapshot(seed int64, bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		RNGSeed:   seed,
		Length:    s.cfg.Length,
		Boundary:  s.cfg.Boundary.String(),
		Tick:      s.clock.CurrentIndex(),
		Time:      s.clock.CurrentTime(),
		PreyAlive: s.preyAlive,
		PredAlive: s.predAlive,
		Agents:    make([]telemetry.AgentState, 0, len(s.agents)),
		Bookmark:  bookmark,
	}
	for i := range s.agents {
		a := s.Agent(i)
		state := telemetry.AgentState{
			Index:   i,
			Kind:    a.Kind.String(),
			Alive:   a.Alive(),
			X:       a.Position.X,
			Y:       a.Position.Y,
			VelX:    a.Velocity.X,
			VelY:    a.Velocity.Y,
			Heading: a.Heading(),
		}
		if !state.Alive {
			state.DeathTick = a.Status.DeathTick
		}
		snap.Agents = append(snap.Agents, state)
	}
	return snap
}

// sample gathers the living population for a telemetry flush.
func (s *Simulation) sample() telemetry.Sample {
	out := telemetry.Sample{
		PreyTotal: s.cfg.PreyCount,
		PreyAlive: s.preyAlive,
		PredAlive: s.predAlive,
	}
	for i := range s.agents {
		a := s.Agent(i)
		if !a.Alive() {
			continue
		}
		if a.Kind == components.KindPrey {
			out.PreyPositions = append(out.PreyPositions, a.Position)
			out.PreyVelocities = append(out.PreyVelocities, a.Velocity)
		} else {
			out.PredVelocities = append(out.PredVelocities, a.Velocity)
		}
	}
	return out
}

// Summary aggregates the run so far.
func (s *Simulation) Summary(seed int64) telemetry.RunSummary {
	out := telemetry.RunSummary{
		Seed:      seed,
		Boundary:  s.cfg.Boundary.String(),
		Ticks:     s.clock.CurrentIndex(),
		SimTime:   s.clock.CurrentTime(),
		PreyTotal: s.cfg.PreyCount,
		PreyAlive: s.preyAlive,
		PredAlive: s.predAlive,
		PropDead:  s.ProportionDead(),
	}
	if s.obs != nil {
		out.HuntSummary = s.obs.hunts.Summary()
	}
	return out
}

// Timeline returns the number of living prey at every tick so far.
func (s *Simulation) Timeline() []telemetry.TimelineRecord {
	n := s.clock.CurrentIndex() + 1
	alive := telemetry.PreyAliveTimeline(s.cfg.PreyCount, s.DeathTicks(), n)
	out := make([]telemetry.TimelineRecord, n)
	for t := range out {
		out[t] = telemetry.TimelineRecord{Tick: t, Time: s.clock.TimeAt(t), PreyAlive: alive[t]}
	}
	return out
}
