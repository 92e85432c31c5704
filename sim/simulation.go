// Package sim runs the predator/prey flock. A Simulation owns the agents,
// the spatial grid and the clock, and advances them in lockstep.
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// Kill records one successful strike during a step.
type Kill struct {
	Tick     int
	Predator int
	Prey     int
	Pos      r2.Vec
	PreyVel  r2.Vec
}

// Simulation holds the complete simulation state.
type Simulation struct {
	cfg   Config
	world *ecs.World
	rng   *rand.Rand

	agentMapper *ecs.Map4[
		components.Species,
		components.Motion,
		components.Status,
		components.Cooldown,
	]
	cooldownFilter *ecs.Filter2[components.Species, components.Cooldown]

	speciesMap  *ecs.Map1[components.Species]
	motionMap   *ecs.Map1[components.Motion]
	statusMap   *ecs.Map1[components.Status]
	cooldownMap *ecs.Map1[components.Cooldown]

	// Stable agent index -> entity. Prey occupy [0, PreyCount).
	agents []ecs.Entity

	grid        *systems.SpatialGrid
	forces      systems.ForceModel
	predation   systems.PredationRule
	clock       Clock
	visionRatio int

	preyAlive int
	predAlive int
	kills     []Kill

	// Scratch buffers reused across ticks
	window  []int
	bodies  []systems.Body
	members []int

	perf *telemetry.PerfCollector
	obs  *observer
}

// Build validates cfg and constructs a world at tick 0. Agent positions are
// drawn uniformly over the domain and headings uniformly over [0, 2π), in
// agent order, from rng. Errors wrap ErrInvalidConfig.
func Build(cfg Config, rng *rand.Rand) (*Simulation, error) {
	if rng == nil {
		return nil, fmt.Errorf("nil random source: %w", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.StrikeDistance == 0 {
		cfg.StrikeDistance = systems.DefaultStrikeDistance
	}

	clock, err := NewClock(cfg.Dt, cfg.EndTime)
	if err != nil {
		return nil, err
	}
	grid, err := systems.NewSpatialGrid(cfg.Prey.VisionRadius, cfg.Length)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	s := &Simulation{
		cfg:   cfg,
		world: world,
		rng:   rng,
		agentMapper: ecs.NewMap4[
			components.Species,
			components.Motion,
			components.Status,
			components.Cooldown,
		](world),
		cooldownFilter: ecs.NewFilter2[components.Species, components.Cooldown](world),
		speciesMap:     ecs.NewMap1[components.Species](world),
		motionMap:      ecs.NewMap1[components.Motion](world),
		statusMap:      ecs.NewMap1[components.Status](world),
		cooldownMap:    ecs.NewMap1[components.Cooldown](world),
		agents:         make([]ecs.Entity, 0, cfg.PreyCount+cfg.PredatorCount),
		grid:           grid,
		forces: systems.ForceModel{
			Boundary:   cfg.Boundary,
			Length:     cfg.Length,
			NoiseSigma: cfg.NoiseSigma,
		},
		predation: systems.PredationRule{
			StrikeDistance:  cfg.StrikeDistance,
			EnforceCooldown: cfg.EnforceCooldown,
		},
		clock:       clock,
		visionRatio: max(1, int(math.Ceil(cfg.Predator.VisionRadius/cfg.Prey.VisionRadius))),
	}

	for i := 0; i < cfg.PreyCount; i++ {
		s.spawnAgent(components.KindPrey, cfg.Prey)
	}
	for i := 0; i < cfg.PredatorCount; i++ {
		s.spawnAgent(components.KindPredator, cfg.Predator)
	}

	return s, nil
}

// spawnAgent creates the next agent and places it in the grid.
func (s *Simulation) spawnAgent(kind components.Kind, params components.SpeciesParams) {
	idx := len(s.agents)

	var pos, vel r2.Vec
	if s.cfg.Initial != nil {
		pos, vel = s.cfg.Initial[idx].Pos, s.cfg.Initial[idx].Vel
	} else {
		pos = r2.Vec{X: s.rng.Float64() * s.cfg.Length, Y: s.rng.Float64() * s.cfg.Length}
		heading := s.rng.Float64() * 2 * math.Pi
		vel = r2.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
	}

	species := components.Species{Kind: kind, Params: params}
	motion := components.NewMotion(pos, vel, s.cfg.HistoryCapacity)
	status := components.Status{State: components.Alive}
	var cooldown components.Cooldown
	if kind == components.KindPredator {
		cooldown.Reset(params)
		s.predAlive++
	} else {
		s.preyAlive++
	}

	entity := s.agentMapper.NewEntity(&species, &motion, &status, &cooldown)
	s.agents = append(s.agents, entity)
	s.grid.Insert(pos, idx)
}

// Step advances the simulation by one tick.
//
// Every living agent's next state is computed from tick-N states only, so
// the result does not depend on update order within a tick. The grid is then
// reindexed against the new positions, predators strike, cooldowns decay and
// the clock advances.
func (s *Simulation) Step() {
	s.startTick()
	s.kills = s.kills[:0]
	cur := s.clock.CurrentIndex()

	// 1. Forces and integration
	s.startPhase(telemetry.PhaseForces)
	s.updateMotion(cur)

	// 2. Move agents between cells
	s.startPhase(telemetry.PhaseReindex)
	s.grid.Reindex(s.latestPosition)

	// 3. Strikes against tick N+1 positions
	s.startPhase(telemetry.PhasePredation)
	s.updatePredation(cur + 1)

	// 4. Cooldowns
	s.startPhase(telemetry.PhaseCooldowns)
	s.updateCooldowns()

	s.clock.advance()

	s.startPhase(telemetry.PhaseTelemetry)
	s.observe()

	s.endTick()
}

// Run steps until the clock reaches its end time.
func (s *Simulation) Run() {
	for !s.clock.Done() {
		s.Step()
	}
}

// updateMotion appends a tick cur+1 state to every living agent.
func (s *Simulation) updateMotion(cur int) {
	dt := s.clock.Dt()
	n := s.grid.NumCells()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for _, idx := range s.grid.Members(i, j) {
				e := s.agents[idx]
				sp := s.speciesMap.Get(e)
				m := s.motionMap.Get(e)

				pos, vel := m.State(cur)
				ring := 1
				if sp.Kind == components.KindPredator {
					ring = s.visionRatio
				}
				s.window = s.grid.NeighborsWindow(s.window[:0], i, j, ring)
				s.bodies = s.collectBodies(s.bodies[:0], s.window, cur, false)

				self := systems.Body{Index: idx, Kind: sp.Kind, Pos: pos, Vel: vel}
				force := s.forces.Force(self, sp.Params, s.bodies, s.rng)
				p, v := systems.Integrate(pos, vel, force, dt, sp.Params.MaxVelocity)
				p, v = s.cfg.Boundary.Correct(p, v, s.cfg.Length)
				m.Append(p, v)
			}
		}
	}
}

// collectBodies reads the tick-t state of every agent in window.
func (s *Simulation) collectBodies(dst []systems.Body, window []int, t int, preyOnly bool) []systems.Body {
	for _, idx := range window {
		e := s.agents[idx]
		sp := s.speciesMap.Get(e)
		if preyOnly && sp.Kind != components.KindPrey {
			continue
		}
		pos, vel := s.motionMap.Get(e).State(t)
		dst = append(dst, systems.Body{Index: idx, Kind: sp.Kind, Pos: pos, Vel: vel})
	}
	return dst
}

// latestPosition returns the newest recorded position of agent idx.
func (s *Simulation) latestPosition(idx int) r2.Vec {
	return s.motionMap.Get(s.agents[idx]).Positions.Last()
}

// isAlive reports whether agent idx is alive.
func (s *Simulation) isAlive(idx int) bool {
	return s.statusMap.Get(s.agents[idx]).Alive()
}

// updatePredation lets each predator kill at most one prey at tick newest.
// Cells are visited row-major; each bucket is copied first because kills
// remove prey from the grid while it is being walked.
func (s *Simulation) updatePredation(newest int) {
	n := s.grid.NumCells()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s.members = append(s.members[:0], s.grid.Members(i, j)...)
			for _, idx := range s.members {
				e := s.agents[idx]
				sp := s.speciesMap.Get(e)
				if sp.Kind != components.KindPredator || !s.isAlive(idx) {
					continue
				}
				cd := s.cooldownMap.Get(e)
				if !s.predation.CanStrike(cd) {
					continue
				}

				pos := s.motionMap.Get(e).Positions.At(newest)
				s.window = s.grid.NeighborsWindow(s.window[:0], i, j, s.visionRatio)
				s.bodies = s.collectBodies(s.bodies[:0], s.window, newest, true)

				k, ok := s.predation.FindVictim(pos, s.bodies, s.isAlive, s.cfg.Boundary, s.cfg.Length)
				if !ok {
					continue
				}
				s.killPrey(s.bodies[k], idx, newest)
				cd.Reset(sp.Params)
			}
		}
	}
}

// killPrey marks the victim dead at tick and removes it from the grid.
func (s *Simulation) killPrey(victim systems.Body, predator, tick int) {
	st := s.statusMap.Get(s.agents[victim.Index])
	if !st.Kill(tick, victim.Pos) {
		return
	}
	ci, cj := s.grid.CellOf(victim.Pos)
	s.grid.Remove(ci, cj, victim.Index)
	s.preyAlive--

	s.kills = append(s.kills, Kill{
		Tick:     tick,
		Predator: predator,
		Prey:     victim.Index,
		Pos:      victim.Pos,
		PreyVel:  victim.Vel,
	})
}

// updateCooldowns decrements kill cooldowns.
func (s *Simulation) updateCooldowns() {
	dt := s.clock.Dt()
	query := s.cooldownFilter.Query()
	for query.Next() {
		_, cd := query.Get()
		cd.Decrease(dt)
	}
}

// SetBoundary switches the boundary policy from the next step on. Positions
// recorded so far are left as they are.
func (s *Simulation) SetBoundary(b systems.Boundary) {
	s.cfg.Boundary = b
	s.forces.Boundary = b
	if s.obs != nil {
		s.obs.collector.SetBoundary(b)
	}
}

// EnablePerf starts per-phase timing over a rolling window of ticks.
func (s *Simulation) EnablePerf(window int) *telemetry.PerfCollector {
	s.perf = telemetry.NewPerfCollector(window)
	return s.perf
}

func (s *Simulation) startTick() {
	if s.perf != nil {
		s.perf.StartTick()
	}
}

func (s *Simulation) startPhase(ph telemetry.Phase) {
	if s.perf != nil {
		s.perf.StartPhase(ph)
	}
}

func (s *Simulation) endTick() {
	if s.perf != nil {
		s.perf.EndTick()
	}
}
