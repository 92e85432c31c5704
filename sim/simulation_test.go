package sim

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
)

func testParams(vision float64) components.SpeciesParams {
	return components.SpeciesParams{
		VisionRadius:    vision,
		Alignment:       1,
		Attraction:      0.5,
		Repulsion:       0.2,
		CrossAlignment:  0.5,
		CrossAttraction: 1,
		CrossRepulsion:  1,
		MaxAcceleration: 1,
		MaxVelocity:     1,
		Boundary:        1,
		KillCooldown:    0.5,
	}
}

func testConfig(prey, predators int) Config {
	return Config{
		Prey:          testParams(1),
		Predator:      testParams(2),
		PreyCount:     prey,
		PredatorCount: predators,
		Length:        10,
		Boundary:      systems.Periodic(),
		Dt:            0.1,
		EndTime:       2,
		NoiseSigma:    0.05,
	}
}

// still makes every agent stand where it is placed.
func still(cfg Config) Config {
	cfg.Prey.MaxVelocity = 0
	cfg.Predator.MaxVelocity = 0
	cfg.NoiseSigma = 0
	return cfg
}

func mustBuild(t *testing.T, cfg Config, seed int64) *Simulation {
	t.Helper()
	s, err := Build(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

// checkGrid asserts every living agent sits in exactly the bucket of its
// latest position and no dead agent is bucketed.
func checkGrid(t *testing.T, s *Simulation) {
	t.Helper()
	seen := make(map[int]bool)
	n := s.grid.NumCells()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for _, idx := range s.grid.Members(i, j) {
				if seen[idx] {
					t.Fatalf("agent %d bucketed twice", idx)
				}
				seen[idx] = true
				if !s.isAlive(idx) {
					t.Fatalf("dead agent %d still bucketed", idx)
				}
				ci, cj := s.grid.CellOf(s.latestPosition(idx))
				if ci != i || cj != j {
					t.Fatalf("agent %d in cell (%d,%d), position maps to (%d,%d)", idx, i, j, ci, cj)
				}
			}
		}
	}
	for idx := range s.agents {
		if s.isAlive(idx) && !seen[idx] {
			t.Fatalf("living agent %d missing from grid", idx)
		}
	}
}

func TestBuildInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero length", func(c *Config) { c.Length = 0 }},
		{"zero prey vision", func(c *Config) { c.Prey.VisionRadius = 0 }},
		{"vision beyond domain", func(c *Config) { c.Predator.VisionRadius = 11 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative end time", func(c *Config) { c.EndTime = -1 }},
		{"negative count", func(c *Config) { c.PreyCount = -1 }},
		{"initial length mismatch", func(c *Config) { c.Initial = []InitialState{{}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(5, 1)
			tt.modify(&cfg)
			_, err := Build(cfg, rand.New(rand.NewSource(1)))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := Build(testConfig(5, 1), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil rng: err = %v, want ErrInvalidConfig", err)
	}
}

func TestBuildInitialState(t *testing.T) {
	s := mustBuild(t, testConfig(50, 3), 1)

	if s.NumAgents() != 53 {
		t.Fatalf("NumAgents() = %d, want 53", s.NumAgents())
	}
	prey, pred := s.AliveCounts()
	if prey != 50 || pred != 3 {
		t.Errorf("AliveCounts() = (%d, %d), want (50, 3)", prey, pred)
	}
	if s.VisionRatio() != 2 {
		t.Errorf("VisionRatio() = %d, want 2", s.VisionRatio())
	}

	for i := 0; i < s.NumAgents(); i++ {
		a := s.Agent(i)
		wantKind := components.KindPrey
		if i >= 50 {
			wantKind = components.KindPredator
		}
		if a.Kind != wantKind {
			t.Errorf("agent %d kind = %v, want %v", i, a.Kind, wantKind)
		}
		if a.Position.X < 0 || a.Position.X >= 10 || a.Position.Y < 0 || a.Position.Y >= 10 {
			t.Errorf("agent %d outside domain: %v", i, a.Position)
		}
		if math.Abs(r2.Norm(a.Velocity)-1) > 1e-12 {
			t.Errorf("agent %d initial speed = %v, want 1", i, r2.Norm(a.Velocity))
		}
		if s.HistoryLen(i) != 1 {
			t.Errorf("agent %d history len = %d, want 1", i, s.HistoryLen(i))
		}
	}
	checkGrid(t, s)
}

func TestDeterminism(t *testing.T) {
	cfg := testConfig(100, 4)
	a := mustBuild(t, cfg, 99)
	b := mustBuild(t, cfg, 99)
	for i := 0; i < 15; i++ {
		a.Step()
		b.Step()
	}

	for i := 0; i < a.NumAgents(); i++ {
		pa, pb := a.Positions(i), b.Positions(i)
		va, vb := a.Velocities(i), b.Velocities(i)
		if len(pa) != len(pb) {
			t.Fatalf("agent %d history lengths differ: %d vs %d", i, len(pa), len(pb))
		}
		for k := range pa {
			if pa[k] != pb[k] || va[k] != vb[k] {
				t.Fatalf("agent %d diverged at tick %d", i, k)
			}
		}
		if a.Status(i) != b.Status(i) {
			t.Fatalf("agent %d status differs", i)
		}
	}
}

func TestLoneAgentNoiseOnly(t *testing.T) {
	cfg := testConfig(1, 0)
	s := mustBuild(t, cfg, 7)

	// Replay the random draws: position x, y and heading, then two normals.
	rng := rand.New(rand.NewSource(7))
	rng.Float64()
	rng.Float64()
	rng.Float64()
	noise := r2.Vec{X: rng.NormFloat64() * cfg.NoiseSigma, Y: rng.NormFloat64() * cfg.NoiseSigma}

	pos0, vel0, _ := s.StateAt(0, 0)
	s.Step()
	pos1, vel1, ok := s.StateAt(0, 1)
	if !ok {
		t.Fatal("tick 1 missing from history")
	}

	force := systems.ClampLength(noise, cfg.Prey.MaxAcceleration)
	wantVel := systems.ClampLength(r2.Add(vel0, r2.Scale(cfg.Dt, force)), cfg.Prey.MaxVelocity)
	wantPos := r2.Add(pos0, r2.Scale(cfg.Dt, wantVel))
	wantPos = r2.Vec{X: systems.Wrap(wantPos.X, cfg.Length), Y: systems.Wrap(wantPos.Y, cfg.Length)}

	if vel1 != wantVel {
		t.Errorf("velocity = %v, want %v", vel1, wantVel)
	}
	if pos1 != wantPos {
		t.Errorf("position = %v, want %v", pos1, wantPos)
	}
}

func TestStrikeWithinDistance(t *testing.T) {
	cfg := still(testConfig(1, 2))
	cfg.Initial = []InitialState{
		{Pos: r2.Vec{X: 5.04, Y: 5}},
		{Pos: r2.Vec{X: 5, Y: 5}},
		{Pos: r2.Vec{X: 1, Y: 1}},
	}
	s := mustBuild(t, cfg, 1)
	s.Step()

	st := s.Status(0)
	if st.Alive() {
		t.Fatal("prey at 0.04 from a predator survived")
	}
	if st.DeathTick != s.Tick() {
		t.Errorf("DeathTick = %d, want current tick %d", st.DeathTick, s.Tick())
	}
	if st.DeathPos != (r2.Vec{X: 5.04, Y: 5}) {
		t.Errorf("DeathPos = %v", st.DeathPos)
	}
	kills := s.Kills()
	if len(kills) != 1 || kills[0].Predator != 1 || kills[0].Prey != 0 {
		t.Errorf("Kills() = %+v, want predator 1 killing prey 0", kills)
	}
	prey, pred := s.AliveCounts()
	if prey != 0 || pred != 2 {
		t.Errorf("AliveCounts() = (%d, %d), want (0, 2)", prey, pred)
	}
	checkGrid(t, s)
}

func TestStrikeAcrossPeriodicEdge(t *testing.T) {
	cfg := still(testConfig(1, 1))
	cfg.Initial = []InitialState{
		{Pos: r2.Vec{X: 0.01, Y: 5}},
		{Pos: r2.Vec{X: 9.98, Y: 5}},
	}
	s := mustBuild(t, cfg, 1)
	s.Step()
	if s.Status(0).Alive() {
		t.Error("prey 0.03 away across the seam survived")
	}
}

func TestOneKillPerPredatorPerTick(t *testing.T) {
	cfg := still(testConfig(2, 1))
	cfg.Initial = []InitialState{
		{Pos: r2.Vec{X: 5.02, Y: 5}},
		{Pos: r2.Vec{X: 4.98, Y: 5}},
		{Pos: r2.Vec{X: 5, Y: 5}},
	}
	s := mustBuild(t, cfg, 1)

	s.Step()
	if prey, _ := s.AliveCounts(); prey != 1 {
		t.Fatalf("after one tick %d prey alive, want 1", prey)
	}
	s.Step()
	if prey, _ := s.AliveCounts(); prey != 0 {
		t.Fatalf("after two ticks %d prey alive, want 0", prey)
	}
	if s.Status(0).DeathTick == s.Status(1).DeathTick {
		t.Error("both prey died on the same tick")
	}
}

func TestCooldownEnforcement(t *testing.T) {
	tests := []struct {
		name      string
		enforce   bool
		wantAlive bool
	}{
		{"advisory", false, false},
		{"enforced", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := still(testConfig(1, 1))
			cfg.Predator.KillCooldown = 1
			cfg.EnforceCooldown = tt.enforce
			cfg.Initial = []InitialState{
				{Pos: r2.Vec{X: 5.01, Y: 5}},
				{Pos: r2.Vec{X: 5, Y: 5}},
			}
			s := mustBuild(t, cfg, 1)
			for i := 0; i < 5; i++ {
				s.Step()
			}
			if got := s.Status(0).Alive(); got != tt.wantAlive {
				t.Errorf("prey alive = %v, want %v", got, tt.wantAlive)
			}
			if got := s.Agent(1).Cooldown; got >= 1 {
				t.Errorf("cooldown = %v, want it to have decreased", got)
			}
		})
	}

	cfg := still(testConfig(1, 1))
	cfg.Predator.KillCooldown = 1
	cfg.EnforceCooldown = true
	cfg.Initial = []InitialState{
		{Pos: r2.Vec{X: 5.01, Y: 5}},
		{Pos: r2.Vec{X: 5, Y: 5}},
	}
	s := mustBuild(t, cfg, 1)
	for i := 0; i < 15; i++ {
		s.Step()
	}
	if s.Status(0).Alive() {
		t.Error("prey survived after the cooldown expired")
	}
}

func TestHardBoundaryClamp(t *testing.T) {
	cfg := testConfig(1, 0)
	cfg.Boundary = systems.Hard()
	cfg.NoiseSigma = 0
	cfg.Dt = 1
	cfg.Initial = []InitialState{{Pos: r2.Vec{X: 9.9, Y: 5}, Vel: r2.Vec{X: 0.6}}}
	s := mustBuild(t, cfg, 1)
	s.Step()

	a := s.Agent(0)
	if a.Position != (r2.Vec{X: 10, Y: 5}) {
		t.Errorf("position = %v, want (10, 5)", a.Position)
	}
	if a.Velocity != (r2.Vec{}) {
		t.Errorf("velocity = %v, want zero", a.Velocity)
	}
	if s.CellCount(0, 5) != 1 {
		t.Errorf("agent at x = L should be bucketed in cell column 0")
	}
	checkGrid(t, s)
}

func TestDeadAgentsFrozen(t *testing.T) {
	cfg := testConfig(300, 10)
	cfg.EndTime = 3
	s := mustBuild(t, cfg, 3)
	s.Run()

	prey, _ := s.AliveCounts()
	if prey == cfg.PreyCount {
		t.Skip("no kills in this run")
	}
	dead := 0
	for i := 0; i < cfg.PreyCount; i++ {
		st := s.Status(i)
		if st.Alive() {
			if s.HistoryLen(i) != s.Tick()+1 {
				t.Errorf("living agent %d history len = %d, want %d", i, s.HistoryLen(i), s.Tick()+1)
			}
			continue
		}
		dead++
		if s.HistoryLen(i) != st.DeathTick+1 {
			t.Errorf("dead agent %d history len = %d, want %d", i, s.HistoryLen(i), st.DeathTick+1)
		}
		pos, _, _ := s.StateAt(i, st.DeathTick)
		if pos != st.DeathPos {
			t.Errorf("dead agent %d death position %v != history %v", i, st.DeathPos, pos)
		}
	}
	if dead != cfg.PreyCount-prey {
		t.Errorf("counted %d dead, AliveCounts implies %d", dead, cfg.PreyCount-prey)
	}
	if len(s.DeathTicks()) != dead {
		t.Errorf("len(DeathTicks()) = %d, want %d", len(s.DeathTicks()), dead)
	}
	checkGrid(t, s)
}

func TestGridInvariantAcrossBoundaries(t *testing.T) {
	for _, b := range []systems.Boundary{systems.Periodic(), systems.Hard(), systems.Soft(2)} {
		t.Run(b.Name(), func(t *testing.T) {
			cfg := testConfig(150, 3)
			cfg.Boundary = b
			s := mustBuild(t, cfg, 11)
			for i := 0; i < 10; i++ {
				s.Step()
				checkGrid(t, s)
			}
			for i := 0; i < s.NumAgents(); i++ {
				p := s.Agent(i).Position
				if p.X < 0 || p.X > 10 || p.Y < 0 || p.Y > 10 {
					t.Fatalf("agent %d left the domain: %v", i, p)
				}
				if sp := r2.Norm(s.Agent(i).Velocity); sp > 1+1e-12 {
					t.Fatalf("agent %d speed %v exceeds max", i, sp)
				}
			}
		})
	}
}

func TestRunStopsAtEndTime(t *testing.T) {
	cfg := testConfig(20, 1)
	cfg.Dt = 0.25
	cfg.EndTime = 1
	s := mustBuild(t, cfg, 5)
	s.Run()

	if s.Tick() != 4 {
		t.Errorf("Tick() = %d, want 4", s.Tick())
	}
	if !s.Done() {
		t.Error("Done() = false after Run")
	}
	if got := len(s.Timeline()); got != 5 {
		t.Errorf("len(Timeline()) = %d, want 5", got)
	}
}

func TestRingHistory(t *testing.T) {
	cfg := testConfig(30, 2)
	cfg.HistoryCapacity = 3
	s := mustBuild(t, cfg, 5)
	for i := 0; i < 10; i++ {
		s.Step()
	}
	for i := 0; i < s.NumAgents(); i++ {
		if !s.Status(i).Alive() {
			continue
		}
		if _, _, ok := s.StateAt(i, 0); ok {
			t.Fatalf("agent %d still retains tick 0", i)
		}
		if _, _, ok := s.StateAt(i, 10); !ok {
			t.Fatalf("agent %d lost its latest tick", i)
		}
	}
	checkGrid(t, s)
}

func TestConfigFromDefaults(t *testing.T) {
	defaults, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := ConfigFrom(defaults)
	if err != nil {
		t.Fatalf("ConfigFrom: %v", err)
	}
	if cfg.Boundary.Kind != systems.BoundarySoft {
		t.Errorf("boundary = %v, want soft", cfg.Boundary)
	}
	if cfg.PreyCount != 500 || cfg.PredatorCount != 5 {
		t.Errorf("counts = (%d, %d), want (500, 5)", cfg.PreyCount, cfg.PredatorCount)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}

	bad := defaults.Clone()
	bad.World.Boundary = "toroidal"
	if _, err := ConfigFrom(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown boundary: err = %v, want ErrInvalidConfig", err)
	}
}

func TestTailRespectsRetainedHistory(t *testing.T) {
	cfg := testConfig(5, 0)
	cfg.HistoryCapacity = 3
	s := mustBuild(t, cfg, 6)
	for i := 0; i < 10; i++ {
		s.Step()
	}

	tail := s.Tail(0, 5, nil)
	if len(tail) != 3 {
		t.Fatalf("len(Tail) = %d, want 3", len(tail))
	}
	latest, _, _ := s.StateAt(0, 10)
	if tail[2] != latest {
		t.Errorf("Tail last = %v, want %v", tail[2], latest)
	}

	if got := s.Tail(0, 2, nil); len(got) != 2 || got[1] != latest {
		t.Errorf("Tail(n=2) = %v", got)
	}
}

// clusteredStates places prey in a few nearby cells, including across the
// periodic seam, with two predators among them.
func clusteredStates() (prey, predators []InitialState) {
	prey = []InitialState{
		{Pos: r2.Vec{X: 0.2, Y: 0.3}, Vel: r2.Vec{X: 0.5, Y: 0.1}},
		{Pos: r2.Vec{X: 0.9, Y: 0.6}, Vel: r2.Vec{X: -0.3, Y: 0.4}},
		{Pos: r2.Vec{X: 1.4, Y: 0.2}, Vel: r2.Vec{X: 0.1, Y: -0.6}},
		{Pos: r2.Vec{X: 9.7, Y: 0.4}, Vel: r2.Vec{X: 0.2, Y: 0.2}},
		{Pos: r2.Vec{X: 9.8, Y: 9.6}, Vel: r2.Vec{X: -0.4, Y: 0}},
		{Pos: r2.Vec{X: 0.6, Y: 9.9}, Vel: r2.Vec{X: 0, Y: 0.7}},
		{Pos: r2.Vec{X: 2.3, Y: 1.1}, Vel: r2.Vec{X: 0.6, Y: 0.3}},
		{Pos: r2.Vec{X: 1.8, Y: 1.7}, Vel: r2.Vec{X: -0.2, Y: -0.5}},
		{Pos: r2.Vec{X: 5.5, Y: 5.5}, Vel: r2.Vec{X: 0.3, Y: 0.3}},
		{Pos: r2.Vec{X: 5.9, Y: 6.2}, Vel: r2.Vec{X: -0.1, Y: 0.8}},
	}
	predators = []InitialState{
		{Pos: r2.Vec{X: 1.1, Y: 9.2}, Vel: r2.Vec{X: 0.4, Y: 0.4}},
		{Pos: r2.Vec{X: 6.8, Y: 5.1}, Vel: r2.Vec{X: -0.5, Y: 0.2}},
	}
	return prey, predators
}

// bruteForceStep advances every agent one tick against every other agent,
// with no spatial partitioning.
func bruteForceStep(cfg Config) []InitialState {
	fm := systems.ForceModel{Boundary: cfg.Boundary, Length: cfg.Length}
	bodies := make([]systems.Body, len(cfg.Initial))
	for i, st := range cfg.Initial {
		kind := components.KindPrey
		if i >= cfg.PreyCount {
			kind = components.KindPredator
		}
		bodies[i] = systems.Body{Index: i, Kind: kind, Pos: st.Pos, Vel: st.Vel}
	}
	next := make([]InitialState, len(bodies))
	for i, self := range bodies {
		p := cfg.Prey
		if self.Kind == components.KindPredator {
			p = cfg.Predator
		}
		force := fm.Force(self, p, bodies, nil)
		pos, vel := systems.Integrate(self.Pos, self.Vel, force, cfg.Dt, p.MaxVelocity)
		pos, vel = cfg.Boundary.Correct(pos, vel, cfg.Length)
		next[i] = InitialState{Pos: pos, Vel: vel}
	}
	return next
}

func TestMotionMatchesAllPairs(t *testing.T) {
	prey, predators := clusteredStates()
	cfg := testConfig(len(prey), len(predators))
	cfg.NoiseSigma = 0
	cfg.Initial = append(append([]InitialState{}, prey...), predators...)

	want := bruteForceStep(cfg)
	s := mustBuild(t, cfg, 1)
	s.Step()

	const tol = 1e-9
	for i, w := range want {
		pos, vel, ok := s.StateAt(i, 1)
		if !ok {
			t.Fatalf("agent %d has no state at tick 1", i)
		}
		if math.Abs(pos.X-w.Pos.X) > tol || math.Abs(pos.Y-w.Pos.Y) > tol {
			t.Errorf("agent %d position = %v, want %v", i, pos, w.Pos)
		}
		if math.Abs(vel.X-w.Vel.X) > tol || math.Abs(vel.Y-w.Vel.Y) > tol {
			t.Errorf("agent %d velocity = %v, want %v", i, vel, w.Vel)
		}
	}
}

func TestMotionIndependentOfAgentOrder(t *testing.T) {
	prey, predators := clusteredStates()
	cfg := testConfig(len(prey), len(predators))
	cfg.NoiseSigma = 0
	cfg.Initial = append(append([]InitialState{}, prey...), predators...)

	// Reverse each species block so agents land in the grid buckets in a
	// different order.
	rev := cfg
	rev.Initial = make([]InitialState, 0, len(cfg.Initial))
	for i := len(prey) - 1; i >= 0; i-- {
		rev.Initial = append(rev.Initial, prey[i])
	}
	for i := len(predators) - 1; i >= 0; i-- {
		rev.Initial = append(rev.Initial, predators[i])
	}
	revIndex := func(i int) int {
		if i < len(prey) {
			return len(prey) - 1 - i
		}
		return len(prey) + len(predators) - 1 - (i - len(prey))
	}

	a := mustBuild(t, cfg, 1)
	b := mustBuild(t, rev, 1)
	a.Step()
	b.Step()

	const tol = 1e-9
	for i := 0; i < a.NumAgents(); i++ {
		pa, va, _ := a.StateAt(i, 1)
		pb, vb, _ := b.StateAt(revIndex(i), 1)
		if math.Abs(pa.X-pb.X) > tol || math.Abs(pa.Y-pb.Y) > tol ||
			math.Abs(va.X-vb.X) > tol || math.Abs(va.Y-vb.Y) > tol {
			t.Errorf("agent %d: (%v, %v) vs reordered (%v, %v)", i, pa, va, pb, vb)
		}
	}
}
