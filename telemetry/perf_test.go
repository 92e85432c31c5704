package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc.now = clock.now

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseForces)
		clock.advance(200 * time.Microsecond)
		pc.StartPhase(PhaseReindex)
		clock.advance(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != 300*time.Microsecond {
		t.Errorf("avg tick = %v, want 300µs", stats.AvgTickDuration)
	}
	if !stats.Recorded[PhaseForces] || !stats.Recorded[PhaseReindex] {
		t.Errorf("expected forces and reindex recorded, got %v", stats.Recorded)
	}
	if stats.Recorded[PhasePredation] {
		t.Error("predation never ran but is recorded")
	}
	if stats.PhaseAvg[PhaseForces] != 200*time.Microsecond {
		t.Errorf("forces avg = %v, want 200µs", stats.PhaseAvg[PhaseForces])
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc.now = clock.now

	// Ticks get slower; only the last five stay in the window.
	for i := 1; i <= 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseReindex)
		clock.advance(time.Duration(i) * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != 8*time.Millisecond {
		t.Errorf("avg tick = %v, want 8ms", stats.AvgTickDuration)
	}
	if stats.MinTickDuration != 6*time.Millisecond || stats.MaxTickDuration != 10*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 6ms/10ms", stats.MinTickDuration, stats.MaxTickDuration)
	}
	if math.Abs(stats.TicksPerSecond-125) > 1e-9 {
		t.Errorf("ticks/s = %v, want 125", stats.TicksPerSecond)
	}
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc.now = clock.now

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseCooldowns)
		clock.advance(10 * time.Microsecond)
		pc.StartPhase(PhaseForces)
		clock.advance(30 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	tests := []struct {
		phase   Phase
		wantAvg time.Duration
		wantPct float64
	}{
		{PhaseCooldowns, 10 * time.Microsecond, 25},
		{PhaseForces, 30 * time.Microsecond, 75},
		{PhasePredation, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			if stats.PhaseAvg[tt.phase] != tt.wantAvg {
				t.Errorf("avg = %v, want %v", stats.PhaseAvg[tt.phase], tt.wantAvg)
			}
			if math.Abs(stats.PhasePct[tt.phase]-tt.wantPct) > 1e-9 {
				t.Errorf("pct = %v, want %v", stats.PhasePct[tt.phase], tt.wantPct)
			}
		})
	}
	if stats.AvgTickDuration != 40*time.Microsecond {
		t.Errorf("avg tick = %v, want 40µs", stats.AvgTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if len(stats.Phases()) != 0 {
		t.Errorf("expected no phases, got %v", stats.Phases())
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc.now = clock.now

	pc.RecordFrame()
	if pc.Stats().FPS != 0 {
		t.Error("a single frame has no duration")
	}
	clock.advance(20 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 20*time.Millisecond {
		t.Errorf("frame duration = %v, want 20ms", stats.FrameDuration)
	}
	if math.Abs(stats.FPS-50) > 1e-9 {
		t.Errorf("FPS = %v, want 50", stats.FPS)
	}
}

func TestPerfStats_PhasesInStepOrder(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase(PhasePredation)
	pc.StartPhase(PhaseForces)
	pc.StartPhase(NumPhases) // ignored
	pc.EndTick()

	phases := pc.Stats().Phases()
	if len(phases) != 2 || phases[0] != PhaseForces || phases[1] != PhasePredation {
		t.Errorf("Phases() = %v, want [%v %v]", phases, PhaseForces, PhasePredation)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		p    Phase
		want string
	}{
		{PhaseForces, "forces"},
		{PhaseTelemetry, "telemetry"},
		{NumPhases, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
