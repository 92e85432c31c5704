// Package game is the interactive viewer. It owns a simulation, steps it once
// per frame and draws it through the camera. Parameter edits rebuild the
// simulation instead of changing the running one.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/sim"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/ui"
)

const (
	maxStepsPerFrame = 20
	trailLength      = 60
	flashFrames      = 30
)

// Game holds the viewer state.
type Game struct {
	opts     Options
	cfg      *config.Config // edited by the params panel
	base     *config.Config // startup config, restored by Reset
	seed     int64
	boundary systems.Boundary // survives rebuilds once swapped

	sim  *sim.Simulation
	perf *telemetry.PerfCollector

	// Rendering
	camera  *camera.Camera
	agents  *renderer.AgentRenderer
	domain  *renderer.DomainRenderer
	trails  *renderer.TrailRenderer
	flashes *renderer.ParticleRenderer

	// UI
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	controls   *ui.ControlsPanel
	quickStats *ui.QuickStatsPanel
	params     *ui.ParamsPanel
	inspector  *ui.Inspector
	overlays   *ui.OverlayRegistry

	drawPerf  *PerfStats
	views     []sim.AgentView
	tail      []r2.Vec
	lastStats telemetry.WindowStats
	hasStats  bool

	paused        bool
	stepsPerFrame int
	selected      int // -1 when nothing is selected
	needsRebuild  bool
	frame         int

	screenWidth, screenHeight float32
}

// New builds the first simulation and the viewer around it. The raylib
// window must already be open.
func New(opts Options) (*Game, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("game: nil config")
	}
	if opts.Title == "" {
		opts.Title = "Flock"
	}
	boundary, err := systems.ParseBoundary(opts.Config.World.Boundary, opts.Config.World.SoftRange)
	if err != nil {
		return nil, err
	}

	w, h := opts.screenSize()
	g := &Game{
		opts:          opts,
		cfg:           opts.Config.Clone(),
		base:          opts.Config.Clone(),
		seed:          opts.Seed,
		boundary:      boundary,
		agents:        renderer.NewAgentRenderer(),
		domain:        renderer.NewDomainRenderer(),
		trails:        renderer.NewTrailRenderer(trailLength),
		flashes:       renderer.NewParticleRenderer(flashFrames),
		hud:           ui.NewHUD(),
		perfPanel:     ui.NewPerfPanel(10, 130),
		controls:      ui.NewControlsPanel(10, 130, 200),
		quickStats:    ui.NewQuickStatsPanel(10, int32(h)-150, 200),
		params:        ui.NewParamsPanel(int32(w)-330, 10, 320),
		inspector:     ui.NewInspector(230),
		overlays:      ui.NewOverlayRegistry(),
		drawPerf:      NewPerfStats(opts.Config.Telemetry.PerfWindow),
		stepsPerFrame: opts.Config.Screen.StepsPerFrame,
		selected:      -1,
		screenWidth:   float32(w),
		screenHeight:  float32(h),
	}
	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(g.cfg.World.Length), boundary.Kind == systems.BoundaryPeriodic)

	if err := g.rebuild(); err != nil {
		return nil, err
	}
	return g, nil
}

// rebuild replaces the simulation with a fresh one built from the current
// config, seed and boundary.
func (g *Game) rebuild() error {
	cfg, err := sim.ConfigFrom(g.cfg)
	if err != nil {
		return err
	}
	cfg.Boundary = g.boundary

	s, err := sim.Build(cfg, rand.New(rand.NewSource(g.seed)))
	if err != nil {
		return err
	}
	g.sim = s
	g.perf = s.EnablePerf(g.cfg.Telemetry.PerfWindow)
	g.attachTelemetry()

	g.selected = -1
	g.flashes.Clear()
	g.camera.Length = float32(cfg.Length)
	g.camera.SetWrap(cfg.Boundary.Kind == systems.BoundaryPeriodic)

	slog.Info("simulation built",
		"seed", g.seed,
		"prey", cfg.PreyCount,
		"predators", cfg.PredatorCount,
		"boundary", cfg.Boundary.String(),
	)
	return nil
}

// Update advances the viewer by one frame.
func (g *Game) Update() {
	g.handleInput()

	if g.needsRebuild {
		g.needsRebuild = false
		if err := g.rebuild(); err != nil {
			slog.Error("rebuild failed", "error", err)
		}
	}

	g.flashes.Update()
	if !g.paused {
		for i := 0; i < g.stepsPerFrame && !g.sim.Done(); i++ {
			g.sim.Step()
			g.flashes.Spawn(g.sim.Kills())
		}
	}
	g.perf.RecordFrame()

	g.views = g.sim.Agents(g.views[:0])
	g.frame++
	if g.overlays.IsEnabled(ui.OverlayPerf) && g.frame%600 == 0 {
		g.logPerfStats()
	}
}

// Run opens the main loop until the window is closed.
func (g *Game) Run() {
	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
}

// swapBoundary cycles the boundary policy on the running simulation.
func (g *Game) swapBoundary() {
	g.boundary = g.sim.Boundary().Swap()
	g.sim.SetBoundary(g.boundary)
	g.camera.SetWrap(g.boundary.Kind == systems.BoundaryPeriodic)
	slog.Info("boundary swapped", "boundary", g.boundary.String())
}

// reseed rebuilds with the next seed.
func (g *Game) reseed() {
	g.seed++
	g.needsRebuild = true
}

// resetParams restores the startup parameters and rebuilds.
func (g *Game) resetParams() {
	g.cfg = g.base.Clone()
	g.needsRebuild = true
}

// Simulation returns the running simulation.
func (g *Game) Simulation() *sim.Simulation {
	return g.sim
}

// Unload releases viewer resources. The window itself is closed by the caller.
func (g *Game) Unload() {
	g.views = nil
	g.tail = nil
}
