package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
)

// ErrInvalidConfig is returned by Build when the configuration cannot produce a world.
var ErrInvalidConfig = systems.ErrInvalidConfig

// InitialState fixes an agent's starting position and velocity.
type InitialState struct {
	Pos r2.Vec
	Vel r2.Vec
}

// Config is everything needed to construct a Simulation.
type Config struct {
	Prey          components.SpeciesParams
	Predator      components.SpeciesParams
	PreyCount     int
	PredatorCount int

	Length   float64
	Boundary systems.Boundary

	Dt      float64
	EndTime float64

	NoiseSigma      float64 // per-axis force noise, 0 disables
	StrikeDistance  float64 // 0 means systems.DefaultStrikeDistance
	EnforceCooldown bool
	HistoryCapacity int // 0 keeps full trajectories

	// Initial overrides random placement when set. Prey come first, then
	// predators, and the length must match the total agent count.
	Initial []InitialState
}

// ConfigFrom converts loaded configuration into a simulation config.
func ConfigFrom(cfg *config.Config) (Config, error) {
	b, err := systems.ParseBoundary(cfg.World.Boundary, cfg.World.SoftRange)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Prey:            components.ParamsFromConfig(&cfg.Prey),
		Predator:        components.ParamsFromConfig(&cfg.Predator),
		PreyCount:       cfg.Population.Prey,
		PredatorCount:   cfg.Population.Predators,
		Length:          cfg.World.Length,
		Boundary:        b,
		Dt:              cfg.Clock.DT,
		EndTime:         cfg.Clock.EndTime,
		NoiseSigma:      cfg.Noise.Sigma,
		StrikeDistance:  cfg.Predation.StrikeDistance,
		EnforceCooldown: cfg.Predation.EnforceCooldown,
		HistoryCapacity: cfg.History.Capacity,
	}, nil
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if !(c.Length > 0) {
		return fmt.Errorf("domain length %v must be positive: %w", c.Length, ErrInvalidConfig)
	}
	species := []struct {
		name string
		p    components.SpeciesParams
	}{
		{"prey", c.Prey},
		{"predator", c.Predator},
	}
	for _, s := range species {
		if !(s.p.VisionRadius > 0) || s.p.VisionRadius > c.Length {
			return fmt.Errorf("%s vision radius %v must be in (0, %v]: %w", s.name, s.p.VisionRadius, c.Length, ErrInvalidConfig)
		}
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("time step %v must be positive: %w", c.Dt, ErrInvalidConfig)
	}
	if c.PreyCount < 0 || c.PredatorCount < 0 {
		return fmt.Errorf("agent counts %d/%d must not be negative: %w", c.PreyCount, c.PredatorCount, ErrInvalidConfig)
	}
	if c.Initial != nil && len(c.Initial) != c.PreyCount+c.PredatorCount {
		return fmt.Errorf("%d initial states for %d agents: %w", len(c.Initial), c.PreyCount+c.PredatorCount, ErrInvalidConfig)
	}
	if c.NoiseSigma < 0 || c.StrikeDistance < 0 {
		return fmt.Errorf("noise %v and strike distance %v must not be negative: %w", c.NoiseSigma, c.StrikeDistance, ErrInvalidConfig)
	}
	return nil
}
