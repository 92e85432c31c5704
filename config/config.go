// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen" toml:"screen"`
	World      WorldConfig      `yaml:"world" toml:"world"`
	Clock      ClockConfig      `yaml:"clock" toml:"clock"`
	Population PopulationConfig `yaml:"population" toml:"population"`
	Prey       SpeciesConfig    `yaml:"prey" toml:"prey"`
	Predator   SpeciesConfig    `yaml:"predator" toml:"predator"`
	Predation  PredationConfig  `yaml:"predation" toml:"predation"`
	Noise      NoiseConfig      `yaml:"noise" toml:"noise"`
	History    HistoryConfig    `yaml:"history" toml:"history"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" toml:"telemetry"`
	Stream     StreamConfig     `yaml:"stream" toml:"stream"`
	Optimize   OptimizeConfig   `yaml:"optimize" toml:"optimize"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width         int `yaml:"width" toml:"width"`
	Height        int `yaml:"height" toml:"height"`
	TargetFPS     int `yaml:"target_fps" toml:"target_fps"`
	StepsPerFrame int `yaml:"steps_per_frame" toml:"steps_per_frame"` // Simulation ticks per rendered frame at 1x
}

// WorldConfig holds the domain geometry.
type WorldConfig struct {
	Length    float64 `yaml:"length" toml:"length"`         // Side of the square domain
	Boundary  string  `yaml:"boundary" toml:"boundary"`     // periodic, hard or soft
	SoftRange float64 `yaml:"soft_range" toml:"soft_range"` // Width of the soft boundary band
}

// ClockConfig holds time stepping parameters.
type ClockConfig struct {
	DT      float64 `yaml:"dt" toml:"dt"`
	EndTime float64 `yaml:"end_time" toml:"end_time"`
}

// PopulationConfig holds initial agent counts.
type PopulationConfig struct {
	Prey      int `yaml:"prey" toml:"prey"`
	Predators int `yaml:"predators" toml:"predators"`
}

// SpeciesConfig holds the behavioral parameters of one species.
// "Cross" weights apply to neighbors of the other species.
type SpeciesConfig struct {
	VisionRadius    float64 `yaml:"vision_radius" toml:"vision_radius"`
	Alignment       float64 `yaml:"alignment" toml:"alignment"`
	Attraction      float64 `yaml:"attraction" toml:"attraction"`
	Repulsion       float64 `yaml:"repulsion" toml:"repulsion"`
	CrossAlignment  float64 `yaml:"cross_alignment" toml:"cross_alignment"`
	CrossAttraction float64 `yaml:"cross_attraction" toml:"cross_attraction"`
	CrossRepulsion  float64 `yaml:"cross_repulsion" toml:"cross_repulsion"`
	MaxAcceleration float64 `yaml:"max_acceleration" toml:"max_acceleration"`
	MaxVelocity     float64 `yaml:"max_velocity" toml:"max_velocity"`
	Boundary        float64 `yaml:"boundary" toml:"boundary"`           // Soft boundary coupling weight
	KillCooldown    float64 `yaml:"kill_cooldown" toml:"kill_cooldown"` // Predators only
}

// PredationConfig holds kill rule parameters.
type PredationConfig struct {
	StrikeDistance  float64 `yaml:"strike_distance" toml:"strike_distance"`
	EnforceCooldown bool    `yaml:"enforce_cooldown" toml:"enforce_cooldown"`
}

// NoiseConfig holds sensor noise parameters.
type NoiseConfig struct {
	Sigma float64 `yaml:"sigma" toml:"sigma"` // Per-axis standard deviation of force noise
}

// HistoryConfig holds per-agent trajectory storage settings.
type HistoryConfig struct {
	Capacity int `yaml:"capacity" toml:"capacity"` // 0 keeps the full trajectory
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow    float64 `yaml:"stats_window" toml:"stats_window"`         // Seconds per stats window
	GroupEps       float64 `yaml:"group_eps" toml:"group_eps"`               // DBSCAN neighborhood radius
	GroupMinPoints int     `yaml:"group_min_points" toml:"group_min_points"` // DBSCAN core size
	PositionsEvery int     `yaml:"positions_every" toml:"positions_every"`   // Ticks between positions.csv samples, 0 disables
	PerfWindow     int     `yaml:"perf_window" toml:"perf_window"`           // Ticks in the perf rolling window
}

// StreamConfig holds snapshot streaming settings.
type StreamConfig struct {
	Addr string  `yaml:"addr" toml:"addr"`
	Rate float64 `yaml:"rate" toml:"rate"` // Snapshots per second
}

// OptimizeConfig holds parameter search settings.
type OptimizeConfig struct {
	Seeds        int     `yaml:"seeds" toml:"seeds"`                 // Simulations averaged per evaluation
	MaxEvals     int     `yaml:"max_evals" toml:"max_evals"`         // Nelder-Mead evaluation budget
	ABCSamples   int     `yaml:"abc_samples" toml:"abc_samples"`     // Candidate draws for ABC
	ABCTolerance float64 `yaml:"abc_tolerance" toml:"abc_tolerance"` // Accept distance
	ABCTarget    float64 `yaml:"abc_target" toml:"abc_target"`       // Observed final proportion dead
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	VisionRatio      int // ceil(predator vision / prey vision)
	NumCells         int // Grid cells per axis
	StatsWindowTicks int
}

var global *Config

// Init loads configuration from the given path (or uses embedded defaults if empty).
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML or TOML file, merging with embedded defaults.
// The format is chosen by extension (.toml, anything else is YAML).
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Decode into the same struct: only fields present in the file are overwritten
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing toml config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Recompute refreshes derived values after fields were edited in place.
func (c *Config) Recompute() {
	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.VisionRatio = 1
	if c.Prey.VisionRadius > 0 && c.Predator.VisionRadius > 0 {
		c.Derived.VisionRatio = int(math.Ceil(c.Predator.VisionRadius / c.Prey.VisionRadius))
	}

	c.Derived.NumCells = 1
	if c.Prey.VisionRadius > 0 {
		c.Derived.NumCells = max(1, int(math.Floor(c.World.Length/c.Prey.VisionRadius)))
	}

	c.Derived.StatsWindowTicks = 1
	if c.Clock.DT > 0 && c.Telemetry.StatsWindow > 0 {
		c.Derived.StatsWindowTicks = max(1, int(math.Round(c.Telemetry.StatsWindow/c.Clock.DT)))
	}

	if c.Screen.StepsPerFrame < 1 {
		c.Screen.StepsPerFrame = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
