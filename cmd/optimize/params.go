package main

import (
	"math/rand"

	"github.com/pthm-cable/flock/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the prey steering weights searched by the optimizer.
// Predator behavior stays as configured.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "prey_alignment", Path: "prey.alignment", Min: 0, Max: 15, Default: 1.0},
			{Name: "prey_attraction", Path: "prey.attraction", Min: -5, Max: 5, Default: 1.0},
			{Name: "prey_repulsion", Path: "prey.repulsion", Min: 0, Max: 15, Default: 0.4},
			{Name: "prey_evasion", Path: "prey.cross_alignment", Min: 0, Max: 10, Default: 1.0},
			{Name: "prey_flee", Path: "prey.cross_repulsion", Min: 0, Max: 10, Default: 1.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Names returns the parameter names in vector order.
func (pv *ParamVector) Names() []string {
	names := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		names[i] = spec.Name
	}
	return names
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Sample draws a vector uniformly from the parameter box.
func (pv *ParamVector) Sample(rng *rand.Rand) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Min + rng.Float64()*(spec.Max-spec.Min)
	}
	return v
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Prey.Alignment = clamped[0]
	cfg.Prey.Attraction = clamped[1]
	cfg.Prey.Repulsion = clamped[2]
	cfg.Prey.CrossAlignment = clamped[3]
	cfg.Prey.CrossRepulsion = clamped[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Prey.Alignment,
		cfg.Prey.Attraction,
		cfg.Prey.Repulsion,
		cfg.Prey.CrossAlignment,
		cfg.Prey.CrossRepulsion,
	}
}
