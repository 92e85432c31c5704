package components

import "github.com/pthm-cable/flock/config"

// SpeciesParams are the per-species steering parameters.
// Same-species weights act on neighbors of the same kind, Cross weights on the other kind.
type SpeciesParams struct {
	VisionRadius    float64
	Alignment       float64
	Attraction      float64
	Repulsion       float64
	CrossAlignment  float64
	CrossAttraction float64
	CrossRepulsion  float64
	MaxAcceleration float64
	MaxVelocity     float64
	Boundary        float64 // soft boundary coupling weight
	KillCooldown    float64 // seconds between kills (predators)
}

// ParamsFromConfig converts a species config section into parameters.
func ParamsFromConfig(c *config.SpeciesConfig) SpeciesParams {
	return SpeciesParams{
		VisionRadius:    c.VisionRadius,
		Alignment:       c.Alignment,
		Attraction:      c.Attraction,
		Repulsion:       c.Repulsion,
		CrossAlignment:  c.CrossAlignment,
		CrossAttraction: c.CrossAttraction,
		CrossRepulsion:  c.CrossRepulsion,
		MaxAcceleration: c.MaxAcceleration,
		MaxVelocity:     c.MaxVelocity,
		Boundary:        c.Boundary,
		KillCooldown:    c.KillCooldown,
	}
}

// ToConfig converts parameters back to their config form.
func (p SpeciesParams) ToConfig() config.SpeciesConfig {
	return config.SpeciesConfig{
		VisionRadius:    p.VisionRadius,
		Alignment:       p.Alignment,
		Attraction:      p.Attraction,
		Repulsion:       p.Repulsion,
		CrossAlignment:  p.CrossAlignment,
		CrossAttraction: p.CrossAttraction,
		CrossRepulsion:  p.CrossRepulsion,
		MaxAcceleration: p.MaxAcceleration,
		MaxVelocity:     p.MaxVelocity,
		Boundary:        p.Boundary,
		KillCooldown:    p.KillCooldown,
	}
}
