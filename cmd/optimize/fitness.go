package main

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sim"
	"github.com/pthm-cable/flock/telemetry"
)

// FitnessEvaluator runs headless simulations and scores parameter vectors.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	evals       int
	bestFitness float64
	bestParams  []float64
}

// EvalResult is the outcome of one parameter vector over every seed.
type EvalResult struct {
	Params       []float64 // clamped values actually simulated
	Fitness      float64   // lower is better
	PropDead     float64   // mean final proportion of prey killed
	PropDeadStd  float64
	Polarization float64 // mean final polarization of surviving prey
	Failed       int     // seeds whose simulation could not be built
}

// seedResult holds the result from one seed.
type seedResult struct {
	propDead     float64
	polarization float64
	err          error
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// evalSeeds returns n fixed seeds so every evaluation sees the same initial states.
func evalSeeds(n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	return seeds
}

// Evaluate runs all seeds in parallel for raw parameter vector x.
// Fitness is the mean final proportion of prey killed.
func (fe *FitnessEvaluator) Evaluate(x []float64) EvalResult {
	clamped := fe.params.Clamp(x)
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, clamped)
	cfg.Recompute()

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = runSeed(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	res := EvalResult{Params: clamped}
	var dead, pol []float64
	for _, r := range results {
		if r.err != nil {
			res.Failed++
			continue
		}
		dead = append(dead, r.propDead)
		pol = append(pol, r.polarization)
	}

	if len(dead) == 0 {
		// Nothing ran: the worst possible outcome
		res.Fitness, res.PropDead = 1, 1
	} else {
		res.PropDead = stat.Mean(dead, nil)
		res.Polarization = stat.Mean(pol, nil)
		if len(dead) > 1 {
			res.PropDeadStd = stat.StdDev(dead, nil)
		}
		res.Fitness = res.PropDead
	}

	fe.mu.Lock()
	fe.evals++
	if res.Fitness < fe.bestFitness {
		fe.bestFitness = res.Fitness
		fe.bestParams = clamped
	}
	fe.mu.Unlock()

	return res
}

// Best returns the best fitness seen so far and its parameters.
func (fe *FitnessEvaluator) Best() (float64, []float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestFitness, fe.bestParams
}

// Evals returns the number of completed evaluations.
func (fe *FitnessEvaluator) Evals() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.evals
}

// runSeed runs one complete simulation.
func runSeed(cfg *config.Config, seed int64) seedResult {
	simCfg, err := sim.ConfigFrom(cfg)
	if err != nil {
		return seedResult{err: err}
	}
	s, err := sim.Build(simCfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return seedResult{err: err}
	}
	s.Run()

	return seedResult{
		propDead:     s.ProportionDead(),
		polarization: finalPolarization(s),
	}
}

// finalPolarization is the order parameter of the prey still alive.
func finalPolarization(s *sim.Simulation) float64 {
	var vels []r2.Vec
	for _, a := range s.Agents(nil) {
		if a.Kind == components.KindPrey && a.Alive() {
			vels = append(vels, a.Velocity)
		}
	}
	return telemetry.Polarization(vels)
}
