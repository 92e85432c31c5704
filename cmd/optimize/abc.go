package main

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// ABCOptions controls rejection sampling.
type ABCOptions struct {
	Samples   int
	Target    float64 // observed final proportion dead
	Tolerance float64 // accept when |prop_dead - Target| <= Tolerance
}

// ABCResult summarizes an approximate Bayesian computation run.
type ABCResult struct {
	Samples   int
	Accepted  [][]float64 // accepted parameter vectors, in draw order
	Best      []float64   // closest draw, accepted or not
	BestDist  float64
	Posterior []float64 // per-parameter mean of the accepted draws
}

// AcceptanceRate is the fraction of draws that were accepted.
func (r ABCResult) AcceptanceRate() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(len(r.Accepted)) / float64(r.Samples)
}

// runABC draws prey weights uniformly from the parameter box and keeps those
// whose simulated proportion dead lands within the tolerance of the target.
// record is called for every draw; a non-nil error stops the run.
func runABC(ctx context.Context, ev *FitnessEvaluator, opts ABCOptions, rng *rand.Rand,
	record func(dist float64, accepted bool, res EvalResult) error) (ABCResult, error) {

	out := ABCResult{BestDist: math.Inf(1)}
	for i := 0; i < opts.Samples; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		x := ev.params.Sample(rng)
		res := ev.Evaluate(x)
		dist := math.Abs(res.PropDead - opts.Target)
		accepted := res.Failed == 0 && dist <= opts.Tolerance

		out.Samples++
		if accepted {
			out.Accepted = append(out.Accepted, res.Params)
		}
		if dist < out.BestDist {
			out.BestDist = dist
			out.Best = res.Params
		}
		if record != nil {
			if err := record(dist, accepted, res); err != nil {
				return out, err
			}
		}
	}

	if len(out.Accepted) > 0 {
		out.Posterior = make([]float64, ev.params.Dim())
		col := make([]float64, len(out.Accepted))
		for d := range out.Posterior {
			for i, p := range out.Accepted {
				col[i] = p[d]
			}
			out.Posterior[d] = stat.Mean(col, nil)
		}
	}
	return out, nil
}
