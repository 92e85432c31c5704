package telemetry

import "gonum.org/v1/gonum/spatial/r2"

// stationary is the speed below which an agent has no heading.
const stationary = 1e-6

// Polarization returns |Σ v̂| / N over the given velocities. Stationary agents
// count towards N but contribute no heading. 1 means perfectly aligned motion.
func Polarization(vels []r2.Vec) float64 {
	if len(vels) == 0 {
		return 0
	}
	var sum r2.Vec
	for _, v := range vels {
		if r2.Norm(v) > stationary {
			sum = r2.Add(sum, r2.Unit(v))
		}
	}
	return r2.Norm(sum) / float64(len(vels))
}

// Speeds returns the magnitude of each velocity.
func Speeds(vels []r2.Vec) []float64 {
	out := make([]float64, len(vels))
	for i, v := range vels {
		out[i] = r2.Norm(v)
	}
	return out
}

// PreyAliveTimeline returns the number of living prey at every tick in
// [0, numTicks), given the death tick of each dead prey.
func PreyAliveTimeline(numPrey int, deathTicks []int, numTicks int) []int {
	deaths := make([]int, numTicks+1)
	for _, t := range deathTicks {
		if t >= 0 && t < numTicks {
			deaths[t]++
		}
	}
	out := make([]int, numTicks)
	alive := numPrey
	for t := 0; t < numTicks; t++ {
		alive -= deaths[t]
		out[t] = alive
	}
	return out
}
