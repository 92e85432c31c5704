package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	PreyCount int     `csv:"prey"`
	PredCount int     `csv:"pred"`
	PropDead  float64 `csv:"prop_dead"`

	// Kills during window
	Kills    int     `csv:"kills"`
	KillRate float64 `csv:"kill_rate"` // kills per simulated second

	// Collective motion of living prey (sampled at window end)
	Polarization  float64 `csv:"polarization"`
	PreySpeedMean float64 `csv:"prey_speed_mean"`
	PreySpeedStd  float64 `csv:"prey_speed_std"`
	PreySpeedP10  float64 `csv:"prey_speed_p10"`
	PreySpeedP50  float64 `csv:"prey_speed_p50"`
	PreySpeedP90  float64 `csv:"prey_speed_p90"`
	PredSpeedMean float64 `csv:"pred_speed_mean"`

	// Flock structure
	Groups       int `csv:"groups"`
	LargestGroup int `csv:"largest_group"`
	Stragglers   int `csv:"stragglers"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, population standard deviation and
// percentiles of speed values.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("prey", s.PreyCount),
		slog.Int("pred", s.PredCount),
		slog.Float64("prop_dead", s.PropDead),
		slog.Int("kills", s.Kills),
		slog.Float64("kill_rate", s.KillRate),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("prey_speed_mean", s.PreySpeedMean),
		slog.Float64("prey_speed_std", s.PreySpeedStd),
		slog.Float64("prey_speed_p10", s.PreySpeedP10),
		slog.Float64("prey_speed_p50", s.PreySpeedP50),
		slog.Float64("prey_speed_p90", s.PreySpeedP90),
		slog.Float64("pred_speed_mean", s.PredSpeedMean),
		slog.Int("groups", s.Groups),
		slog.Int("largest_group", s.LargestGroup),
		slog.Int("stragglers", s.Stragglers),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"prey", s.PreyCount,
		"pred", s.PredCount,
		"prop_dead", s.PropDead,
		"kills", s.Kills,
		"polarization", s.Polarization,
		"prey_speed_mean", s.PreySpeedMean,
		"pred_speed_mean", s.PredSpeedMean,
		"groups", s.Groups,
		"largest_group", s.LargestGroup,
	)
}
