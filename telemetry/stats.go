package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated sonar statistics for a time window.
type WindowStats struct {
	Session         string  `csv:"session"`
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// State at window end
	Mode  string `csv:"mode"`
	Pings int    `csv:"pings"`

	// Sweep counters during window
	Segments    int `csv:"segments"`
	Culled      int `csv:"culled"`
	Degenerate  int `csv:"degenerate"`
	Samples     int `csv:"samples"`
	Accepted    int `csv:"accepted"`
	Occluded    int `csv:"occluded"`
	Deduped     int `csv:"deduped"`
	Rejected    int `csv:"rejected"`
	ContactHits int `csv:"contact_hits"`
	SourceHits  int `csv:"source_hits"`

	// Blip sources during window
	SweepBlips int `csv:"sweep_blips"`
	NoiseBlips int `csv:"noise_blips"`
	FlowBlips  int `csv:"flow_blips"`
	Filtered   int `csv:"filtered"`

	AcceptRate    float64 `csv:"accept_rate"`
	OcclusionRate float64 `csv:"occlusion_rate"`

	// Live blip count distribution (sampled every tick)
	BlipsMean float64 `csv:"blips_mean"`
	BlipsP10  float64 `csv:"blips_p10"`
	BlipsP50  float64 `csv:"blips_p50"`
	BlipsP90  float64 `csv:"blips_p90"`

	DisruptionMean float64 `csv:"disruption_samples_mean"`
	UnpoweredTicks int     `csv:"unpowered_ticks"`
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

// ComputeDistribution calculates mean and percentiles of values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("mode", s.Mode),
		slog.Int("pings", s.Pings),
		slog.Int("segments", s.Segments),
		slog.Int("samples", s.Samples),
		slog.Int("accepted", s.Accepted),
		slog.Int("occluded", s.Occluded),
		slog.Int("deduped", s.Deduped),
		slog.Int("contact_hits", s.ContactHits),
		slog.Int("source_hits", s.SourceHits),
		slog.Int("noise_blips", s.NoiseBlips),
		slog.Int("flow_blips", s.FlowBlips),
		slog.Float64("accept_rate", s.AcceptRate),
		slog.Float64("occlusion_rate", s.OcclusionRate),
		slog.Float64("blips_mean", s.BlipsMean),
		slog.Float64("blips_p90", s.BlipsP90),
		slog.Int("unpowered_ticks", s.UnpoweredTicks),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
