package telemetry

import "github.com/pthm-cable/sonar/sonar"

// Collector accumulates per-tick sonar statistics within time windows and
// produces WindowStats.
type Collector struct {
	session             string
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	sweep      sonar.SweepStats
	noiseBlips int
	flowBlips  int
	filtered   int
	unpowered  int
	blipCounts []float64
	disruption []float64
	lastMode   sonar.Mode
	lastPings  int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(session string, windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		session:             session,
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds one tick's controller statistics to the current window.
func (c *Collector) Record(s sonar.TickStats) {
	c.sweep.Add(s.Sweep)
	c.noiseBlips += s.NoiseBlips
	c.flowBlips += s.FlowBlips
	c.filtered += s.Filtered
	if !s.Powered {
		c.unpowered++
	}
	c.blipCounts = append(c.blipCounts, float64(s.Blips))
	c.disruption = append(c.disruption, float64(s.Disruption))
	c.lastMode = s.Mode
	c.lastPings = s.Pings
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32) WindowStats {
	var acceptRate, occlusionRate float64
	if c.sweep.Samples > 0 {
		acceptRate = float64(c.sweep.Accepted) / float64(c.sweep.Samples)
		occlusionRate = float64(c.sweep.Occluded) / float64(c.sweep.Samples)
	}

	blipsMean, blipsP10, blipsP50, blipsP90 := ComputeDistribution(c.blipCounts)
	disruptionMean, _, _, _ := ComputeDistribution(c.disruption)

	stats := WindowStats{
		Session:         c.session,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Mode:  c.lastMode.String(),
		Pings: c.lastPings,

		Segments:    c.sweep.Segments,
		Culled:      c.sweep.Culled,
		Degenerate:  c.sweep.Degenerate,
		Samples:     c.sweep.Samples,
		Accepted:    c.sweep.Accepted,
		Occluded:    c.sweep.Occluded,
		Deduped:     c.sweep.Deduped,
		Rejected:    c.sweep.Rejected,
		ContactHits: c.sweep.ContactHits,
		SourceHits:  c.sweep.SourceHits,

		SweepBlips: c.sweep.Blips,
		NoiseBlips: c.noiseBlips,
		FlowBlips:  c.flowBlips,
		Filtered:   c.filtered,

		AcceptRate:    acceptRate,
		OcclusionRate: occlusionRate,

		BlipsMean: blipsMean,
		BlipsP10:  blipsP10,
		BlipsP50:  blipsP50,
		BlipsP90:  blipsP90,

		DisruptionMean: disruptionMean,
		UnpoweredTicks: c.unpowered,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.sweep = sonar.SweepStats{}
	c.noiseBlips = 0
	c.flowBlips = 0
	c.filtered = 0
	c.unpowered = 0
	c.blipCounts = c.blipCounts[:0]
	c.disruption = c.disruption[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
