package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/sonar/sonar"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	mean, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	if math.Abs(p10-1.9) > 0.01 {
		t.Errorf("p10 = %v, want ~1.9", p10)
	}
	if math.Abs(p50-5.5) > 0.01 {
		t.Errorf("p50 = %v, want ~5.5", p50)
	}
	if math.Abs(p90-9.1) > 0.01 {
		t.Errorf("p90 = %v, want ~9.1", p90)
	}
	// Input must not be reordered
	if values[0] != 10 {
		t.Error("ComputeDistribution sorted its input in place")
	}
}

func TestComputeDistributionEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeDistribution([]float64{})

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector("run", 1.0, 0.25) // 4 ticks per window
	if c.WindowDurationTicks() != 4 {
		t.Fatalf("ticks per window = %d, want 4", c.WindowDurationTicks())
	}

	tick := int32(0)
	for i := 0; i < 4; i++ {
		c.Record(sonar.TickStats{
			Mode:    sonar.ModeActive,
			Powered: i != 0,
			Sweep: sonar.SweepStats{
				Samples:     10,
				Accepted:    6,
				Occluded:    2,
				ContactHits: 1,
			},
			NoiseBlips: 2,
			Blips:      (i + 1) * 10,
			Pings:      3,
		})
		tick++
		if i < 3 && c.ShouldFlush(tick) {
			t.Fatalf("flush requested after %d ticks", tick)
		}
	}
	if !c.ShouldFlush(tick) {
		t.Fatal("flush not requested at window end")
	}

	s := c.Flush(tick)
	if s.Session != "run" || s.Mode != "active" || s.Pings != 3 {
		t.Errorf("window header = %q %q %d", s.Session, s.Mode, s.Pings)
	}
	if s.Samples != 40 || s.Accepted != 24 || s.ContactHits != 4 || s.NoiseBlips != 8 {
		t.Errorf("counters = %+v", s)
	}
	if math.Abs(s.AcceptRate-0.6) > 1e-9 || math.Abs(s.OcclusionRate-0.2) > 1e-9 {
		t.Errorf("rates = %v, %v", s.AcceptRate, s.OcclusionRate)
	}
	if s.BlipsMean != 25 {
		t.Errorf("blips mean = %v, want 25", s.BlipsMean)
	}
	if s.UnpoweredTicks != 1 {
		t.Errorf("unpowered ticks = %d, want 1", s.UnpoweredTicks)
	}
	if math.Abs(s.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("sim time = %v, want 1", s.SimTimeSec)
	}

	// Counters reset for the next window
	next := c.Flush(tick + 4)
	if next.Samples != 0 || next.BlipsMean != 0 || next.WindowStartTick != tick {
		t.Errorf("window not reset: %+v", next)
	}
}
