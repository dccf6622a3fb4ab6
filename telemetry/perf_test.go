package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseEntities)
		time.Sleep(20 * time.Microsecond)
		pc.StartPhase(PhaseSonar)
		time.Sleep(300 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 || stats.TicksPerSecond <= 0 {
		t.Fatalf("no tick timing: %+v", stats)
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v / avg %v / max %v out of order", stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
	if stats.PhaseAvg[PhaseEntities] <= 0 || stats.PhaseAvg[PhaseSonar] <= 0 {
		t.Errorf("phases not tracked: %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseNet] != 0 {
		t.Errorf("untimed phase has %v", stats.PhaseAvg[PhaseNet])
	}
	if stats.PhasePct[PhaseSonar] <= stats.PhasePct[PhaseEntities] {
		t.Errorf("sonar %.1f%% should exceed entities %.1f%%", stats.PhasePct[PhaseSonar], stats.PhasePct[PhaseEntities])
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseEntities)
		pc.EndTick()
	}
	if pc.filled != 5 {
		t.Errorf("filled = %d, want window size 5", pc.filled)
	}
	if stats := pc.Stats(); stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 || stats.FPS != 0 {
		t.Errorf("empty collector = %+v", stats)
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("frame duration = %v, want >= 15ms", stats.FrameDuration)
	}
	if stats.FPS < 10 || stats.FPS > 70 {
		t.Errorf("FPS = %v for a ~16ms frame", stats.FPS)
	}
}

func TestPhaseNames(t *testing.T) {
	want := []string{"input", "entities", "sonar", "net", "telemetry"}
	phases := Phases()
	if len(phases) != len(want) {
		t.Fatalf("Phases() = %v", phases)
	}
	for i, ph := range phases {
		if ph.String() != want[i] {
			t.Errorf("phase %d = %q, want %q", i, ph, want[i])
		}
	}
	if Phase(200).String() != "unknown" {
		t.Error("out of range phase should be unknown")
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var stats PerfStats
	stats.AvgTickDuration = 2 * time.Millisecond
	stats.PhasePct[PhaseSonar] = 70
	stats.PhasePct[PhaseEntities] = 20

	row := stats.ToCSV(600)
	if row.WindowEnd != 600 {
		t.Errorf("window_end = %d, want 600", row.WindowEnd)
	}
	if row.AvgTickUS != 2000 {
		t.Errorf("avg_tick_us = %d, want 2000", row.AvgTickUS)
	}
	if row.SonarPct != 70 || row.EntitiesPct != 20 || row.NetPct != 0 {
		t.Errorf("phase pct = %+v", row)
	}
}
