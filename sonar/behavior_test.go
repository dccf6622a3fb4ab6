package sonar

import (
	"math"
	"testing"
)

func TestBehaviorActiveResetsOnWrap(t *testing.T) {
	var b Behavior
	b.SetMode(ModeActive)

	want := []SweepState{
		{Previous: 0, Current: 300},
		{Previous: 300, Current: 600},
		{Previous: 600, Current: 900},
		{Previous: 0, Current: 200}, // wrapped: restart instead of jumping
	}
	for i, w := range want {
		got := b.AdvanceActive(0.3, 1, 1000, 1)
		if math.Abs(got.Previous-w.Previous) > 1e-6 || math.Abs(got.Current-w.Current) > 1e-6 {
			t.Errorf("step %d: shell = %+v, want %+v", i, got, w)
		}
	}
	if b.Pings() != 2 {
		t.Errorf("Pings = %d, want 2", b.Pings())
	}
}

func TestBehaviorEnteringActiveResets(t *testing.T) {
	var b Behavior
	b.SetMode(ModeActive)
	b.AdvanceActive(0.5, 1, 1000, 1)

	b.SetMode(ModePassive)
	b.SetMode(ModeActive)
	if b.PingFraction() != 0 {
		t.Errorf("PingFraction = %v after re-entering active", b.PingFraction())
	}
	got := b.AdvanceActive(0.1, 1, 1000, 1)
	if got.Previous != 0 || math.Abs(got.Current-100) > 1e-6 {
		t.Errorf("shell after reset = %+v, want {0 100}", got)
	}
}

func TestBehaviorZoomShrinksRadius(t *testing.T) {
	var b Behavior
	b.SetMode(ModeActive)
	got := b.AdvanceActive(0.5, 1, 1000, 2)
	if math.Abs(got.Current-250) > 1e-6 {
		t.Errorf("Current = %v, want 250 at zoom 2", got.Current)
	}
}

func TestBehaviorPassiveResetsWhenSilent(t *testing.T) {
	var b Behavior
	b.SetMode(ModePassive)

	got := b.AdvancePassive(1.5, 1, 1000, 1)
	if got.Previous != 0 || math.Abs(got.Current-1000*math.Sin(1.5)) > 1e-6 {
		t.Fatalf("rising shell = %+v", got)
	}

	// sin falls after pi/2: the shell holds and reveals nothing new
	got = b.AdvancePassive(1, 1, 1000, 1)
	if got.Current > got.Previous {
		t.Errorf("falling shell should be empty, got %+v", got)
	}

	// past pi the sine is negative and the shell resets
	got = b.AdvancePassive(1.5, 1, 1000, 1)
	if got != (SweepState{}) {
		t.Errorf("silent shell = %+v, want reset", got)
	}
}
