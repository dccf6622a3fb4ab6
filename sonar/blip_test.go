package sonar

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestRegistryFadeMonotonicity(t *testing.T) {
	tests := []struct {
		name string
		fade float64
		dt   float64
	}{
		{"partial fade", 1.0, 0.5},
		{"exact expiry", 0.25, 0.5},
		{"overshoot", 0.1, 1.0},
		{"zero dt", 0.7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewBlipRegistry(0.5, 0)
			reg.Add(NewBlip(r2.Vec{}, tt.fade, 1, BlipDefault))

			reg.Update(tt.dt)

			want := math.Max(0, tt.fade-tt.dt*0.5)
			if want <= 0 {
				if reg.Len() != 0 {
					t.Errorf("expired blip still present after Update")
				}
				return
			}
			if reg.Len() != 1 {
				t.Fatalf("expected 1 blip, got %d", reg.Len())
			}
			for b := range reg.All() {
				if math.Abs(b.FadeTimer-want) > 1e-9 {
					t.Errorf("FadeTimer = %v, want %v", b.FadeTimer, want)
				}
			}
		})
	}
}

func TestRegistryMovesByVelocity(t *testing.T) {
	reg := NewBlipRegistry(0.5, 0)
	b := NewBlip(r2.Vec{X: 10, Y: 10}, 1, 1, BlipFlow)
	b.Velocity = r2.Vec{X: 4, Y: -2}
	reg.Add(b)

	reg.Update(0.5)

	snap := reg.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 blip, got %d", len(snap))
	}
	if snap[0].Position != (r2.Vec{X: 12, Y: 9}) {
		t.Errorf("position = %v, want (12, 9)", snap[0].Position)
	}
}

func TestRegistrySoftDelete(t *testing.T) {
	reg := NewBlipRegistry(0.5, 0)
	reg.Add(NewBlip(r2.Vec{}, 1, 1, BlipDefault))
	reg.Add(NewBlip(r2.Vec{X: 5}, 1, 1, BlipDefault))

	// Mark the first one as expired, as the visibility filter does
	for b := range reg.All() {
		b.FadeTimer = 0
		break
	}
	if reg.Len() != 2 {
		t.Fatalf("soft delete must not remove immediately, got %d", reg.Len())
	}

	reg.Update(0)
	if reg.Len() != 1 {
		t.Fatalf("expected 1 blip after update, got %d", reg.Len())
	}
	if reg.Snapshot()[0].Position.X != 5 {
		t.Errorf("wrong blip survived: %v", reg.Snapshot()[0].Position)
	}
}

func TestRegistryCap(t *testing.T) {
	reg := NewBlipRegistry(0.5, 2)
	if !reg.Add(NewBlip(r2.Vec{}, 1, 1, BlipDefault)) || !reg.Add(NewBlip(r2.Vec{}, 1, 1, BlipDefault)) {
		t.Fatal("adds under the cap should succeed")
	}
	if reg.Add(NewBlip(r2.Vec{}, 1, 1, BlipDefault)) {
		t.Error("add over the cap should fail")
	}
}

func TestRegistryRemoveWhere(t *testing.T) {
	reg := NewBlipRegistry(0.5, 0)
	for i := 0; i < 5; i++ {
		reg.Add(NewBlip(r2.Vec{X: float64(i)}, float64(i)+1, 1, BlipDefault))
	}

	removed := reg.RemoveWhere(func(b *Blip) bool { return b.FadeTimer < 3 })
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	for b := range reg.All() {
		if b.FadeTimer < 3 {
			t.Errorf("blip with fade %v should have been removed", b.FadeTimer)
		}
	}
}
