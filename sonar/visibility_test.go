package sonar

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestVisibilityDirectionalCone(t *testing.T) {
	filter := VisibilityFilter{DisplayRadius: 1000}
	cfg := testConfig()
	cfg.Directional = true

	tests := []struct {
		name    string
		degrees float64
		want    bool
	}{
		{"on axis", 0, true},
		{"10 degrees", 10, true},
		{"negative 10 degrees", -10, true},
		{"45 degrees", 45, false},
		{"behind", 180, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rad := tt.degrees * math.Pi / 180
			b := NewBlip(r2.Vec{X: 100 * math.Cos(rad), Y: 100 * math.Sin(rad)}, 1, 1, BlipDefault)

			got := filter.IsVisible(&b, r2.Vec{}, 1, cfg)
			if got != tt.want {
				t.Errorf("IsVisible at %v degrees = %v, want %v", tt.degrees, got, tt.want)
			}
			if !got && b.FadeTimer != 0 {
				t.Errorf("rejected blip should have FadeTimer 0, got %v", b.FadeTimer)
			}
			if got && b.FadeTimer != 1 {
				t.Errorf("accepted blip fade changed to %v", b.FadeTimer)
			}
		})
	}
}

func TestVisibilityOutOfRange(t *testing.T) {
	filter := VisibilityFilter{DisplayRadius: 1000}
	cfg := testConfig()

	near := NewBlip(r2.Vec{X: 900}, 1, 1, BlipDefault)
	far := NewBlip(r2.Vec{X: 1100}, 1, 1, BlipDefault)

	if !filter.IsVisible(&near, r2.Vec{}, 1, cfg) {
		t.Error("blip inside display radius should be visible")
	}
	if filter.IsVisible(&far, r2.Vec{}, 1, cfg) {
		t.Error("blip outside display radius should be rejected")
	}

	// Zooming in shrinks the visible world
	cfg.Zoom = 2
	near = NewBlip(r2.Vec{X: 900}, 1, 1, BlipDefault)
	if filter.IsVisible(&near, r2.Vec{}, 1, cfg) {
		t.Error("blip at 900 should be out of range at zoom 2")
	}
}

func TestVisibilityApplyMarksRejected(t *testing.T) {
	filter := VisibilityFilter{DisplayRadius: 1000}
	cfg := testConfig()
	cfg.Directional = true

	reg := NewBlipRegistry(0.5, 0)
	reg.Add(NewBlip(r2.Vec{X: 100}, 1, 1, BlipDefault))
	reg.Add(NewBlip(r2.Vec{X: -100}, 1, 1, BlipDefault))

	rejected := filter.Apply(reg, r2.Vec{}, 1, cfg)
	if rejected != 1 {
		t.Errorf("rejected = %d, want 1", rejected)
	}
	reg.Update(0)
	if reg.Len() != 1 {
		t.Errorf("expected rejected blip removed on next update, have %d", reg.Len())
	}
}
