package sonar

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// VisibilityFilter rejects blips outside the scope or the directional cone.
// Rejected blips get FadeTimer = 0 and are removed on the next registry update.
type VisibilityFilter struct {
	DisplayRadius float64
}

// Project maps a world position into display space relative to the transducer.
func (f VisibilityFilter) Project(pos, transducerPos r2.Vec, scale, zoom float64) r2.Vec {
	return r2.Scale(scale*zoom, r2.Sub(pos, transducerPos))
}

// IsVisible reports whether b would be drawn with the given configuration.
// scale is the world-to-display scale without zoom.
func (f VisibilityFilter) IsVisible(b *Blip, transducerPos r2.Vec, scale float64, cfg Configuration) bool {
	if !f.accepts(b.Position, transducerPos, scale, cfg) {
		b.FadeTimer = 0
		return false
	}
	return true
}

// Accepts is IsVisible without the side effect, for blips not yet inserted.
func (f VisibilityFilter) Accepts(pos, transducerPos r2.Vec, scale float64, cfg Configuration) bool {
	return f.accepts(pos, transducerPos, scale, cfg)
}

func (f VisibilityFilter) accepts(pos, transducerPos r2.Vec, scale float64, cfg Configuration) bool {
	projected := f.Project(pos, transducerPos, scale, cfg.Zoom)
	distSq := r2.Norm2(projected)
	if distSq > f.DisplayRadius*f.DisplayRadius {
		return false
	}
	if !cfg.Directional {
		return true
	}
	if distSq < epsilon*epsilon {
		// The transducer itself is inside every cone
		return true
	}
	dir := r2.Scale(1/math.Sqrt(distSq), projected)
	return r2.Dot(dir, cfg.Direction) >= cfg.SectorHalfAngleCos
}

// Apply runs the filter over every blip in the registry and returns the number rejected.
func (f VisibilityFilter) Apply(reg *BlipRegistry, transducerPos r2.Vec, scale float64, cfg Configuration) int {
	rejected := 0
	for b := range reg.All() {
		if b.FadeTimer <= 0 {
			continue
		}
		if !f.IsVisible(b, transducerPos, scale, cfg) {
			rejected++
		}
	}
	return rejected
}
