// Package scope maps sonar blips onto a circular display and renders
// text snapshots of it. It has no graphics dependency so headless runs
// and the raylib renderer share the same geometry.
package scope

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/sonar"
)

// Projection maps world positions onto a screen disc.
type Projection struct {
	Center        r2.Vec  // transducer position in world space
	Scale         float64 // display units per world unit, zoom excluded
	Zoom          float64
	DisplayRadius float64
	ScreenCenter  r2.Vec
	ScreenRadius  float64
}

// FromController builds the projection a controller currently draws with.
func FromController(c *sonar.Controller, screenCenter r2.Vec, screenRadius float64) Projection {
	return Projection{
		Center:        c.Center(),
		Scale:         c.DisplayScale(),
		Zoom:          c.Configuration().Zoom,
		DisplayRadius: c.DisplayRadius(),
		ScreenCenter:  screenCenter,
		ScreenRadius:  screenRadius,
	}
}

// pixels returns screen units per display unit.
func (p Projection) pixels() float64 {
	if p.DisplayRadius <= 0 {
		return 0
	}
	return p.ScreenRadius / p.DisplayRadius
}

// Display returns the offset of world from the center in display units.
func (p Projection) Display(world r2.Vec) r2.Vec {
	return sonar.VisibilityFilter{DisplayRadius: p.DisplayRadius}.Project(world, p.Center, p.Scale, p.Zoom)
}

// ToScreen maps a world position to screen space.
func (p Projection) ToScreen(world r2.Vec) r2.Vec {
	return r2.Add(p.ScreenCenter, r2.Scale(p.pixels(), p.Display(world)))
}

// InScope reports whether world falls inside the display disc.
func (p Projection) InScope(world r2.Vec) bool {
	return r2.Norm2(p.Display(world)) <= p.DisplayRadius*p.DisplayRadius
}

// ShellRadius returns the on-screen radius of the sweep shell's leading edge.
func (p Projection) ShellRadius(shell sonar.SweepState) float64 {
	return math.Min(shell.Current*p.Zoom*p.pixels(), p.ScreenRadius)
}

// RingRadii returns n evenly spaced range ring radii, outermost last.
func (p Projection) RingRadii(n int) []float64 {
	radii := make([]float64, n)
	for i := range radii {
		radii[i] = p.ScreenRadius * float64(i+1) / float64(n)
	}
	return radii
}

// SectorEdges returns the screen endpoints of the directional cone edges.
func (p Projection) SectorEdges(dir r2.Vec, halfAngleCos float64) (left, right r2.Vec) {
	half := math.Acos(math.Max(-1, math.Min(1, halfAngleCos)))
	base := math.Atan2(dir.Y, dir.X)
	left = r2.Add(p.ScreenCenter, r2.Scale(p.ScreenRadius, sonar.AngleToDirection(base-half)))
	right = r2.Add(p.ScreenCenter, r2.Scale(p.ScreenRadius, sonar.AngleToDirection(base+half)))
	return left, right
}

// InSector reports whether a screen point lies inside the cone. Points at
// the center are always inside.
func (p Projection) InSector(screen, dir r2.Vec, halfAngleCos float64) bool {
	d := r2.Sub(screen, p.ScreenCenter)
	n := r2.Norm(d)
	if n < 1e-9 {
		return true
	}
	return r2.Dot(r2.Scale(1/n, d), dir) >= halfAngleCos
}
