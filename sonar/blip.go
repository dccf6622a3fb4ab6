package sonar

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r2"
)

// BlipKind identifies what produced a blip. Renderers use it for coloring.
type BlipKind uint8

const (
	BlipDefault    BlipKind = iota // Terrain, hull and wall returns
	BlipDisruption                 // Terrain-induced noise
	BlipFlow                       // Ambient water flow noise
	BlipContact                    // Creatures and items
	BlipPassive                    // Sound sources heard while listening
)

// String returns the kind name used in logs and telemetry.
func (k BlipKind) String() string {
	switch k {
	case BlipDisruption:
		return "disruption"
	case BlipFlow:
		return "flow"
	case BlipContact:
		return "contact"
	case BlipPassive:
		return "passive"
	default:
		return "default"
	}
}

// Blip is a transient detected point shown on the scope.
type Blip struct {
	Position  r2.Vec
	FadeTimer float64
	Scale     float64
	Velocity  r2.Vec
	Rotation  *float64 // nil = unoriented dot
	Size      r2.Vec
	Kind      BlipKind
}

// NewBlip creates a blip with the default dot size.
func NewBlip(pos r2.Vec, fadeTimer, scale float64, kind BlipKind) Blip {
	return Blip{
		Position:  pos,
		FadeTimer: fadeTimer,
		Scale:     scale,
		Size:      r2.Vec{X: 1, Y: 1},
		Kind:      kind,
	}
}

// BlipRegistry owns the live blips of one sonar instance.
type BlipRegistry struct {
	blips    []Blip
	fadeRate float64
	maxBlips int
}

// NewBlipRegistry creates a registry. fadeRate is the fade timer lost per second;
// maxBlips caps the live count (0 = unbounded).
func NewBlipRegistry(fadeRate float64, maxBlips int) *BlipRegistry {
	if fadeRate <= 0 {
		fadeRate = 0.5
	}
	return &BlipRegistry{
		blips:    make([]Blip, 0, 1024),
		fadeRate: fadeRate,
		maxBlips: maxBlips,
	}
}

// Add inserts a blip. Returns false if the registry is full.
func (r *BlipRegistry) Add(b Blip) bool {
	if r.maxBlips > 0 && len(r.blips) >= r.maxBlips {
		return false
	}
	r.blips = append(r.blips, b)
	return true
}

// Update ages every blip, moves it by its velocity and drops expired ones.
// Expired blips are compacted out in place.
func (r *BlipRegistry) Update(dt float64) {
	alive := 0
	for i := range r.blips {
		b := &r.blips[i]

		b.FadeTimer -= dt * r.fadeRate
		if b.FadeTimer <= 0 {
			continue
		}
		b.Position = r2.Add(b.Position, r2.Scale(dt, b.Velocity))

		r.blips[alive] = r.blips[i]
		alive++
	}
	clear(r.blips[alive:])
	r.blips = r.blips[:alive]
}

// RemoveWhere deletes every blip matching pred and returns how many were removed.
func (r *BlipRegistry) RemoveWhere(pred func(*Blip) bool) int {
	kept := 0
	for i := range r.blips {
		if pred(&r.blips[i]) {
			continue
		}
		r.blips[kept] = r.blips[i]
		kept++
	}
	removed := len(r.blips) - kept
	clear(r.blips[kept:])
	r.blips = r.blips[:kept]
	return removed
}

// All iterates over the live blips. Callers may mutate through the pointer
// but must not add or remove while iterating.
func (r *BlipRegistry) All() iter.Seq[*Blip] {
	return func(yield func(*Blip) bool) {
		for i := range r.blips {
			if !yield(&r.blips[i]) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the live blips for rendering.
func (r *BlipRegistry) Snapshot() []Blip {
	out := make([]Blip, len(r.blips))
	copy(out, r.blips)
	return out
}

// Len returns the number of live blips.
func (r *BlipRegistry) Len() int {
	return len(r.blips)
}

// Clear removes every blip.
func (r *BlipRegistry) Clear() {
	clear(r.blips)
	r.blips = r.blips[:0]
}
