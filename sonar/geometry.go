package sonar

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is a line primitive with an optional outward normal.
// A zero Normal disables back-face culling for the segment.
type Segment struct {
	A, B   r2.Vec
	Normal r2.Vec
}

// Midpoint returns the center of the segment.
func (s Segment) Midpoint() r2.Vec {
	return r2.Scale(0.5, r2.Add(s.A, s.B))
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return r2.Norm(r2.Sub(s.B, s.A))
}

// FacesPoint reports whether the segment's front side is visible from p.
func (s Segment) FacesPoint(p r2.Vec) bool {
	if s.Normal == (r2.Vec{}) {
		return true
	}
	return r2.Dot(s.Normal, r2.Sub(p, s.Midpoint())) >= 0
}

// Edge is a terrain cell edge. Only solid edges reflect pings.
type Edge struct {
	Segment
	Solid bool
}

// Cell is a terrain cell from the level's cell graph.
type Cell struct {
	Center r2.Vec
	Edges  []Edge
}

// Submarine identifies a vessel whose hull outline is visible to sonar.
type Submarine struct {
	ID       int
	Position r2.Vec
	Own      bool // the vessel carrying this sonar
}

// FlowTrigger is a level object that moves water and produces flow noise.
type FlowTrigger struct {
	ID       int
	Position r2.Vec
	Radius   float64
}

// GeometrySource provides read-only level geometry around a point. Queries
// must not change the level, but returned slices may be scratch buffers owned
// by the source: they are valid only until the next query on the same source.
// The sweeper finishes with each result before issuing another query.
type GeometrySource interface {
	Cells(point r2.Vec, radiusInCells int) []Cell
	Submarines() []Submarine
	HullVertexLoop(sub Submarine) []r2.Vec
	RuinWalls(point r2.Vec, radius float64) []Segment
	SeaFloor(point r2.Vec, radius float64) []Segment
	FlowTriggers(point r2.Vec, radius float64) []FlowTrigger
	WaterFlowVelocity(trigger FlowTrigger) r2.Vec
	SonarDisruptionStrength(point r2.Vec) float64
	GridCellSize() float64
}

// HullSegments converts a closed vertex loop into segments with outward normals.
// Winding is detected from the signed area so either orientation works.
func HullSegments(loop []r2.Vec) []Segment {
	n := len(loop)
	if n < 2 {
		return nil
	}

	var area float64
	for i := 0; i < n; i++ {
		a, b := loop[i], loop[(i+1)%n]
		area += a.X*b.Y - b.X*a.Y
	}

	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		a, b := loop[i], loop[(i+1)%n]
		d := r2.Sub(b, a)
		// Right-hand normal is outward for counter-clockwise loops
		normal := unitOrZero(r2.Vec{X: d.Y, Y: -d.X})
		if area < 0 {
			normal = r2.Scale(-1, normal)
		}
		segs = append(segs, Segment{A: a, B: b, Normal: normal})
	}
	return segs
}
