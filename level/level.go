// Package level builds the demo world the sonar listens to: a cave grid, ruins,
// sea bed, submarines, flow vents and the creatures and items swimming among them.
package level

import (
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/sonar"
	"github.com/pthm-cable/sonar/systems"
)

// OwnSubmarineID is the id of the player's vessel.
const OwnSubmarineID = 0

// Level implements sonar.GeometrySource over generated geometry.
type Level struct {
	width, height float64
	cellSize      float64

	terrain *systems.TerrainSystem

	disruption       opensimplex.Noise
	disruptionScale  float64
	disruptionCutoff float64

	ruins    []sonar.Segment
	floor    []sonar.Segment
	subs     []sonar.Submarine
	hulls    map[int][]r2.Vec // local space, counter-clockwise
	triggers []sonar.FlowTrigger
	flows    map[int]r2.Vec

	spawn r2.Vec

	segScratch  []sonar.Segment
	trigScratch []sonar.FlowTrigger
}

// New generates a level from cfg. The same seed always yields the same level.
func New(cfg config.LevelConfig, seed int64) *Level {
	rng := rand.New(rand.NewSource(seed))

	l := &Level{
		width:            cfg.Width,
		height:           cfg.Height,
		cellSize:         cfg.GridCellSize,
		disruption:       opensimplex.NewNormalized(seed),
		disruptionScale:  cfg.DisruptionScale,
		disruptionCutoff: cfg.DisruptionCutoff,
		hulls:            make(map[int][]r2.Vec),
		flows:            make(map[int]r2.Vec),
		spawn:            r2.Vec{X: cfg.Width / 2, Y: cfg.Height * 0.3},
	}
	l.terrain = systems.NewTerrainSystem(cfg.Width, cfg.Height, cfg.GridCellSize, cfg.TerrainThreshold, cfg.TerrainScale, seed)
	l.terrain.ClearArea(l.spawn, 2500)

	l.buildFloor()
	l.placeSubmarines(rng)
	l.placeRuins(rng, cfg.Ruins)
	l.placeTriggers(rng, cfg.FlowTriggers)
	return l
}

// NewFromTerrain wraps existing terrain with no other features.
func NewFromTerrain(terrain *systems.TerrainSystem, seed int64) *Level {
	w, h := terrain.Bounds()
	l := &Level{
		width:            w,
		height:           h,
		cellSize:         terrain.CellSize(),
		terrain:          terrain,
		disruption:       opensimplex.NewNormalized(seed),
		disruptionCutoff: 1,
		hulls:            make(map[int][]r2.Vec),
		flows:            make(map[int]r2.Vec),
		spawn:            r2.Vec{X: w / 2, Y: h / 2},
	}
	l.buildFloor()
	return l
}

// buildFloor turns the terrain's sea bed profile into upward facing segments.
func (l *Level) buildFloor() {
	profile := l.terrain.FloorProfile()
	l.floor = l.floor[:0]
	for i := 1; i < len(profile); i++ {
		a, b := profile[i-1], profile[i]
		d := r2.Sub(b, a)
		n := r2.Vec{X: d.Y, Y: -d.X}
		if r2.Norm(n) == 0 {
			continue
		}
		l.floor = append(l.floor, sonar.Segment{A: a, B: b, Normal: r2.Unit(n)})
	}
}

// submarineHull is a rough capsule outline, bow toward +X.
func submarineHull(length, beam float64) []r2.Vec {
	hl, hb := length/2, beam/2
	return []r2.Vec{
		{X: -hl, Y: -hb * 0.6},
		{X: -hl * 0.7, Y: -hb},
		{X: hl * 0.6, Y: -hb},
		{X: hl, Y: 0},
		{X: hl * 0.6, Y: hb},
		{X: -hl * 0.7, Y: hb},
		{X: -hl, Y: hb * 0.6},
	}
}

func (l *Level) placeSubmarines(rng *rand.Rand) {
	l.subs = append(l.subs, sonar.Submarine{ID: OwnSubmarineID, Position: l.spawn, Own: true})
	l.hulls[OwnSubmarineID] = submarineHull(1200, 400)

	// A wreck somewhere else in the level
	wreck, ok := l.RandomOpenPoint(rng, 800)
	if !ok {
		return
	}
	l.subs = append(l.subs, sonar.Submarine{ID: 1, Position: wreck})
	l.hulls[1] = submarineHull(1600, 500)
}

// placeRuins adds rectangular rooms with a doorway in one wall.
// Ruin walls carry no normal and are visible from both sides.
func (l *Level) placeRuins(rng *rand.Rand, count int) {
	for i := 0; i < count; i++ {
		w := 1500 + rng.Float64()*1500
		h := 800 + rng.Float64()*700
		center, ok := l.RandomOpenPoint(rng, math.Max(w, h)/2)
		if !ok {
			continue
		}
		x0, y0 := center.X-w/2, center.Y-h/2
		x1, y1 := center.X+w/2, center.Y+h/2
		corners := []r2.Vec{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}

		door := rng.Intn(4)
		for side := 0; side < 4; side++ {
			a, b := corners[side], corners[(side+1)%4]
			if side != door {
				l.ruins = append(l.ruins, sonar.Segment{A: a, B: b})
				continue
			}
			// Split the wall around a doorway in its middle third
			d := r2.Sub(b, a)
			l.ruins = append(l.ruins,
				sonar.Segment{A: a, B: r2.Add(a, r2.Scale(1.0/3, d))},
				sonar.Segment{A: r2.Add(a, r2.Scale(2.0/3, d)), B: b},
			)
		}
	}
}

func (l *Level) placeTriggers(rng *rand.Rand, count int) {
	for i := 0; i < count; i++ {
		p, ok := l.RandomOpenPoint(rng, 300)
		if !ok {
			continue
		}
		angle := rng.Float64() * 2 * math.Pi
		speed := 100 + rng.Float64()*700
		t := sonar.FlowTrigger{ID: i, Position: p, Radius: 300}
		l.triggers = append(l.triggers, t)
		l.flows[t.ID] = r2.Scale(speed, sonar.AngleToDirection(angle))
	}
}

// RandomOpenPoint picks a random position with clearance radius, if one exists.
func (l *Level) RandomOpenPoint(rng *rand.Rand, radius float64) (r2.Vec, bool) {
	for attempt := 0; attempt < 64; attempt++ {
		p := r2.Vec{X: rng.Float64() * l.width, Y: rng.Float64() * l.height}
		if !l.terrain.CheckCircleCollision(p, radius) {
			return p, true
		}
	}
	return l.terrain.FindOpen(l.spawn, radius)
}

// Cells implements sonar.GeometrySource. The slice belongs to the terrain and
// is reused by its next Cells call.
func (l *Level) Cells(point r2.Vec, radiusInCells int) []sonar.Cell {
	return l.terrain.Cells(point, radiusInCells)
}

// Submarines implements sonar.GeometrySource.
func (l *Level) Submarines() []sonar.Submarine {
	return l.subs
}

// HullVertexLoop implements sonar.GeometrySource. The loop is in world space.
func (l *Level) HullVertexLoop(sub sonar.Submarine) []r2.Vec {
	local := l.hulls[sub.ID]
	loop := make([]r2.Vec, len(local))
	for i, v := range local {
		loop[i] = r2.Add(v, sub.Position)
	}
	return loop
}

// RuinWalls implements sonar.GeometrySource.
func (l *Level) RuinWalls(point r2.Vec, radius float64) []sonar.Segment {
	return l.segmentsNear(l.ruins, point, radius)
}

// SeaFloor implements sonar.GeometrySource.
func (l *Level) SeaFloor(point r2.Vec, radius float64) []sonar.Segment {
	return l.segmentsNear(l.floor, point, radius)
}

// segmentsNear filters segs to those within radius of point.
// RuinWalls and SeaFloor share the returned slice, which the next query reuses.
func (l *Level) segmentsNear(segs []sonar.Segment, point r2.Vec, radius float64) []sonar.Segment {
	l.segScratch = l.segScratch[:0]
	for _, s := range segs {
		if distanceToSegment(point, s.A, s.B) <= radius {
			l.segScratch = append(l.segScratch, s)
		}
	}
	return l.segScratch
}

// FlowTriggers implements sonar.GeometrySource. The returned slice is reused
// by the next call.
func (l *Level) FlowTriggers(point r2.Vec, radius float64) []sonar.FlowTrigger {
	l.trigScratch = l.trigScratch[:0]
	for _, t := range l.triggers {
		if r2.Norm(r2.Sub(t.Position, point)) <= radius+t.Radius {
			l.trigScratch = append(l.trigScratch, t)
		}
	}
	return l.trigScratch
}

// WaterFlowVelocity implements sonar.GeometrySource.
func (l *Level) WaterFlowVelocity(trigger sonar.FlowTrigger) r2.Vec {
	return l.flows[trigger.ID]
}

// SonarDisruptionStrength implements sonar.GeometrySource. Simplex noise above the
// cutoff is rescaled to (0,1]; everything below is calm water.
func (l *Level) SonarDisruptionStrength(point r2.Vec) float64 {
	if point.X < 0 || point.Y < 0 || point.X > l.width || point.Y > l.height {
		return 0
	}
	if l.disruptionCutoff >= 1 {
		return 0
	}
	n := l.disruption.Eval2(point.X*l.disruptionScale, point.Y*l.disruptionScale)
	if n <= l.disruptionCutoff {
		return 0
	}
	return math.Min((n-l.disruptionCutoff)/(1-l.disruptionCutoff), 1)
}

// GridCellSize implements sonar.GeometrySource.
func (l *Level) GridCellSize() float64 {
	return l.cellSize
}

// MoveSubmarine moves a submarine if its hull stays clear of rock.
// It returns false and leaves the submarine in place otherwise.
func (l *Level) MoveSubmarine(id int, pos r2.Vec) bool {
	for i := range l.subs {
		if l.subs[i].ID != id {
			continue
		}
		if l.terrain.CheckCircleCollision(pos, hullRadius(l.hulls[id])) {
			return false
		}
		l.subs[i].Position = pos
		return true
	}
	return false
}

// HullRadius returns the collision radius used when moving submarine id.
func (l *Level) HullRadius(id int) float64 {
	return hullRadius(l.hulls[id])
}

// TransducerMounts returns where the sonar arrays sit on submarine id, relative
// to its position: one on the keel line near the bow and one near the stern.
func (l *Level) TransducerMounts(id int) []r2.Vec {
	loop := l.hulls[id]
	if len(loop) == 0 {
		return nil
	}
	bow, stern := loop[0].X, loop[0].X
	for _, v := range loop[1:] {
		bow = math.Max(bow, v.X)
		stern = math.Min(stern, v.X)
	}
	return []r2.Vec{{X: bow * 0.9}, {X: stern * 0.9}}
}

// OwnSubmarine returns the player's vessel.
func (l *Level) OwnSubmarine() sonar.Submarine {
	for _, s := range l.subs {
		if s.Own {
			return s
		}
	}
	return sonar.Submarine{}
}

// Terrain returns the cave grid.
func (l *Level) Terrain() *systems.TerrainSystem {
	return l.terrain
}

// Spawn returns the player's start position.
func (l *Level) Spawn() r2.Vec {
	return l.spawn
}

// Size returns the level bounds.
func (l *Level) Size() (width, height float64) {
	return l.width, l.height
}

// hullRadius returns the bounding radius of a local hull loop at half size,
// small enough to let the vessel squeeze through passages.
func hullRadius(loop []r2.Vec) float64 {
	r := 0.0
	for _, v := range loop {
		r = math.Max(r, r2.Norm(v))
	}
	return r * 0.5
}

// distanceToSegment returns the distance from p to the segment ab.
func distanceToSegment(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	lenSq := r2.Norm2(ab)
	if lenSq == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, a), ab)/lenSq))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}
