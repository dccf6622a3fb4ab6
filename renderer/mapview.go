package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/camera"
	"github.com/pthm-cable/sonar/level"
	"github.com/pthm-cable/sonar/systems"
)

// MapRenderer draws the true level geometry behind the scope, used when
// the map overlay is on to compare what the sonar shows with what is there.
type MapRenderer struct {
	cam *camera.Camera
}

// NewMapRenderer creates a map renderer viewing through cam.
func NewMapRenderer(cam *camera.Camera) *MapRenderer {
	return &MapRenderer{cam: cam}
}

// Draw renders terrain, ruins, sea bed, flow vents and submarines of lvl,
// plus the entities when ents is non-nil.
func (r *MapRenderer) Draw(lvl *level.Level, ents *level.Entities, rangeWorld float64) {
	if lvl == nil {
		return
	}
	r.drawTerrain(lvl.Terrain())

	minX, minY, maxX, maxY := r.cam.VisibleWorldBounds()
	center := r2.Vec{X: float64(minX+maxX) / 2, Y: float64(minY+maxY) / 2}
	reach := math.Hypot(float64(maxX-minX), float64(maxY-minY)) / 2

	floorColor := rl.Color{R: 90, G: 80, B: 60, A: 255}
	for _, s := range lvl.SeaFloor(center, reach) {
		r.line(s.A, s.B, 2, floorColor)
	}
	ruinColor := rl.Color{R: 150, G: 150, B: 170, A: 255}
	for _, s := range lvl.RuinWalls(center, reach) {
		r.line(s.A, s.B, 3, ruinColor)
	}

	flowColor := rl.Color{R: 60, G: 160, B: 200, A: 160}
	for _, t := range lvl.FlowTriggers(center, reach) {
		p := r.screen(t.Position)
		rl.DrawCircleLinesV(p, float32(t.Radius)*r.cam.Zoom, flowColor)
		v := lvl.WaterFlowVelocity(t)
		r.line(t.Position, r2.Add(t.Position, v), 1, flowColor)
	}

	for _, sub := range lvl.Submarines() {
		hullColor := rl.Color{R: 120, G: 120, B: 120, A: 255}
		if sub.Own {
			hullColor = rl.Color{R: 0, G: 255, B: 65, A: 255}
			rl.DrawCircleLinesV(r.screen(sub.Position), float32(rangeWorld)*r.cam.Zoom, rl.Color{R: 0, G: 143, B: 17, A: 90})
		}
		loop := lvl.HullVertexLoop(sub)
		for i := range loop {
			r.line(loop[i], loop[(i+1)%len(loop)], 2, hullColor)
		}
	}

	if ents != nil {
		r.drawEntities(ents, center, reach)
	}
}

// drawEntities marks contacts as dots and ringed dots for sound emitters.
func (r *MapRenderer) drawEntities(ents *level.Entities, center r2.Vec, reach float64) {
	emitting := make(map[uint32]bool)
	for _, s := range ents.SoundSources(center, reach) {
		emitting[s.ID] = s.Enabled
	}
	for _, c := range ents.Contacts(center, reach) {
		p := r.screen(c.Position)
		radius := max(float32(math.Sqrt(c.Mass)*10)*r.cam.Zoom, 2)
		col := rl.Color{R: 255, G: 204, B: 0, A: 220}
		if c.HideInSonar {
			col = rl.Color{R: 120, G: 100, B: 40, A: 200}
		}
		rl.DrawCircleV(p, radius, col)
		if enabled, ok := emitting[c.ID]; ok && enabled {
			rl.DrawCircleLinesV(p, radius+3, rl.Color{R: 0, G: 255, B: 170, A: 200})
		}
	}
}

// drawTerrain renders visible rock cells with a little noise variation.
func (r *MapRenderer) drawTerrain(terrain *systems.TerrainSystem) {
	if terrain == nil {
		return
	}

	grid := terrain.Grid()
	gridW := terrain.GridWidth()
	gridH := terrain.GridHeight()
	cellSize := terrain.CellSize()
	noise := terrain.Noise()

	minX, minY, maxX, maxY := r.cam.VisibleWorldBounds()
	x0 := max(int(float64(minX)/cellSize), 0)
	y0 := max(int(float64(minY)/cellSize), 0)
	x1 := min(int(float64(maxX)/cellSize)+1, gridW)
	y1 := min(int(float64(maxY)/cellSize)+1, gridH)
	size := float32(cellSize)*r.cam.Zoom + 1

	for gy := y0; gy < y1; gy++ {
		// Depth-based color - darker at bottom
		depthDarken := 1.0 - float32(gy)/float32(gridH)*0.4
		for gx := x0; gx < x1; gx++ {
			cell := grid[gy][gx]
			if cell == systems.TerrainEmpty {
				continue
			}

			var variation float32
			if noise != nil {
				variation = float32(noise.Noise2D(float64(gx)*0.5+200, float64(gy)*0.5+200))
			}
			gray := 40 + variation*15
			if cell == systems.TerrainFloor {
				gray += 10
			}
			base := rl.Color{
				R: uint8(gray * depthDarken),
				G: uint8((gray + 5) * depthDarken),
				B: uint8((gray + 10) * depthDarken),
				A: 255,
			}

			sx, sy := r.cam.WorldToScreen(float32(float64(gx)*cellSize), float32(float64(gy)*cellSize))
			rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: size, Y: size}, base)

			// Top edge highlight (light from above)
			if gy > 0 && grid[gy-1][gx] == systems.TerrainEmpty {
				highlight := rl.Color{
					R: uint8(min(int(base.R)+40, 255)),
					G: uint8(min(int(base.G)+40, 255)),
					B: uint8(min(int(base.B)+45, 255)),
					A: 200,
				}
				rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: size, Y: max(size*0.15, 1)}, highlight)
			}
		}
	}
}

func (r *MapRenderer) screen(p r2.Vec) rl.Vector2 {
	x, y := r.cam.WorldToScreen(float32(p.X), float32(p.Y))
	return rl.Vector2{X: x, Y: y}
}

func (r *MapRenderer) line(a, b r2.Vec, thick float32, col rl.Color) {
	rl.DrawLineEx(r.screen(a), r.screen(b), thick, col)
}

// DrawRoute draws a planned path from the vessel at from through waypoints.
func (r *MapRenderer) DrawRoute(from r2.Vec, waypoints []r2.Vec) {
	routeColor := rl.Color{R: 255, G: 200, B: 0, A: 140}
	prev := from
	for _, wp := range waypoints {
		r.line(prev, wp, 1, routeColor)
		rl.DrawCircleV(r.screen(wp), 3, routeColor)
		prev = wp
	}
}
