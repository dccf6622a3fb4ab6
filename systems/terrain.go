package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/sonar"
)

// TerrainCell represents the type of terrain in a cell.
type TerrainCell uint8

const (
	TerrainEmpty TerrainCell = iota
	TerrainRock              // Solid, produces sonar edges
	TerrainFloor             // Solid sea bed, reported through the floor profile instead
)

// TerrainSystem manages a procedural cave grid with collision detection and
// exposes its exposed rock faces as sonar cells.
type TerrainSystem struct {
	grid       [][]TerrainCell
	cellSize   float64
	width      float64
	height     float64
	gridWidth  int
	gridHeight int
	noise      *PerlinNoise

	threshold float64
	scale     float64

	floor []r2.Vec // sea bed profile, one point per column boundary

	cells     []sonar.Cell
	cellIndex []int32 // per grid cell, index into cells or -1
	scratch   []sonar.Cell
}

// NewTerrainSystem creates a new terrain system and generates terrain.
// threshold and scale shape the rock islands; see Generate.
func NewTerrainSystem(width, height, cellSize, threshold, scale float64, seed int64) *TerrainSystem {
	gridWidth := max(int(width/cellSize), 1)
	gridHeight := max(int(height/cellSize), 1)

	grid := make([][]TerrainCell, gridHeight)
	for y := range grid {
		grid[y] = make([]TerrainCell, gridWidth)
	}

	t := &TerrainSystem{
		grid:       grid,
		cellSize:   cellSize,
		width:      width,
		height:     height,
		gridWidth:  gridWidth,
		gridHeight: gridHeight,
		noise:      NewPerlinNoise(seed),
		threshold:  threshold,
		scale:      scale,
	}
	t.Generate()
	t.buildCells()
	return t
}

// NewTerrainFromGrid wraps a prepared grid, used by tests and fixed maps.
func NewTerrainFromGrid(grid [][]TerrainCell, cellSize float64) *TerrainSystem {
	t := &TerrainSystem{
		grid:       grid,
		cellSize:   cellSize,
		gridHeight: len(grid),
	}
	if len(grid) > 0 {
		t.gridWidth = len(grid[0])
	}
	t.width = float64(t.gridWidth) * cellSize
	t.height = float64(t.gridHeight) * cellSize
	t.floor = []r2.Vec{{X: 0, Y: t.height}, {X: t.width, Y: t.height}}
	t.buildCells()
	return t
}

// Generate fills the grid: sea bed, rock islands, then cave carving.
func (t *TerrainSystem) Generate() {
	for y := 0; y < t.gridHeight; y++ {
		for x := 0; x < t.gridWidth; x++ {
			t.grid[y][x] = TerrainEmpty
		}
	}

	t.generateSeaFloor()
	t.generateIslands()
	t.carveCaves()
	t.clearEdges()
}

// generateSeaFloor fills the bottom 10-20% of each column and records the profile.
func (t *TerrainSystem) generateSeaFloor() {
	const noiseScale = 0.08

	t.floor = t.floor[:0]
	for x := 0; x <= t.gridWidth; x++ {
		heightRatio := 0.10 + (t.noise.Noise2D(float64(x)*noiseScale, 0)+1)*0.05
		top := t.height * (1 - heightRatio)
		t.floor = append(t.floor, r2.Vec{X: float64(x) * t.cellSize, Y: top})

		if x == t.gridWidth {
			break
		}
		for y := t.gridHeight - 1; y >= 0 && float64(y)*t.cellSize >= top; y-- {
			t.grid[y][x] = TerrainFloor
		}
	}
}

// generateIslands places rock where fractal noise exceeds the threshold.
func (t *TerrainSystem) generateIslands() {
	for y := 0; y < t.gridHeight; y++ {
		for x := 0; x < t.gridWidth; x++ {
			if t.grid[y][x] != TerrainEmpty {
				continue
			}
			cx := (float64(x) + 0.5) * t.cellSize
			cy := (float64(y) + 0.5) * t.cellSize
			if t.noise.Fractal(cx*t.scale, cy*t.scale+50, 3) > t.threshold {
				t.grid[y][x] = TerrainRock
			}
		}
	}
}

// carveCaves removes rock where a second noise pass is high, opening passages.
func (t *TerrainSystem) carveCaves() {
	const threshold = 0.45

	for y := 0; y < t.gridHeight; y++ {
		for x := 0; x < t.gridWidth; x++ {
			if t.grid[y][x] != TerrainRock {
				continue
			}
			n := t.noise.Noise2D(float64(x)*0.1+300, float64(y)*0.1+300)
			if n > threshold {
				t.grid[y][x] = TerrainEmpty
			}
		}
	}
}

// clearEdges keeps the top rows and side columns open.
func (t *TerrainSystem) clearEdges() {
	for y := 0; y < t.gridHeight; y++ {
		for x := 0; x < t.gridWidth; x++ {
			if t.grid[y][x] != TerrainRock {
				continue
			}
			if y < 2 || x < 2 || x >= t.gridWidth-2 {
				t.grid[y][x] = TerrainEmpty
			}
		}
	}
}

// ClearArea empties rock within radius of p, used to keep spawn points open.
func (t *TerrainSystem) ClearArea(p r2.Vec, radius float64) {
	minGX, minGY := t.gridCoord(r2.Vec{X: p.X - radius, Y: p.Y - radius})
	maxGX, maxGY := t.gridCoord(r2.Vec{X: p.X + radius, Y: p.Y + radius})
	for gy := max(minGY, 0); gy <= min(maxGY, t.gridHeight-1); gy++ {
		for gx := max(minGX, 0); gx <= min(maxGX, t.gridWidth-1); gx++ {
			if t.grid[gy][gx] == TerrainRock {
				t.grid[gy][gx] = TerrainEmpty
			}
		}
	}
	t.buildCells()
}

// buildCells extracts one sonar cell per rock cell that borders water.
// Faces toward water are solid and their normals point into the water.
func (t *TerrainSystem) buildCells() {
	t.cells = t.cells[:0]
	t.cellIndex = make([]int32, t.gridWidth*t.gridHeight)
	for i := range t.cellIndex {
		t.cellIndex[i] = -1
	}

	for gy := 0; gy < t.gridHeight; gy++ {
		for gx := 0; gx < t.gridWidth; gx++ {
			if t.grid[gy][gx] != TerrainRock {
				continue
			}
			x0 := float64(gx) * t.cellSize
			y0 := float64(gy) * t.cellSize
			x1 := x0 + t.cellSize
			y1 := y0 + t.cellSize

			edges := []sonar.Edge{
				t.edge(gx-1, gy, r2.Vec{X: x0, Y: y1}, r2.Vec{X: x0, Y: y0}, r2.Vec{X: -1, Y: 0}),
				t.edge(gx+1, gy, r2.Vec{X: x1, Y: y0}, r2.Vec{X: x1, Y: y1}, r2.Vec{X: 1, Y: 0}),
				t.edge(gx, gy-1, r2.Vec{X: x0, Y: y0}, r2.Vec{X: x1, Y: y0}, r2.Vec{X: 0, Y: -1}),
				t.edge(gx, gy+1, r2.Vec{X: x1, Y: y1}, r2.Vec{X: x0, Y: y1}, r2.Vec{X: 0, Y: 1}),
			}
			exposed := false
			for _, e := range edges {
				exposed = exposed || e.Solid
			}
			if !exposed {
				continue
			}

			t.cellIndex[gy*t.gridWidth+gx] = int32(len(t.cells))
			t.cells = append(t.cells, sonar.Cell{
				Center: r2.Vec{X: x0 + t.cellSize/2, Y: y0 + t.cellSize/2},
				Edges:  edges,
			})
		}
	}
}

// edge builds one cell face; it is solid when the neighbour is open water.
func (t *TerrainSystem) edge(nx, ny int, a, b, normal r2.Vec) sonar.Edge {
	open := nx >= 0 && nx < t.gridWidth && ny >= 0 && ny < t.gridHeight && t.grid[ny][nx] == TerrainEmpty
	return sonar.Edge{Segment: sonar.Segment{A: a, B: b, Normal: normal}, Solid: open}
}

// Cells returns the exposed rock cells within radiusInCells grid cells of point.
// The returned slice is reused by the next call.
func (t *TerrainSystem) Cells(point r2.Vec, radiusInCells int) []sonar.Cell {
	t.scratch = t.scratch[:0]
	cx, cy := t.gridCoord(point)
	for gy := max(cy-radiusInCells, 0); gy <= min(cy+radiusInCells, t.gridHeight-1); gy++ {
		for gx := max(cx-radiusInCells, 0); gx <= min(cx+radiusInCells, t.gridWidth-1); gx++ {
			if idx := t.cellIndex[gy*t.gridWidth+gx]; idx >= 0 {
				t.scratch = append(t.scratch, t.cells[idx])
			}
		}
	}
	return t.scratch
}

// FloorProfile returns the sea bed outline from left to right.
func (t *TerrainSystem) FloorProfile() []r2.Vec {
	return t.floor
}

func (t *TerrainSystem) gridCoord(p r2.Vec) (int, int) {
	return int(math.Floor(p.X / t.cellSize)), int(math.Floor(p.Y / t.cellSize))
}

// IsSolid returns true if the world position is inside solid terrain.
// Positions outside the grid count as solid.
func (t *TerrainSystem) IsSolid(p r2.Vec) bool {
	gx, gy := t.gridCoord(p)
	if gx < 0 || gx >= t.gridWidth || gy < 0 || gy >= t.gridHeight {
		return true
	}
	return t.grid[gy][gx] != TerrainEmpty
}

// GetCell returns the terrain cell type at the given world position.
func (t *TerrainSystem) GetCell(p r2.Vec) TerrainCell {
	gx, gy := t.gridCoord(p)
	if gx < 0 || gx >= t.gridWidth || gy < 0 || gy >= t.gridHeight {
		return TerrainEmpty
	}
	return t.grid[gy][gx]
}

// CheckCircleCollision returns true if a circle intersects solid terrain or leaves the grid.
func (t *TerrainSystem) CheckCircleCollision(p r2.Vec, radius float64) bool {
	if p.X-radius < 0 || p.Y-radius < 0 || p.X+radius > t.width || p.Y+radius > t.height {
		return true
	}

	minGX, minGY := t.gridCoord(r2.Vec{X: p.X - radius, Y: p.Y - radius})
	maxGX, maxGY := t.gridCoord(r2.Vec{X: p.X + radius, Y: p.Y + radius})
	minGX, minGY = max(minGX, 0), max(minGY, 0)
	maxGX, maxGY = min(maxGX, t.gridWidth-1), min(maxGY, t.gridHeight-1)

	radiusSq := radius * radius
	for gy := minGY; gy <= maxGY; gy++ {
		for gx := minGX; gx <= maxGX; gx++ {
			if t.grid[gy][gx] == TerrainEmpty {
				continue
			}

			// Closest point on the cell to the circle center
			cellMinX := float64(gx) * t.cellSize
			cellMinY := float64(gy) * t.cellSize
			closest := r2.Vec{
				X: math.Max(cellMinX, math.Min(p.X, cellMinX+t.cellSize)),
				Y: math.Max(cellMinY, math.Min(p.Y, cellMinY+t.cellSize)),
			}
			if r2.Norm2(r2.Sub(p, closest)) < radiusSq {
				return true
			}
		}
	}
	return false
}

// FindOpen returns the open cell center closest to p, searching outward ring by ring.
func (t *TerrainSystem) FindOpen(p r2.Vec, radius float64) (r2.Vec, bool) {
	cx, cy := t.gridCoord(p)
	limit := max(t.gridWidth, t.gridHeight)
	for ring := 0; ring < limit; ring++ {
		for gy := cy - ring; gy <= cy+ring; gy++ {
			for gx := cx - ring; gx <= cx+ring; gx++ {
				if max(abs(gx-cx), abs(gy-cy)) != ring {
					continue
				}
				c := r2.Vec{X: (float64(gx) + 0.5) * t.cellSize, Y: (float64(gy) + 0.5) * t.cellSize}
				if !t.CheckCircleCollision(c, radius) {
					return c, true
				}
			}
		}
	}
	return p, false
}

// CellSize returns the size of a terrain cell in world units.
func (t *TerrainSystem) CellSize() float64 {
	return t.cellSize
}

// Grid returns a reference to the terrain grid for rendering.
func (t *TerrainSystem) Grid() [][]TerrainCell {
	return t.grid
}

// GridWidth returns the terrain grid width.
func (t *TerrainSystem) GridWidth() int {
	return t.gridWidth
}

// GridHeight returns the terrain grid height.
func (t *TerrainSystem) GridHeight() int {
	return t.gridHeight
}

// Bounds returns the world size covered by the grid.
func (t *TerrainSystem) Bounds() (width, height float64) {
	return t.width, t.height
}

// Noise returns the generator the terrain was shaped with.
func (t *TerrainSystem) Noise() *PerlinNoise {
	return t.noise
}
