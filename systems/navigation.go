package systems

import (
	"container/heap"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// NavGrid marks which cells a vessel of a given clearance can occupy.
type NavGrid struct {
	blocked  []bool
	cellSize float64
	width    int
	height   int
}

// NewNavGrid samples terrain at cellSize and blocks every cell whose center
// lies within clearance of rock or the level edge.
func NewNavGrid(terrain *TerrainSystem, cellSize, clearance float64) *NavGrid {
	w := max(int(terrain.width/cellSize), 1)
	h := max(int(terrain.height/cellSize), 1)

	g := &NavGrid{
		blocked:  make([]bool, w*h),
		cellSize: cellSize,
		width:    w,
		height:   h,
	}
	for gy := 0; gy < h; gy++ {
		for gx := 0; gx < w; gx++ {
			g.blocked[gy*w+gx] = terrain.CheckCircleCollision(g.GridToWorld(gx, gy), clearance)
		}
	}
	return g
}

// IsBlocked returns true if the given cell is blocked. Out of bounds is blocked.
func (g *NavGrid) IsBlocked(gx, gy int) bool {
	if gx < 0 || gx >= g.width || gy < 0 || gy >= g.height {
		return true
	}
	return g.blocked[gy*g.width+gx]
}

// IsBlockedWorld returns true if the world position is in a blocked cell.
func (g *NavGrid) IsBlockedWorld(p r2.Vec) bool {
	return g.IsBlocked(g.WorldToGrid(p))
}

// WorldToGrid converts world coordinates to grid coordinates.
func (g *NavGrid) WorldToGrid(p r2.Vec) (gx, gy int) {
	return int(math.Floor(p.X / g.cellSize)), int(math.Floor(p.Y / g.cellSize))
}

// GridToWorld converts grid coordinates to the cell center.
func (g *NavGrid) GridToWorld(gx, gy int) r2.Vec {
	return r2.Vec{X: (float64(gx) + 0.5) * g.cellSize, Y: (float64(gy) + 0.5) * g.cellSize}
}

// Size returns the grid dimensions in cells.
func (g *NavGrid) Size() (width, height int) {
	return g.width, g.height
}

// Planner runs A* searches over a NavGrid. Not safe for concurrent use.
type Planner struct {
	grid *NavGrid

	// Reusable per-search state, indexed by cell id
	open     nodeHeap
	gScore   []float64
	cameFrom []int32
	closed   []bool
	touched  []int32
}

type astarNode struct {
	id    int32
	f     float64
	index int
}

type nodeHeap []*astarNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

// NewPlanner creates a planner over grid.
func NewPlanner(grid *NavGrid) *Planner {
	n := grid.width * grid.height
	p := &Planner{
		grid:     grid,
		gScore:   make([]float64, n),
		cameFrom: make([]int32, n),
		closed:   make([]bool, n),
	}
	for i := range p.gScore {
		p.gScore[i] = math.Inf(1)
		p.cameFrom[i] = -1
	}
	return p
}

// Grid returns the grid the planner searches.
func (p *Planner) Grid() *NavGrid {
	return p.grid
}

// neighborOffsets lists 8-connected moves; the last four are diagonal.
var neighborOffsets = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

// FindPath returns waypoints from start to goal in world coordinates, or nil
// when no path exists. Blocked endpoints snap to the nearest open cell.
func (p *Planner) FindPath(start, goal r2.Vec) []r2.Vec {
	g := p.grid
	sx, sy := g.WorldToGrid(start)
	gx, gy := g.WorldToGrid(goal)

	var ok bool
	if sx, sy, ok = p.nearestOpen(sx, sy); !ok {
		return nil
	}
	if gx, gy, ok = p.nearestOpen(gx, gy); !ok {
		return nil
	}
	if sx == gx && sy == gy {
		return []r2.Vec{g.GridToWorld(gx, gy)}
	}

	p.reset()
	startID := int32(sy*g.width + sx)
	goalID := int32(gy*g.width + gx)

	p.visit(startID, 0, -1)
	heap.Push(&p.open, &astarNode{id: startID, f: heuristic(sx, sy, gx, gy)})

	for p.open.Len() > 0 {
		current := heap.Pop(&p.open).(*astarNode)
		if current.id == goalID {
			return p.reconstruct(startID, goalID)
		}
		if p.closed[current.id] {
			continue
		}
		p.closed[current.id] = true

		cx, cy := int(current.id)%g.width, int(current.id)/g.width
		for i, off := range neighborOffsets {
			nx, ny := cx+off[0], cy+off[1]
			if g.IsBlocked(nx, ny) {
				continue
			}
			cost := 1.0
			if i >= 4 {
				// No corner cutting past blocked cells
				if g.IsBlocked(nx, cy) || g.IsBlocked(cx, ny) {
					continue
				}
				cost = math.Sqrt2
			}

			nid := int32(ny*g.width + nx)
			if p.closed[nid] {
				continue
			}
			tentative := p.gScore[current.id] + cost
			if tentative >= p.gScore[nid] {
				continue
			}
			p.visit(nid, tentative, current.id)
			heap.Push(&p.open, &astarNode{id: nid, f: tentative + heuristic(nx, ny, gx, gy)})
		}
	}
	return nil
}

func (p *Planner) visit(id int32, g float64, from int32) {
	if math.IsInf(p.gScore[id], 1) {
		p.touched = append(p.touched, id)
	}
	p.gScore[id] = g
	p.cameFrom[id] = from
}

// reset clears the cells touched by the previous search.
func (p *Planner) reset() {
	for _, id := range p.touched {
		p.gScore[id] = math.Inf(1)
		p.cameFrom[id] = -1
		p.closed[id] = false
	}
	p.touched = p.touched[:0]
	p.open = p.open[:0]
}

func heuristic(x1, y1, x2, y2 int) float64 {
	return math.Hypot(float64(x2-x1), float64(y2-y1))
}

// reconstruct walks cameFrom back from goal and simplifies the result.
func (p *Planner) reconstruct(startID, goalID int32) []r2.Vec {
	g := p.grid
	var ids []int32
	for id := goalID; id != -1; id = p.cameFrom[id] {
		ids = append(ids, id)
		if id == startID {
			break
		}
	}

	path := make([]r2.Vec, len(ids))
	for i, id := range ids {
		path[len(ids)-1-i] = g.GridToWorld(int(id)%g.width, int(id)/g.width)
	}
	return p.simplify(path)
}

// simplify drops waypoints that the neighbors on either side can see past.
func (p *Planner) simplify(path []r2.Vec) []r2.Vec {
	if len(path) <= 2 {
		return path
	}
	out := make([]r2.Vec, 0, len(path))
	out = append(out, path[0])
	anchor := path[0]
	for i := 1; i < len(path)-1; i++ {
		if !p.LineOfSight(anchor, path[i+1]) {
			out = append(out, path[i])
			anchor = path[i]
		}
	}
	return append(out, path[len(path)-1])
}

// LineOfSight reports whether the straight line from a to b stays in open cells.
func (p *Planner) LineOfSight(a, b r2.Vec) bool {
	d := r2.Sub(b, a)
	dist := r2.Norm(d)
	if dist < 1e-9 {
		return !p.grid.IsBlockedWorld(a)
	}
	step := p.grid.cellSize * 0.5
	steps := int(dist/step) + 1
	dir := r2.Scale(1/dist, d)
	for i := 0; i <= steps; i++ {
		q := r2.Add(a, r2.Scale(math.Min(float64(i)*step, dist), dir))
		if p.grid.IsBlockedWorld(q) {
			return false
		}
	}
	return true
}

// nearestOpen spirals outward from a blocked cell to the closest open one.
func (p *Planner) nearestOpen(gx, gy int) (int, int, bool) {
	g := p.grid
	if !g.IsBlocked(gx, gy) {
		return gx, gy, true
	}
	for radius := 1; radius < 10; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx) != radius && abs(dy) != radius {
					continue
				}
				if !g.IsBlocked(gx+dx, gy+dy) {
					return gx + dx, gy + dy, true
				}
			}
		}
	}
	return -1, -1, false
}

// Route is a planned path and the index of the waypoint being steered for.
type Route struct {
	Waypoints []r2.Vec
	Index     int
}

// Next returns the waypoint to steer toward from pos, advancing past
// waypoints within arrival distance. ok is false once the route is done.
func (r *Route) Next(pos r2.Vec, arrival float64) (wp r2.Vec, ok bool) {
	for r.Index < len(r.Waypoints) {
		wp = r.Waypoints[r.Index]
		if r2.Norm(r2.Sub(wp, pos)) >= arrival {
			return wp, true
		}
		r.Index++
	}
	return pos, false
}

// Done reports whether every waypoint has been reached.
func (r *Route) Done() bool {
	return r == nil || r.Index >= len(r.Waypoints)
}
