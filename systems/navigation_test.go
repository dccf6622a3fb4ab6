package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNavGridClearance(t *testing.T) {
	terrain := NewTerrainFromGrid(grid(
		".....",
		"..#..",
		".....",
	), 100)

	tests := []struct {
		name      string
		clearance float64
		gx, gy    int
		want      bool
	}{
		{"rock cell", 10, 2, 1, true},
		{"neighbor with small clearance", 10, 1, 1, false},
		{"neighbor with large clearance", 60, 1, 1, true},
		{"level edge with large clearance", 60, 1, 0, true},
		{"far cell", 40, 4, 1, false},
		{"out of bounds", 10, -1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewNavGrid(terrain, 100, tt.clearance)
			if got := g.IsBlocked(tt.gx, tt.gy); got != tt.want {
				t.Errorf("IsBlocked(%d, %d) = %v, want %v", tt.gx, tt.gy, got, tt.want)
			}
		})
	}
}

func TestPlannerStraightPath(t *testing.T) {
	terrain := NewTerrainFromGrid(grid(
		"..........",
		"..........",
		"..........",
	), 100)
	p := NewPlanner(NewNavGrid(terrain, 100, 20))

	path := p.FindPath(r2.Vec{X: 50, Y: 150}, r2.Vec{X: 950, Y: 150})
	if len(path) != 2 {
		t.Fatalf("open water path should simplify to 2 waypoints, got %v", path)
	}
	if path[0] != (r2.Vec{X: 50, Y: 150}) || path[1] != (r2.Vec{X: 950, Y: 150}) {
		t.Errorf("path = %v", path)
	}
}

func TestPlannerAroundWall(t *testing.T) {
	terrain := NewTerrainFromGrid(grid(
		"..........",
		"....#.....",
		"....#.....",
		"....#.....",
		"....#.....",
		"..........",
	), 100)
	p := NewPlanner(NewNavGrid(terrain, 100, 20))

	start, goal := r2.Vec{X: 150, Y: 250}, r2.Vec{X: 850, Y: 250}
	path := p.FindPath(start, goal)
	if path == nil {
		t.Fatal("expected a path around the wall")
	}
	if len(path) < 3 {
		t.Fatalf("path must bend around the wall, got %v", path)
	}
	for i := 1; i < len(path); i++ {
		if !p.LineOfSight(path[i-1], path[i]) {
			t.Errorf("leg %d from %v to %v crosses rock", i, path[i-1], path[i])
		}
	}
	if p.LineOfSight(start, goal) {
		t.Error("direct line should be blocked by the wall")
	}

	// A second search reuses the planner state
	again := p.FindPath(goal, start)
	if again == nil {
		t.Fatal("reverse search failed")
	}
}

func TestPlannerNoPath(t *testing.T) {
	terrain := NewTerrainFromGrid(grid(
		"....#.....",
		"....#.....",
		"....#.....",
	), 100)
	p := NewPlanner(NewNavGrid(terrain, 100, 20))

	if path := p.FindPath(r2.Vec{X: 50, Y: 50}, r2.Vec{X: 950, Y: 50}); path != nil {
		t.Errorf("sealed wall should have no path, got %v", path)
	}
}

func TestPlannerSnapsBlockedEndpoints(t *testing.T) {
	terrain := NewTerrainFromGrid(grid(
		".....",
		".....",
		"....#",
	), 100)
	p := NewPlanner(NewNavGrid(terrain, 100, 20))

	path := p.FindPath(r2.Vec{X: 50, Y: 50}, r2.Vec{X: 450, Y: 250})
	if path == nil {
		t.Fatal("blocked goal should snap to an open neighbor")
	}
	last := path[len(path)-1]
	if p.Grid().IsBlockedWorld(last) {
		t.Errorf("last waypoint %v is blocked", last)
	}
}

func TestRouteNext(t *testing.T) {
	r := &Route{Waypoints: []r2.Vec{{X: 100, Y: 0}, {X: 200, Y: 0}}}

	wp, ok := r.Next(r2.Vec{}, 10)
	if !ok || wp != (r2.Vec{X: 100, Y: 0}) {
		t.Errorf("Next = %v %v, want first waypoint", wp, ok)
	}
	wp, ok = r.Next(r2.Vec{X: 95, Y: 0}, 10)
	if !ok || wp != (r2.Vec{X: 200, Y: 0}) {
		t.Errorf("Next = %v %v, want second waypoint after arrival", wp, ok)
	}
	if _, ok = r.Next(r2.Vec{X: 199, Y: 0}, 10); ok || !r.Done() {
		t.Error("route should be done at the last waypoint")
	}
	var empty *Route
	if !empty.Done() {
		t.Error("nil route should be done")
	}
}
