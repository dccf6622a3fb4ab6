package game

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/level"
	"github.com/pthm-cable/sonar/sonar"
	"github.com/pthm-cable/sonar/systems"
)

// Patrol steers a submarine between random open points along A* routes.
// When no route can be planned it wanders on a fixed heading instead.
type Patrol struct {
	lvl       *level.Level
	rng       *rand.Rand
	planner   *systems.Planner
	route     systems.Route
	clearance float64
	arrival   float64
	heading   float64 // wander heading in radians
	failures  int     // consecutive planning failures
}

// maxPlanFailures is how many goals are tried before wandering for a while.
const maxPlanFailures = 3

// NewPatrol builds a nav grid at half terrain resolution with some room
// to spare around the hull.
func NewPatrol(lvl *level.Level, subID int, rng *rand.Rand) *Patrol {
	terrain := lvl.Terrain()
	clearance := lvl.HullRadius(subID) * 1.2
	cell := terrain.CellSize() / 2
	return &Patrol{
		lvl:       lvl,
		rng:       rng,
		planner:   systems.NewPlanner(systems.NewNavGrid(terrain, cell, clearance)),
		clearance: clearance,
		arrival:   cell,
		heading:   rng.Float64() * 2 * math.Pi,
	}
}

// Thrust returns a unit steering vector for a submarine at pos.
func (p *Patrol) Thrust(pos r2.Vec) r2.Vec {
	wp, ok := p.route.Next(pos, p.arrival)
	if !ok && p.failures < maxPlanFailures {
		p.replan(pos)
		wp, ok = p.route.Next(pos, p.arrival)
	}
	if !ok {
		return sonar.AngleToDirection(p.heading)
	}
	d := r2.Sub(wp, pos)
	if r2.Norm(d) == 0 {
		return r2.Vec{}
	}
	return r2.Unit(d)
}

// Blocked drops the current route after a failed move and turns the
// wander heading away from the obstacle.
func (p *Patrol) Blocked() {
	p.route = systems.Route{}
	p.heading = math.Mod(p.heading+math.Pi/2+p.rng.Float64()*math.Pi, 2*math.Pi)
	if p.failures >= maxPlanFailures {
		// Let planning try again from the new spot
		p.failures = 0
	}
}

// replan picks a fresh goal and plans a route to it.
func (p *Patrol) replan(pos r2.Vec) {
	goal, ok := p.lvl.RandomOpenPoint(p.rng, p.clearance)
	if !ok {
		p.failures++
		return
	}
	path := p.planner.FindPath(pos, goal)
	if len(path) < 2 {
		p.failures++
		return
	}
	p.failures = 0
	// The first waypoint is the cell we are already in
	p.route = systems.Route{Waypoints: path[1:]}
}

// Route returns the waypoints still ahead.
func (p *Patrol) Route() []r2.Vec {
	if p.route.Done() {
		return nil
	}
	return p.route.Waypoints[p.route.Index:]
}
