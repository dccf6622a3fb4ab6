package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sonar/components"
)

// MovementSystem moves creatures along wandering headings and lets items drift,
// keeping everything out of solid terrain.
type MovementSystem struct {
	filter  *ecs.Filter4[components.Position, components.Velocity, components.Rotation, components.Body]
	terrain *TerrainSystem
	rng     *rand.Rand
}

// NewMovementSystem creates a new movement system.
func NewMovementSystem(w *ecs.World, terrain *TerrainSystem, rng *rand.Rand) *MovementSystem {
	return &MovementSystem{
		filter:  ecs.NewFilter4[components.Position, components.Velocity, components.Rotation, components.Body](w),
		terrain: terrain,
		rng:     rng,
	}
}

// Update advances all moving entities by dt seconds.
func (s *MovementSystem) Update(dt float64) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, rot, body := query.Get()

		if body.Speed > 0 {
			// Random walk on the turn rate
			rot.AngVel = min(max(rot.AngVel+(s.rng.Float64()-0.5)*dt*2, -1), 1)
			rot.Heading = normalizeHeading(rot.Heading + rot.AngVel*dt)
			vel.X = math.Cos(rot.Heading) * body.Speed
			vel.Y = math.Sin(rot.Heading) * body.Speed
		} else {
			// Drifting items settle
			vel.X *= 0.98
			vel.Y *= 0.98
		}

		next := r2.Vec{X: pos.X + vel.X*dt, Y: pos.Y + vel.Y*dt}
		if s.terrain != nil && s.terrain.CheckCircleCollision(next, body.Radius) {
			// Turn around instead of entering rock
			rot.Heading = normalizeHeading(rot.Heading + math.Pi)
			rot.AngVel = 0
			vel.X, vel.Y = -vel.X*0.3, -vel.Y*0.3
			continue
		}
		pos.X, pos.Y = next.X, next.Y
	}
}
