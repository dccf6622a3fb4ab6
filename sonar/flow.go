package sonar

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// FlowNoise spawns ambient blips around level objects that move water.
type FlowNoise struct {
	geometry GeometrySource
	params   *Params
	rng      *rand.Rand
}

// NewFlowNoise creates a flow noise generator over geometry.
func NewFlowNoise(geometry GeometrySource, params *Params, rng *rand.Rand) *FlowNoise {
	return &FlowNoise{geometry: geometry, params: params, rng: rng}
}

// Generate returns this tick's flow blips for triggers within rangeWorld of center.
// Spawn chance grows with flow speed; blips drift with the flow and are oriented along it.
func (f *FlowNoise) Generate(center r2.Vec, rangeWorld float64, dst []Blip) []Blip {
	if f == nil || f.geometry == nil {
		return dst
	}
	for _, trigger := range f.geometry.FlowTriggers(center, rangeWorld) {
		flow := f.geometry.WaterFlowVelocity(trigger)
		speed := r2.Norm(flow)
		if speed < epsilon {
			continue
		}
		chance := math.Min(speed*f.params.FlowChancePerSpeed, f.params.FlowMaxChance)
		if f.rng.Float64() >= chance {
			continue
		}

		pos := r2.Add(trigger.Position, randVector(f.rng, trigger.Radius))
		b := NewBlip(pos, randRange(f.rng, 0.5, 1.0), randRange(f.rng, 0.8, 1.2), BlipFlow)
		b.Velocity = r2.Scale(f.params.FlowVelocityScale, flow)
		rot := math.Atan2(flow.Y, flow.X)
		b.Rotation = &rot
		b.Size = r2.Vec{X: 1 + math.Min(speed/500, 2), Y: 0.5}
		dst = append(dst, b)
	}
	return dst
}
