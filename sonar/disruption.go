package sonar

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// DisruptionSample is the direction and strength of terrain noise seen from the ping origin.
type DisruptionSample struct {
	Direction r2.Vec
	Strength  float64
}

// DisruptionField samples level disruption on a coarse grid around the ping origin.
// Samples are rebuilt on every Refresh and never carried across ticks.
type DisruptionField struct {
	geometry GeometrySource
	rng      *rand.Rand
	params   *Params

	samples []DisruptionSample
	noise   []Blip
}

// NewDisruptionField creates a field over the given geometry.
func NewDisruptionField(geometry GeometrySource, params *Params, rng *rand.Rand) *DisruptionField {
	return &DisruptionField{
		geometry: geometry,
		rng:      rng,
		params:   params,
		samples:  make([]DisruptionSample, 0, 64),
	}
}

// Refresh resamples disruption around origin. searchRadius is in world units and
// bounds the sampled square; shell is in display units (world * scale).
// Cells inside the newly swept shell also produce noise blips, available from NoiseBlips.
func (f *DisruptionField) Refresh(origin r2.Vec, searchRadius float64, shell SweepState, scale float64) []DisruptionSample {
	f.samples = f.samples[:0]
	clear(f.noise)
	f.noise = f.noise[:0]

	if f.geometry == nil || searchRadius <= 0 {
		return f.samples
	}
	cellSize := f.geometry.GridCellSize()
	if cellSize <= 0 {
		return f.samples
	}

	minX := math.Floor((origin.X-searchRadius)/cellSize)*cellSize + cellSize/2
	minY := math.Floor((origin.Y-searchRadius)/cellSize)*cellSize + cellSize/2
	maxX := origin.X + searchRadius
	maxY := origin.Y + searchRadius

	for x := minX; x <= maxX; x += cellSize {
		for y := minY; y <= maxY; y += cellSize {
			center := r2.Vec{X: x, Y: y}
			strength := clamp(f.geometry.SonarDisruptionStrength(center), 0, 1)
			if strength <= 0 {
				continue
			}

			delta := r2.Sub(center, origin)
			dist := r2.Norm(delta)
			if dist < epsilon {
				continue
			}
			f.samples = append(f.samples, DisruptionSample{
				Direction: r2.Scale(1/dist, delta),
				Strength:  strength,
			})

			displayDist := dist * scale
			if displayDist > shell.Previous && displayDist <= shell.Current {
				f.spawnNoise(center, strength, cellSize)
			}
		}
	}

	return f.samples
}

// spawnNoise scatters noise blips around a disrupted cell.
func (f *DisruptionField) spawnNoise(center r2.Vec, strength, cellSize float64) {
	count := int(strength * cellSize * f.params.NoiseBlipsPerUnit)
	for i := 0; i < count; i++ {
		pos := r2.Add(center, randVector(f.rng, randRange(f.rng, 0, cellSize*4*strength)))
		b := NewBlip(pos, lerp(1.0, 1.5, strength), randRange(f.rng, 1, 3+strength), BlipDisruption)
		f.noise = append(f.noise, b)
	}
}

// Samples returns the samples from the last Refresh.
func (f *DisruptionField) Samples() []DisruptionSample {
	return f.samples
}

// NoiseBlips returns the noise blips produced by the last Refresh.
func (f *DisruptionField) NoiseBlips() []Blip {
	return f.noise
}

// IsOccluded reports whether a ping travelling along dir is swallowed by disruption.
// Stronger disruption occludes a wider cone: strength 1 blocks the whole half-plane.
func IsOccluded(dir r2.Vec, samples []DisruptionSample) bool {
	for _, s := range samples {
		if r2.Dot(dir, s.Direction) > 1-s.Strength {
			return true
		}
	}
	return false
}

// SearchRadius bounds the disruption grid for a ping of the given world radius.
func SearchRadius(configuredRange, currentWorldRadius float64) float64 {
	return math.Min(configuredRange, currentWorldRadius*2)
}
