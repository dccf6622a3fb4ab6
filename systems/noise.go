package systems

import (
	"math"
	"math/rand"
)

// PerlinNoise generates coherent 2D gradient noise for terrain shapes.
type PerlinNoise struct {
	perm [512]uint8
}

// NewPerlinNoise creates a new Perlin noise generator.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{}
	rng := rand.New(rand.NewSource(seed))

	for i, v := range rng.Perm(256) {
		p.perm[i] = uint8(v)
		p.perm[i+256] = uint8(v)
	}
	return p
}

// Noise2D returns a noise value in roughly [-1, 1].
func (p *PerlinNoise) Noise2D(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	X := int(fx) & 255
	Y := int(fy) & 255
	x -= fx
	y -= fy

	u := fade(x)
	v := fade(y)

	aa := p.perm[int(p.perm[X])+Y]
	ab := p.perm[int(p.perm[X])+Y+1]
	ba := p.perm[int(p.perm[X+1])+Y]
	bb := p.perm[int(p.perm[X+1])+Y+1]

	return lerpNoise(v,
		lerpNoise(u, grad2D(aa, x, y), grad2D(ba, x-1, y)),
		lerpNoise(u, grad2D(ab, x, y-1), grad2D(bb, x-1, y-1)))
}

// Fractal sums octaves of Noise2D with halving amplitude, normalized to [-1, 1].
func (p *PerlinNoise) Fractal(x, y float64, octaves int) float64 {
	sum, amp, norm := 0.0, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		sum += amp * p.Noise2D(x, y)
		norm += amp
		amp *= 0.5
		x *= 2
		y *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerpNoise(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash uint8, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}
