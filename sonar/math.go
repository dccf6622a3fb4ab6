package sonar

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

const epsilon = 1e-6

// clamp clamps v between minVal and maxVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// lerp interpolates between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// randRange returns a value in [lo, hi).
func randRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// randVector returns a random offset with length up to maxLen.
func randVector(rng *rand.Rand, maxLen float64) r2.Vec {
	if maxLen <= 0 {
		return r2.Vec{}
	}
	angle := rng.Float64() * 2 * math.Pi
	l := rng.Float64() * maxLen
	return r2.Vec{X: math.Cos(angle) * l, Y: math.Sin(angle) * l}
}

// isFinite reports whether both components are finite numbers.
func isFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// unitOrZero normalizes v, returning the zero vector for degenerate input.
func unitOrZero(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n < epsilon {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// AngleToDirection converts an angle in radians to a unit vector.
func AngleToDirection(angle float64) r2.Vec {
	return r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

// DirectionToAngle returns the angle of dir wrapped to [0, 2*Pi).
func DirectionToAngle(dir r2.Vec) float64 {
	a := math.Atan2(dir.Y, dir.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
