package systems

import "math"

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	return h
}

// abs returns the magnitude of a grid offset.
func abs(v int) int {
	return max(v, -v)
}
