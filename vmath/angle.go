package vmath

import "math"

const (
	// Tau is a full turn in radians
	Tau = 2 * math.Pi
)

// NormalizeAngle maps an angle into (-π, π]
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, Tau)
	if a <= -math.Pi {
		a += Tau
	} else if a > math.Pi {
		a -= Tau
	}
	return a
}

// WrapAngle maps an angle into [0, 2π)
func WrapAngle(a float64) float64 {
	a = math.Mod(a, Tau)
	if a < 0 {
		a += Tau
	}
	// Mod of a tiny negative can round up to exactly Tau
	if a >= Tau {
		a = 0
	}
	return a
}

// AngleDiff returns the shortest signed arc from a to b, in (-π, π]
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(b - a)
}

// ApproachAngle moves current toward target by frac of the shortest arc
// Result is wrapped to [0, 2π)
func ApproachAngle(current, target, frac float64) float64 {
	return WrapAngle(current + AngleDiff(current, target)*frac)
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Dist returns the euclidean distance between two points
func Dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Lerp interpolates linearly between a and b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
