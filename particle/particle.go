// Package particle owns the bounded population of wind streaks
package particle

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Lifecycle and visual constants
const (
	TrailCap     = 8     // points kept per trail, oldest dropped first
	LifeMin      = 40.0  // frames
	LifeSpan     = 60.0  // LifeMin + LifeSpan is the exclusive upper life bound
	BurstLife    = 30.0  // frames, gust particles die young
	BoundsMargin = 50.0  // pixels beyond the canvas before a particle is recycled
	ThicknessMin = 0.5   // stroke width in pixels
	ThicknessMax = 2.0   // exclusive
	SpeedMultMin = 0.8   // per-particle speed variation
	SpeedMultMax = 1.2   // exclusive
	SpeedFloor   = 2.0   // wind speed clamp before the per-particle multiplier
	SpeedCeiling = 25.0
)

// Point is a canvas-space position
type Point struct {
	X, Y float64
}

// Bounds is the canvas size in pixels
type Bounds struct {
	W, H float64
}

// Empty reports a zero-area canvas
func (b Bounds) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Contains reports whether (x, y) lies within the canvas extended by margin
func (b Bounds) Contains(x, y, margin float64) bool {
	return x >= -margin && x <= b.W+margin && y >= -margin && y <= b.H+margin
}

// Particle is one wind streak
// Reset in place by the pool; pointers to a particle stay valid for its lifetime in the pool
type Particle struct {
	X, Y float64
	Age  int
	Life float64

	// Trail holds recent positions, most recent last, never more than TrailCap
	Trail []Point

	Thickness float64
	SpeedMult float64

	Hue   float64        // degrees, kept for palette checks
	Color colorful.Color // opaque stroke color, alpha applied at draw time
	Burst bool           // spawned by a gust
}

// LifeRatio returns age/life clamped to [0, 1]
func (p *Particle) LifeRatio() float64 {
	if p.Life <= 0 {
		return 1
	}
	r := float64(p.Age) / p.Life
	if r > 1 {
		return 1
	}
	return r
}

// Dead reports whether the particle has outlived its life
func (p *Particle) Dead() bool {
	return float64(p.Age) >= p.Life
}

// pushTrail appends the current position, dropping the oldest point at capacity
func (p *Particle) pushTrail() {
	if len(p.Trail) < TrailCap {
		p.Trail = append(p.Trail, Point{p.X, p.Y})
		return
	}
	copy(p.Trail, p.Trail[1:])
	p.Trail[TrailCap-1] = Point{p.X, p.Y}
}
