package particle

import (
	"math"
	"math/rand"

	"github.com/lixenwraith/windmap/flow"
	"github.com/lixenwraith/windmap/vmath"
)

// Population policy
const (
	WindyThreshold = 10.0 // wind speed above which the windy band applies
	CalmTarget     = 120
	CalmCeiling    = 150
	WindyTarget    = 250
	WindyCeiling   = 300
	HardCeiling    = 300 // absolute bound on pool size regardless of band
	RecreateSlack  = 50  // re-init keeps the pool while |len - target| <= slack

	BurstSize          = 15
	CalmBurstInterval  = 600 // frames
	WindyBurstInterval = 300
)

// Band is the population policy for a wind speed
type Band struct {
	Windy         bool
	Target        int
	Ceiling       int
	BurstInterval int
}

// BandFor returns the population band for a wind speed
func BandFor(speed float64) Band {
	if speed > WindyThreshold {
		return Band{Windy: true, Target: WindyTarget, Ceiling: WindyCeiling, BurstInterval: WindyBurstInterval}
	}
	return Band{Target: CalmTarget, Ceiling: CalmCeiling, BurstInterval: CalmBurstInterval}
}

// Pool owns the particle population
// Not safe for concurrent use; the animation loop is its only writer
type Pool struct {
	rng       *rand.Rand
	palette   Palette
	band      Band
	particles []*Particle
}

// NewPool creates an empty pool drawing randomness from rng
func NewPool(rng *rand.Rand, isNight bool) *Pool {
	return &Pool{
		rng:     rng,
		palette: PaletteFor(isNight),
		band:    BandFor(0),
	}
}

// Len returns the number of live particles
func (p *Pool) Len() int {
	return len(p.particles)
}

// Particles exposes the population for read-only use by the renderer
func (p *Pool) Particles() []*Particle {
	return p.particles
}

// Band returns the active population band
func (p *Pool) Band() Band {
	return p.band
}

// Palette returns the palette used for new and reset particles
func (p *Pool) Palette() Palette {
	return p.palette
}

// SetNight switches the palette applied on subsequent resets
func (p *Pool) SetNight(isNight bool) {
	p.palette = PaletteFor(isNight)
}

// SetSpeed selects the band for a wind speed and trims to its ceiling
func (p *Pool) SetSpeed(speed float64) {
	p.band = BandFor(speed)
	p.Trim(p.band.Ceiling)
}

// NeedsRecreate reports whether re-init should rebuild the population
func (p *Pool) NeedsRecreate() bool {
	if len(p.particles) == 0 {
		return true
	}
	diff := len(p.particles) - p.band.Target
	if diff < 0 {
		diff = -diff
	}
	return diff > RecreateSlack
}

// CreateInitial replaces the population with count fresh particles
func (p *Pool) CreateInitial(count int, b Bounds) {
	if count > HardCeiling {
		count = HardCeiling
	}
	if count < 0 {
		count = 0
	}
	p.particles = make([]*Particle, 0, HardCeiling)
	for i := 0; i < count; i++ {
		pt := &Particle{Trail: make([]Point, 0, TrailCap)}
		p.Reset(pt, b)
		p.particles = append(p.particles, pt)
	}
}

// Reset reassigns every field of pt in place
func (p *Pool) Reset(pt *Particle, b Bounds) {
	pt.X = p.rng.Float64() * b.W
	pt.Y = p.rng.Float64() * b.H
	pt.Age = 0
	pt.Life = LifeMin + p.rng.Float64()*LifeSpan
	pt.Trail = pt.Trail[:0]
	pt.Thickness = ThicknessMin + p.rng.Float64()*(ThicknessMax-ThicknessMin)
	pt.SpeedMult = SpeedMultMin + p.rng.Float64()*(SpeedMultMax-SpeedMultMin)
	pt.Hue, pt.Color = p.palette.Sample(p.rng)
	pt.Burst = false
}

// SpawnBurst appends n short-lived particles and trims back to the band ceiling
// Returns how many particles were trimmed
func (p *Pool) SpawnBurst(n int, b Bounds) int {
	for i := 0; i < n; i++ {
		pt := &Particle{Trail: make([]Point, 0, TrailCap)}
		p.Reset(pt, b)
		pt.Life = BurstLife
		pt.Burst = true
		p.particles = append(p.particles, pt)
	}
	return p.Trim(p.band.Ceiling)
}

// Trim drops the oldest particles until the pool fits ceiling, returning the count dropped
// The hard ceiling applies even when ceiling is larger
func (p *Pool) Trim(ceiling int) int {
	if ceiling > HardCeiling {
		ceiling = HardCeiling
	}
	if ceiling < 0 {
		ceiling = 0
	}
	excess := len(p.particles) - ceiling
	if excess <= 0 {
		return 0
	}
	// Shift down so the backing array is reused
	n := copy(p.particles, p.particles[excess:])
	for i := n; i < len(p.particles); i++ {
		p.particles[i] = nil
	}
	p.particles = p.particles[:n]
	return excess
}

// Advance moves every particle one frame along the field and recycles the dead
// Returns the number of particles reset this frame
func (p *Pool) Advance(field flow.Field, st *flow.State, speed float64, b Bounds) int {
	base := vmath.Clamp(speed, SpeedFloor, SpeedCeiling)
	resets := 0

	for _, pt := range p.particles {
		angle := field.Angle(pt.X, pt.Y, st.Direction, st.Time, st.NoiseOffset)
		v := base * pt.SpeedMult
		pt.X += math.Cos(angle) * v
		pt.Y += math.Sin(angle) * v
		pt.Age++
		pt.pushTrail()

		if pt.Dead() || !b.Contains(pt.X, pt.Y, BoundsMargin) {
			p.Reset(pt, b)
			resets++
		}
	}
	return resets
}
