// Package flow provides the time-evolving direction field that wind particles follow
package flow

import (
	"math"

	"github.com/lixenwraith/windmap/vmath"
)

// Nominal field parameters
const (
	DefaultScale           = 0.015 // spatial frequency, radians per canvas pixel
	DefaultAmplitude       = 0.5   // base perturbation amplitude, radians
	DefaultModulation      = 0.2   // breathing depth added to the amplitude
	DefaultModulationRate  = 0.05  // breathing frequency per simulated-time unit
	DefaultMaxPerturbation = 0.5   // hard bound on |angle - direction|
)

// Field perturbs a base direction with a smooth, slowly breathing noise pattern
// Pure function of its inputs; two fields with equal parameters agree everywhere
type Field struct {
	Scale           float64
	Amplitude       float64
	Modulation      float64
	ModulationRate  float64
	MaxPerturbation float64 // 0 disables the bound
}

// NewField returns a field with nominal parameters
func NewField() Field {
	return Field{
		Scale:           DefaultScale,
		Amplitude:       DefaultAmplitude,
		Modulation:      DefaultModulation,
		ModulationRate:  DefaultModulationRate,
		MaxPerturbation: DefaultMaxPerturbation,
	}
}

// Noise returns the spatial noise term in [-1, 1]
func (f Field) Noise(x, y, phase float64) float64 {
	return math.Sin(x*f.Scale+phase) * math.Cos(y*f.Scale+phase)
}

// Envelope returns the time-modulated amplitude
// Period is 2π/ModulationRate, ~126 time units at nominal settings
func (f Field) Envelope(time float64) float64 {
	return f.Amplitude + math.Sin(time*f.ModulationRate)*f.Modulation
}

// Perturbation returns the offset added to the base direction at (x, y)
func (f Field) Perturbation(x, y, time, phase float64) float64 {
	p := f.Noise(x, y, phase) * f.Envelope(time)
	if f.MaxPerturbation > 0 {
		p = vmath.Clamp(p, -f.MaxPerturbation, f.MaxPerturbation)
	}
	return p
}

// Angle returns the flow angle a particle at (x, y) should follow
func (f Field) Angle(x, y, direction, time, phase float64) float64 {
	return direction + f.Perturbation(x, y, time, phase)
}

// Bound reports the largest |Angle - direction| the field can produce
func (f Field) Bound() float64 {
	peak := math.Abs(f.Amplitude) + math.Abs(f.Modulation)
	if f.MaxPerturbation > 0 && f.MaxPerturbation < peak {
		return f.MaxPerturbation
	}
	return peak
}
