package particle

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette describes the HSL range particle colors are drawn from
type Palette struct {
	HueMin, HueSpan float64 // degrees
	Saturation      float64 // 0..1
	Lightness       float64 // 0..1
}

var (
	// DayPalette gives saturated blues and cyans
	DayPalette = Palette{HueMin: 200, HueSpan: 30, Saturation: 0.8, Lightness: 0.5}
	// NightPalette gives paler, bluer streaks
	NightPalette = Palette{HueMin: 200, HueSpan: 40, Saturation: 0.7, Lightness: 0.7}
)

// PaletteFor selects the palette for the time of day
func PaletteFor(isNight bool) Palette {
	if isNight {
		return NightPalette
	}
	return DayPalette
}

// Sample draws a hue and its color
func (p Palette) Sample(rng *rand.Rand) (float64, colorful.Color) {
	hue := p.HueMin + rng.Float64()*p.HueSpan
	return hue, colorful.Hsl(hue, p.Saturation, p.Lightness)
}

// Contains reports whether a hue came from this palette
func (p Palette) Contains(hue float64) bool {
	return hue >= p.HueMin && hue < p.HueMin+p.HueSpan
}
