package render

// Scene colors
var (
	DaySkyTop      = MustHex("#60a5fa")
	DaySkyBottom   = MustHex("#1e3a8a")
	NightSkyTop    = MustHex("#0f172a")
	NightSkyBottom = MustHex("#000000")

	MistColor = RGB{R: 255, G: 255, B: 255}

	// Compass contrast pairs, dark ink on the day sky and pale ink at night
	DayInk   = MustHex("#1e293b")
	NightInk = MustHex("#e2e8f0")

	DayAccent   = MustHex("#b91c1c")
	NightAccent = MustHex("#f87171")
)

// Mist, hover and compass tuning in canvas pixels
const (
	MistBlobs      = 5
	MistRadius     = 60.0
	MistSpacing    = 150.0
	MistSway       = 20.0
	MistAlphaDay   = 0.1
	MistAlphaNight = 0.03

	HoverRadius   = 80.0
	HoverStrength = 0.5
	PeakAlpha     = 0.8

	GlowSpeed  = 15.0 // wind speed above which particles glow
	GlowAlpha  = 0.25
	HeavyWidth = 1.5 // thickness from which heavy glyphs are used

	CompassInset  = 40.0
	CompassRadius = 25.0
	CompassPulse  = 0.05
	CompassFill   = 0.1
	CompassRing   = 0.3
	CompassSpoke  = 0.5
)

// Sky returns the gradient endpoints for the time of day
func Sky(isNight bool) (top, bottom RGB) {
	if isNight {
		return NightSkyTop, NightSkyBottom
	}
	return DaySkyTop, DaySkyBottom
}

// Ink returns the foreground and accent for overlays
func Ink(isNight bool) (fg, accent RGB) {
	if isNight {
		return NightInk, NightAccent
	}
	return DayInk, DayAccent
}
