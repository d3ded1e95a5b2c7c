package render

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/windmap/terminal"
)

// RGB is the terminal cell color
type RGB = terminal.RGB

// Blend composites src over dst: src*alpha + dst*(1-alpha)
// Alpha outside (0, 1) returns one side unchanged
func Blend(dst, src RGB, alpha float64) RGB {
	switch {
	case alpha >= 1:
		return src
	case alpha <= 0:
		return dst
	}
	inv := 1 - alpha
	return RGB{
		R: uint8(float64(src.R)*alpha + float64(dst.R)*inv),
		G: uint8(float64(src.G)*alpha + float64(dst.G)*inv),
		B: uint8(float64(src.B)*alpha + float64(dst.B)*inv),
	}
}

// Lerp linearly interpolates between two colors
// t=0 returns a, t=1 returns b
func Lerp(a, b RGB, t float64) RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return RGB{
		R: uint8(float64(a.R) + t*float64(int(b.R)-int(a.R))),
		G: uint8(float64(a.G) + t*float64(int(b.G)-int(a.G))),
		B: uint8(float64(a.B) + t*float64(int(b.B)-int(a.B))),
	}
}

// FromColorful converts a go-colorful color, clamping out-of-gamut channels
func FromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// MustHex parses "#rrggbb", panicking on malformed input
// Intended for package-level color tables only
func MustHex(s string) RGB {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return FromColorful(c)
}
