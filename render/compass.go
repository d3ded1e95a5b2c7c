package render

import (
	"math"

	"github.com/lixenwraith/windmap/terminal"
	"github.com/lixenwraith/windmap/vmath"
)

type compassMark struct {
	label rune
	angle float64 // canvas radians, north is up
	reach float64 // label distance from center, pixels before pulse
	bold  bool
}

var compassMarks = [4]compassMark{
	{'N', -math.Pi / 2, CompassRadius + 5, true},
	{'E', 0, CompassRadius - 2, false},
	{'S', math.Pi / 2, CompassRadius - 2, false},
	{'W', math.Pi, CompassRadius - 2, false},
}

// needleGlyphs maps flow direction octants, starting east and turning clockwise on screen
var needleGlyphs = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// CompassCenter returns the canvas position of the compass hub
func CompassCenter(vp Viewport) (float64, float64) {
	return vp.Width() - CompassInset, vp.Height() - CompassInset
}

// CompassScale returns the breathing scale applied to the whole compass
func CompassScale(time float64) float64 {
	return 1 + math.Sin(time*2)*CompassPulse
}

// NeedleGlyph returns the arrow for a canvas flow angle
func NeedleGlyph(direction float64) rune {
	idx := int(math.Round(vmath.WrapAngle(direction)/(math.Pi/4))) % 8
	return needleGlyphs[idx]
}

// shade is the disc tint: light over the night sky, dark over the day sky
func shade(isNight bool) RGB {
	if isNight {
		return RGB{R: 255, G: 255, B: 255}
	}
	return RGB{}
}

// drawCompass draws the disc, ring, spokes, cardinal labels and the flow needle
func (r *Renderer) drawCompass(buf *Buffer, vp Viewport, time, direction float64, isNight bool) {
	cx, cy := CompassCenter(vp)
	scale := CompassScale(time)
	radius := CompassRadius * scale
	tint := shade(isNight)
	ink, accent := Ink(isNight)

	// Disc and ring share one pass; the ring band is the outer half cell
	band := math.Min(vp.CellW, vp.CellH) / 2
	x0, y0 := vp.CellOf(cx-radius, cy-radius)
	x1, y1 := vp.CellOf(cx+radius, cy+radius)
	for y := max(y0, 0); y <= min(y1, vp.Rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, vp.Cols-1); x++ {
			px, py := vp.CellCenter(x, y)
			d := vmath.Dist(px, py, cx, cy)
			if d > radius {
				continue
			}
			buf.BlendBg(x, y, tint, CompassFill)
			if d > radius-band {
				buf.BlendBg(x, y, tint, CompassRing)
			}
		}
	}

	hx, hy := vp.ToCell(cx, cy)
	for _, m := range compassMarks {
		cos, sin := math.Cos(m.angle), math.Sin(m.angle)

		// Spoke from hub to just inside the ring
		spoke := (CompassRadius - 5) * scale
		ex, ey := vp.ToCell(cx+cos*spoke, cy+sin*spoke)
		glyph, attrs := SegmentGlyph(cos, sin, m.bold)
		tr := vmath.NewGridTraverser(hx, hy, ex, ey)
		for tr.Next() {
			x, y := tr.Pos()
			buf.Stroke(x, y, glyph, ink, CompassSpoke, attrs)
		}

		lx, ly := vp.CellOf(cx+cos*m.reach*scale, cy+sin*m.reach*scale)
		attrs = terminal.AttrNone
		if m.bold {
			attrs = terminal.AttrBold
		}
		buf.SetFgOnly(lx, ly, m.label, ink, attrs)
	}

	nx, ny := vp.CellOf(cx, cy)
	buf.SetFgOnly(nx, ny, NeedleGlyph(direction), accent, terminal.AttrBold)
}
