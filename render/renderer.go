// Package render draws the wind map scene into a cell buffer
package render

import (
	"math"

	"github.com/lixenwraith/windmap/particle"
	"github.com/lixenwraith/windmap/terminal"
	"github.com/lixenwraith/windmap/vmath"
	"github.com/lixenwraith/windmap/weather"
)

// Renderer composes one frame: sky, mist, compass, particles, then the text overlays
// Stateless apart from its options; safe to reuse across frames
type Renderer struct {
	// Overlays toggles the header and forecast rows
	Overlays bool
}

// NewRenderer creates a renderer with overlays enabled
func NewRenderer() *Renderer {
	return &Renderer{Overlays: true}
}

// Draw renders f into buf, resizing buf to the viewport first
func (r *Renderer) Draw(buf *Buffer, f *Frame) {
	vp := f.Viewport
	if buf.Width() != vp.Cols || buf.Height() != vp.Rows {
		buf.Resize(vp.Cols, vp.Rows)
	}
	if vp.Empty() {
		return
	}

	obs := f.Obs.Normalized()

	r.drawBackground(buf, vp, obs.IsNight)
	if weather.IsOvercast(obs.Code) {
		r.drawMist(buf, vp, f.Flow.Time, obs.IsNight)
	}
	r.drawCompass(buf, vp, f.Flow.Time, f.Flow.Direction, obs.IsNight)
	r.drawParticles(buf, f, obs.Speed)

	if r.Overlays {
		r.drawHeader(buf, f, obs)
		r.drawForecast(buf, f, obs.IsNight)
	}
}

// drawBackground fills each row with the vertical sky gradient sampled at the row center
func (r *Renderer) drawBackground(buf *Buffer, vp Viewport, isNight bool) {
	top, bottom := Sky(isNight)
	buf.Clear(top)
	for y := 0; y < vp.Rows; y++ {
		c := Lerp(top, bottom, (float64(y)+0.5)/float64(vp.Rows))
		for x := 0; x < vp.Cols; x++ {
			buf.SetBgOnly(x, y, c)
		}
	}
}

// MistCenter returns the canvas center of mist blob i
func MistCenter(vp Viewport, time float64, i int) (float64, float64) {
	x := vp.Width()*0.2 + float64(i)*MistSpacing
	y := vp.Height()*0.3 + math.Sin(time+float64(i))*MistSway
	return x, y
}

// drawMist blends translucent white discs over the sky; overlaps compound like canvas fills
func (r *Renderer) drawMist(buf *Buffer, vp Viewport, time float64, isNight bool) {
	alpha := MistAlphaDay
	if isNight {
		alpha = MistAlphaNight
	}
	for i := 0; i < MistBlobs; i++ {
		mx, my := MistCenter(vp, time, i)
		fillDisc(buf, vp, mx, my, MistRadius, MistColor, alpha)
	}
}

// fillDisc blends src into every cell whose center lies within radius of (cx, cy)
func fillDisc(buf *Buffer, vp Viewport, cx, cy, radius float64, src RGB, alpha float64) {
	x0, y0 := vp.CellOf(cx-radius, cy-radius)
	x1, y1 := vp.CellOf(cx+radius, cy+radius)
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, vp.Cols-1), min(y1, vp.Rows-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			px, py := vp.CellCenter(x, y)
			if vmath.Dist(px, py, cx, cy) <= radius {
				buf.BlendBg(x, y, src, alpha)
			}
		}
	}
}

// ParticleAlpha returns the stroke opacity for a particle given pointer proximity
// Fades in and out over the particle's life, brightened near the pointer, capped at 1
func ParticleAlpha(p *particle.Particle, ptr Pointer) float64 {
	alpha := math.Sin(p.LifeRatio()*math.Pi)*PeakAlpha + HoverAlpha(p, ptr)
	return vmath.Clamp(alpha, 0, 1)
}

// HoverAlpha returns the pointer proximity boost for a particle
func HoverAlpha(p *particle.Particle, ptr Pointer) float64 {
	if !ptr.Active {
		return 0
	}
	d := vmath.Dist(p.X, p.Y, ptr.X, ptr.Y)
	if d >= HoverRadius {
		return 0
	}
	return (1 - d/HoverRadius) * HoverStrength
}

// drawParticles rasterizes every trail polyline into cells
func (r *Renderer) drawParticles(buf *Buffer, f *Frame, speed float64) {
	vp := f.Viewport
	glow := speed > GlowSpeed

	for _, p := range f.Particles {
		if len(p.Trail) < 2 {
			continue
		}
		hover := HoverAlpha(p, f.Pointer)
		alpha := ParticleAlpha(p, f.Pointer)
		if alpha <= 0 {
			continue
		}
		heavy := p.Thickness >= HeavyWidth || hover > 0
		color := FromColorful(p.Color)

		for j := 1; j < len(p.Trail); j++ {
			a, b := p.Trail[j-1], p.Trail[j]
			glyph, attrs := SegmentGlyph(b.X-a.X, b.Y-a.Y, heavy)

			ax, ay := vp.ToCell(a.X, a.Y)
			bx, by := vp.ToCell(b.X, b.Y)
			tr := vmath.NewGridTraverser(ax, ay, bx, by)
			for tr.Next() {
				x, y := tr.Pos()
				if glow {
					buf.BlendBg(x, y, color, GlowAlpha*alpha)
				}
				buf.Stroke(x, y, glyph, color, alpha, attrs)
			}
		}
	}
}

// SegmentGlyph picks a line glyph for a canvas-space segment direction
// Canvas y grows downward, so a segment toward bottom-right is drawn as ╲
func SegmentGlyph(dx, dy float64, heavy bool) (rune, terminal.Attr) {
	attrs := terminal.AttrNone
	if heavy {
		attrs = terminal.AttrBold
	}
	if dx == 0 && dy == 0 {
		return '·', attrs
	}

	a := math.Atan2(dy, dx)
	if a < 0 {
		a += math.Pi
	}
	if a >= math.Pi {
		a -= math.Pi
	}

	switch {
	case a < math.Pi/8 || a >= 7*math.Pi/8:
		if heavy {
			return '━', attrs
		}
		return '─', attrs
	case a < 3*math.Pi/8:
		return '╲', attrs
	case a < 5*math.Pi/8:
		if heavy {
			return '┃', attrs
		}
		return '│', attrs
	default:
		return '╱', attrs
	}
}
