package render

import (
	"github.com/lixenwraith/windmap/terminal"
)

// Buffer is a frame-sized grid of terminal cells, drawn into by the renderer and
// flushed by the surface
type Buffer struct {
	cells  []terminal.Cell
	width  int
	height int
}

// NewBuffer creates a buffer of the given dimensions
func NewBuffer(w, h int) *Buffer {
	b := &Buffer{}
	b.Resize(w, h)
	return b
}

// Resize adjusts buffer dimensions, reusing the backing array when it fits
func (b *Buffer) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	size := w * h
	if cap(b.cells) < size {
		b.cells = make([]terminal.Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = w
	b.height = h
	b.Clear(RGB{})
}

// Clear resets every cell to a blank with the given background
func (b *Buffer) Clear(bg RGB) {
	blank := terminal.Cell{Rune: ' ', Bg: bg}
	for i := range b.cells {
		b.cells[i] = blank
	}
}

// Width returns the column count
func (b *Buffer) Width() int { return b.width }

// Height returns the row count
func (b *Buffer) Height() int { return b.height }

// Cells exposes the row-major cell slice for flushing
func (b *Buffer) Cells() []terminal.Cell { return b.cells }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the cell at (x, y), a zero cell when out of bounds
func (b *Buffer) Get(x, y int) terminal.Cell {
	if !b.inBounds(x, y) {
		return terminal.Cell{}
	}
	return b.cells[y*b.width+x]
}

// SetBgOnly updates the background color while preserving existing rune/foreground
func (b *Buffer) SetBgOnly(x, y int, bg RGB) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x].Bg = bg
}

// BlendBg alpha-blends src over the existing background
func (b *Buffer) BlendBg(x, y int, src RGB, alpha float64) {
	if !b.inBounds(x, y) {
		return
	}
	dst := &b.cells[y*b.width+x]
	dst.Bg = Blend(dst.Bg, src, alpha)
}

// SetFgOnly writes rune, foreground, and attrs while preserving existing background
func (b *Buffer) SetFgOnly(x, y int, r rune, fg RGB, attrs terminal.Attr) {
	if !b.inBounds(x, y) {
		return
	}
	dst := &b.cells[y*b.width+x]
	dst.Rune = r
	dst.Fg = fg
	dst.Attrs = attrs
}

// Stroke draws a glyph whose color is src seen through alpha over the cell background
func (b *Buffer) Stroke(x, y int, r rune, src RGB, alpha float64, attrs terminal.Attr) {
	if !b.inBounds(x, y) {
		return
	}
	dst := &b.cells[y*b.width+x]
	dst.Rune = r
	dst.Fg = Blend(dst.Bg, src, alpha)
	dst.Attrs = attrs
}

// Text writes a string left to right keeping backgrounds, returning the column after the last rune
func (b *Buffer) Text(x, y int, s string, fg RGB, attrs terminal.Attr) int {
	for _, r := range s {
		b.SetFgOnly(x, y, r, fg, attrs)
		x++
	}
	return x
}
