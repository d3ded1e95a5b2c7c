package render

import (
	"math"

	"github.com/lixenwraith/windmap/flow"
	"github.com/lixenwraith/windmap/particle"
	"github.com/lixenwraith/windmap/weather"
)

// Default cell scale, canvas pixels per terminal column and row
const (
	DefaultCellW = 10.0
	DefaultCellH = 20.0
)

// Viewport maps terminal cells onto the canvas
type Viewport struct {
	Cols, Rows   int
	CellW, CellH float64 // canvas pixels per cell
}

// NewViewport builds a viewport, substituting default cell scale for non-positive values
func NewViewport(cols, rows int, cellW, cellH float64) Viewport {
	if cellW <= 0 {
		cellW = DefaultCellW
	}
	if cellH <= 0 {
		cellH = DefaultCellH
	}
	return Viewport{Cols: cols, Rows: rows, CellW: cellW, CellH: cellH}
}

// Width returns the canvas width in pixels
func (v Viewport) Width() float64 { return float64(v.Cols) * v.CellW }

// Height returns the canvas height in pixels
func (v Viewport) Height() float64 { return float64(v.Rows) * v.CellH }

// Bounds returns the canvas rectangle particles live in
func (v Viewport) Bounds() particle.Bounds {
	return particle.Bounds{W: v.Width(), H: v.Height()}
}

// Empty reports a zero-area viewport
func (v Viewport) Empty() bool {
	return v.Cols <= 0 || v.Rows <= 0
}

// ToCell converts canvas pixels to fractional cell coordinates
func (v Viewport) ToCell(x, y float64) (float64, float64) {
	return x / v.CellW, y / v.CellH
}

// CellOf returns the cell containing canvas point (x, y)
func (v Viewport) CellOf(x, y float64) (int, int) {
	cx, cy := v.ToCell(x, y)
	return int(math.Floor(cx)), int(math.Floor(cy))
}

// CellCenter returns the canvas position of a cell center
func (v Viewport) CellCenter(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * v.CellW, (float64(row) + 0.5) * v.CellH
}

// Pointer is the hover position in canvas pixels
type Pointer struct {
	X, Y   float64
	Active bool
}

// Frame is a read-only snapshot of everything one draw needs
// The renderer never writes through the particle pointers or the flow state
type Frame struct {
	Viewport  Viewport
	Particles []*particle.Particle
	Flow      flow.State
	Obs       weather.Observation
	Report    *weather.Report // nil until a full report arrives
	Pointer   Pointer
	Status    string // feed problem shown under the header, empty when healthy
}
