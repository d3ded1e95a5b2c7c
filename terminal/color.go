package terminal

import "github.com/gdamore/tcell/v2"

// ColorMode indicates terminal color capability
type ColorMode uint8

const (
	ColorMode256       ColorMode = iota // xterm-256 palette
	ColorModeTrueColor                  // 24-bit RGB
)

// String returns the flag spelling of the mode
func (m ColorMode) String() string {
	if m == ColorModeTrueColor {
		return "truecolor"
	}
	return "256"
}

// RGB represents a 24-bit color
type RGB struct {
	R, G, B uint8
}

// RGBBlack is the zero value black color
var RGBBlack = RGB{0, 0, 0}

// Equal returns true if colors match
func (c RGB) Equal(other RGB) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// Color cube levels for the 6x6x6 palette (indices 16-231)
var cubeValues = [6]uint8{0, 95, 135, 175, 215, 255}

// grayscaleStart is the first grayscale index (232-255 = 24 shades)
const grayscaleStart = 232

// nearestCube maps a channel value to the closest cube level index
func nearestCube(v uint8) int {
	best, bestDist := 0, 256
	for i, c := range cubeValues {
		d := abs(int(v) - int(c))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// RGBTo256 finds the nearest xterm-256 palette index for an RGB value
// Compares the best cube match with the best grayscale match by squared distance
func RGBTo256(c RGB) uint8 {
	ri, gi, bi := nearestCube(c.R), nearestCube(c.G), nearestCube(c.B)
	cube := RGB{cubeValues[ri], cubeValues[gi], cubeValues[bi]}
	cubeIdx := uint8(16 + 36*ri + 6*gi + bi)

	avg := (int(c.R) + int(c.G) + int(c.B)) / 3
	grayStep := (avg - 8 + 5) / 10
	if grayStep < 0 {
		grayStep = 0
	}
	if grayStep > 23 {
		grayStep = 23
	}
	level := uint8(8 + 10*grayStep)
	gray := RGB{level, level, level}

	if distSq(c, gray) < distSq(c, cube) {
		return uint8(grayscaleStart + grayStep)
	}
	return cubeIdx
}

func distSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToTcell converts an RGB into a tcell color for the given mode
func ToTcell(c RGB, mode ColorMode) tcell.Color {
	if mode == ColorModeTrueColor {
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	return tcell.PaletteColor(int(RGBTo256(c)))
}

// Style builds a tcell style from a cell
func Style(cell Cell, mode ColorMode) tcell.Style {
	return tcell.StyleDefault.
		Foreground(ToTcell(cell.Fg, mode)).
		Background(ToTcell(cell.Bg, mode)).
		Attributes(tcellAttrs(cell.Attrs))
}
