package terminal

import "github.com/gdamore/tcell/v2"

// Attr represents text attributes (bitmask)
type Attr uint8

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrItalic    Attr = 1 << 2
	AttrUnderline Attr = 1 << 3
	AttrReverse   Attr = 1 << 4
)

// Cell represents a single terminal cell
type Cell struct {
	Rune  rune
	Fg    RGB
	Bg    RGB
	Attrs Attr
}

// tcellAttrs converts Attr to tcell's attribute mask
func tcellAttrs(a Attr) tcell.AttrMask {
	mask := tcell.AttrNone
	if a&AttrBold != 0 {
		mask |= tcell.AttrBold
	}
	if a&AttrDim != 0 {
		mask |= tcell.AttrDim
	}
	if a&AttrItalic != 0 {
		mask |= tcell.AttrItalic
	}
	if a&AttrUnderline != 0 {
		mask |= tcell.AttrUnderline
	}
	if a&AttrReverse != 0 {
		mask |= tcell.AttrReverse
	}
	return mask
}
