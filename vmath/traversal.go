package vmath

import "math"

// GridTraverser is a zero-allocation iterator over the grid cells a segment crosses
// Amanatides-Woo DDA in float64; coordinates are in cell units
type GridTraverser struct {
	currX, currY     int
	targetX, targetY int
	stepX, stepY     int

	tMaxX, tMaxY     float64
	tDeltaX, tDeltaY float64

	limit   int
	started bool
	done    bool
}

// NewGridTraverser creates an iterator from (x1, y1) to (x2, y2)
func NewGridTraverser(x1, y1, x2, y2 float64) GridTraverser {
	ix, iy := int(math.Floor(x1)), int(math.Floor(y1))
	tx, ty := int(math.Floor(x2)), int(math.Floor(y2))

	t := GridTraverser{
		currX: ix, currY: iy,
		targetX: tx, targetY: ty,
		stepX: 1, stepY: 1,
	}

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		t.stepX = -1
		dx = -dx
	}
	if dy < 0 {
		t.stepY = -1
		dy = -dy
	}

	if dx == 0 {
		t.tMaxX = math.Inf(1)
		t.tDeltaX = math.Inf(1)
	} else {
		t.tDeltaX = 1 / dx
		frac := x1 - math.Floor(x1)
		if t.stepX > 0 {
			t.tMaxX = (1 - frac) * t.tDeltaX
		} else {
			t.tMaxX = frac * t.tDeltaX
		}
	}

	if dy == 0 {
		t.tMaxY = math.Inf(1)
		t.tDeltaY = math.Inf(1)
	} else {
		t.tDeltaY = 1 / dy
		frac := y1 - math.Floor(y1)
		if t.stepY > 0 {
			t.tMaxY = (1 - frac) * t.tDeltaY
		} else {
			t.tMaxY = frac * t.tDeltaY
		}
	}

	// Manhattan distance bounds the walk against float drift
	t.limit = abs(tx-ix) + abs(ty-iy) + 1
	return t
}

// Next advances to the next cell, false when the segment is exhausted
func (t *GridTraverser) Next() bool {
	if t.done {
		return false
	}
	if !t.started {
		t.started = true
		if t.currX == t.targetX && t.currY == t.targetY {
			t.done = true
		}
		return true
	}

	t.limit--
	if t.limit <= 0 {
		t.done = true
		return false
	}

	if t.tMaxX < t.tMaxY {
		t.tMaxX += t.tDeltaX
		t.currX += t.stepX
	} else {
		t.tMaxY += t.tDeltaY
		t.currY += t.stepY
	}

	if t.currX == t.targetX && t.currY == t.targetY {
		t.done = true
	}
	return true
}

// Pos returns the current cell
func (t *GridTraverser) Pos() (int, int) {
	return t.currX, t.currY
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
