package vmath

import (
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{Tau + 0.25, 0.25},
	}

	for _, tt := range tests {
		got := NormalizeAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("NormalizeAngle(%v) = %v outside (-π, π]", tt.in, got)
		}
	}
}

func TestWrapAngle(t *testing.T) {
	for _, a := range []float64{-10, -Tau, -1e-18, 0, 1, Tau, 7 * math.Pi} {
		got := WrapAngle(a)
		if got < 0 || got >= Tau {
			t.Errorf("WrapAngle(%v) = %v outside [0, 2π)", a, got)
		}
	}
}

func TestApproachAngleTakesShortArc(t *testing.T) {
	// 350° to 10° must pass through 0°, not 180°
	current := 350 * math.Pi / 180
	target := 10 * math.Pi / 180

	next := ApproachAngle(current, target, 0.05)
	moved := AngleDiff(current, next)
	want := 20 * math.Pi / 180 * 0.05
	if math.Abs(moved-want) > 1e-9 {
		t.Errorf("moved %v rad, want %v", moved, want)
	}
}

func TestClampAndLerp(t *testing.T) {
	if Clamp(1, 2, 25) != 2 || Clamp(30, 2, 25) != 25 || Clamp(5, 2, 25) != 5 {
		t.Error("Clamp bounds wrong")
	}
	if Lerp(0, 10, 0.3) != 3 {
		t.Error("Lerp wrong")
	}
	if Dist(0, 0, 3, 4) != 5 {
		t.Error("Dist wrong")
	}
}

func collect(x1, y1, x2, y2 float64) [][2]int {
	var cells [][2]int
	tr := NewGridTraverser(x1, y1, x2, y2)
	for tr.Next() {
		x, y := tr.Pos()
		cells = append(cells, [2]int{x, y})
	}
	return cells
}

func TestGridTraverser(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		wantLen        int
	}{
		{"Same cell", 1.2, 1.3, 1.8, 1.9, 1},
		{"Horizontal", 0.5, 0.5, 4.5, 0.5, 5},
		{"Vertical up", 2.5, 5.5, 2.5, 1.5, 5},
		{"Diagonal", 0.2, 0.3, 3.7, 3.6, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := collect(tt.x1, tt.y1, tt.x2, tt.y2)
			if len(cells) != tt.wantLen {
				t.Fatalf("got %d cells %v, want %d", len(cells), cells, tt.wantLen)
			}
			first, last := cells[0], cells[len(cells)-1]
			if first != [2]int{int(tt.x1), int(tt.y1)} {
				t.Errorf("first cell %v", first)
			}
			if last != [2]int{int(tt.x2), int(tt.y2)} {
				t.Errorf("last cell %v", last)
			}
			// 4-connected walk
			for i := 1; i < len(cells); i++ {
				dx := abs(cells[i][0] - cells[i-1][0])
				dy := abs(cells[i][1] - cells[i-1][1])
				if dx+dy != 1 {
					t.Errorf("step %d not 4-connected: %v -> %v", i, cells[i-1], cells[i])
				}
			}
		})
	}
}
