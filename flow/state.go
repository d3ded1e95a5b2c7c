package flow

import (
	"github.com/lixenwraith/windmap/vmath"
)

// Per-frame advance constants
const (
	InterpolationRate = 0.05  // fraction of the remaining arc closed each frame
	TimeStep          = 0.01  // simulated time per frame
	PhaseStep         = 0.005 // noise phase drift per frame
)

// State is the driver-owned direction and clock of the field
type State struct {
	Direction   float64 // current flow angle, radians in [0, 2π)
	Target      float64 // flow angle derived from the latest bearing
	Time        float64 // elapsed simulated time, monotonic
	NoiseOffset float64 // phase of the spatial noise
}

// Retarget points the state at a new flow angle
// The first call snaps Direction so the opening frame does not sweep in
func (s *State) Retarget(angle float64, first bool) {
	s.Target = vmath.WrapAngle(angle)
	if first {
		s.Direction = s.Target
	}
}

// Advance runs one frame: interpolate toward the target along the shortest arc,
// then move time and noise phase forward
func (s *State) Advance() {
	s.Direction = vmath.ApproachAngle(s.Direction, s.Target, InterpolationRate)
	s.Time += TimeStep
	s.NoiseOffset += PhaseStep
}

// Remaining returns the signed arc still to close, in (-π, π]
func (s *State) Remaining() float64 {
	return vmath.AngleDiff(s.Direction, s.Target)
}
