package engine

// State is the lifecycle phase of a WindMap
type State uint8

const (
	StateUninitialized State = iota
	StateWaitingForSize
	StateRunning
)

var stateNames = [...]string{"uninitialized", "waiting_for_size", "running"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
