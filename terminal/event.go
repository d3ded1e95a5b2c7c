package terminal

import "github.com/gdamore/tcell/v2"

// EventType classifies translated screen events
type EventType uint8

const (
	EventNone   EventType = iota
	EventResize           // Width/Height hold the new size in cells
	EventMouse            // X/Y hold the pointer cell
	EventLeave            // pointer left the window (focus lost)
	EventKey              // Key/Rune hold the key
	EventClosed           // screen finalized, no more events
)

// Event is a screen event reduced to what the animation consumes
type Event struct {
	Type          EventType
	Width, Height int
	X, Y          int
	Key           tcell.Key
	Rune          rune
}

// translate maps a tcell event, returning false for events with no meaning here
func translate(ev tcell.Event) (Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}, true
	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{Type: EventMouse, X: x, Y: y}, true
	case *tcell.EventFocus:
		if !e.Focused {
			return Event{Type: EventLeave}, true
		}
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: e.Key(), Rune: e.Rune()}, true
	}
	return Event{}, false
}

// IsQuit reports whether a key event asks to exit
func (e Event) IsQuit() bool {
	if e.Type != EventKey {
		return false
	}
	return e.Key == tcell.KeyEscape || e.Key == tcell.KeyCtrlC ||
		(e.Key == tcell.KeyRune && (e.Rune == 'q' || e.Rune == 'Q'))
}
