package terminal

import (
	"io"
	"os"
)

var (
	seqMouseOff     = []byte("\x1b[?1003l\x1b[?1002l\x1b[?1000l\x1b[?1006l")
	seqFocusOff     = []byte("\x1b[?1004l")
	seqCursorShow   = []byte("\x1b[?25h")
	seqAltScreenOff = []byte("\x1b[?1049l")
	seqSGR0         = []byte("\x1b[0m")
	seqAutoWrapOn   = []byte("\x1b[?7h")
)

// EmergencyReset restores a usable terminal without going through tcell
// Used from panic handlers where the screen state is unknown
func EmergencyReset(w io.Writer) {
	w.Write(seqMouseOff)
	w.Write(seqFocusOff)
	w.Write(seqCursorShow)
	w.Write(seqAltScreenOff)
	w.Write(seqSGR0)
	w.Write(seqAutoWrapOn)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
