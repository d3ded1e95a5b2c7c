package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/lixenwraith/windmap/terminal"
)

// crashOutput receives the crash report
var crashOutput io.Writer = os.Stderr

func exitProcess() {
	os.Exit(1)
}

// HandleCrash is the unified panic handler that resets the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	t := crashTerminal
	crashMu.Unlock()

	// Terminal cleanup if available
	if t != nil {
		t.Fini()
	} else {
		// Fallback for edge cases
		terminal.EmergencyReset(os.Stdout)
	}

	fmt.Fprintf(crashOutput, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOutput, "Stack Trace:\r\n%s\r\n", debug.Stack())

	exitFn()
}
