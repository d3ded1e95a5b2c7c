// Package core holds process-wide safety nets shared by every goroutine
package core

import (
	"sync"
)

// Finalizer restores a terminal it owns
type Finalizer interface {
	Fini()
}

var (
	crashMu       sync.Mutex
	crashTerminal Finalizer
	exitFn        = exitProcess
)

// SetCrashTerminal registers the screen HandleCrash restores before printing the trace
// Passing nil falls back to the raw escape-sequence reset
func SetCrashTerminal(t Finalizer) {
	crashMu.Lock()
	crashTerminal = t
	crashMu.Unlock()
}

// Go runs a function in a new goroutine with panic recovery
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
