package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// eventBuffer bounds queued events between the poller and the consumer
const eventBuffer = 256

// Screen owns a tcell screen and the goroutine polling it
type Screen struct {
	screen tcell.Screen
	mode   ColorMode

	events chan Event
	quit   chan struct{}

	initOnce sync.Once
	finiOnce sync.Once
	started  bool
	wg       sync.WaitGroup
}

// New creates a screen on the controlling terminal
func New(mode ColorMode) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	return NewWithScreen(s, mode), nil
}

// NewWithScreen wraps an existing tcell screen, tests pass a simulation screen
func NewWithScreen(s tcell.Screen, mode ColorMode) *Screen {
	return &Screen{
		screen: s,
		mode:   mode,
		events: make(chan Event, eventBuffer),
		quit:   make(chan struct{}),
	}
}

// Init puts the terminal into raw mode, enables mouse motion and starts polling
func (s *Screen) Init() error {
	var err error
	s.initOnce.Do(func() {
		if err = s.screen.Init(); err != nil {
			err = fmt.Errorf("init screen: %w", err)
			return
		}
		s.screen.EnableMouse(tcell.MouseMotionEvents)
		s.screen.EnableFocus()
		s.screen.HideCursor()
		s.screen.Clear()
		s.started = true

		s.wg.Add(1)
		// Poller runs as a raw goroutine since it interacts directly with the terminal
		go s.poll()
	})
	return err
}

// Fini restores the terminal and stops the poller
func (s *Screen) Fini() {
	s.finiOnce.Do(func() {
		close(s.quit)
		if s.started {
			s.screen.Fini()
		}
		s.wg.Wait()
	})
}

// Mode returns the color mode used for output
func (s *Screen) Mode() ColorMode {
	return s.mode
}

// Size returns the current size in cells
func (s *Screen) Size() (int, int) {
	return s.screen.Size()
}

// Events returns the translated event stream; closed after EventClosed
func (s *Screen) Events() <-chan Event {
	return s.events
}

// Flush writes a row-major cell grid and shows it
func (s *Screen) Flush(cells []Cell, width, height int) {
	for y := 0; y < height; y++ {
		row := cells[y*width : (y+1)*width]
		for x, c := range row {
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			s.screen.SetContent(x, y, r, nil, Style(c, s.mode))
		}
	}
	s.screen.Show()
}

// Sync forces a full redraw, used after resize
func (s *Screen) Sync() {
	s.screen.Sync()
}

func (s *Screen) poll() {
	defer s.wg.Done()
	defer close(s.events)
	defer func() {
		if r := recover(); r != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mEVENT POLLER CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			// PollEvent returns nil once the screen is finalized
			select {
			case s.events <- Event{Type: EventClosed}:
			default:
			}
			return
		}

		out, ok := translate(ev)
		if !ok {
			continue
		}
		select {
		case s.events <- out:
		case <-s.quit:
			return
		}
	}
}
