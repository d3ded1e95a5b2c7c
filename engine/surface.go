package engine

import (
	"sync"

	"github.com/lixenwraith/windmap/core"
	"github.com/lixenwraith/windmap/render"
	"github.com/lixenwraith/windmap/terminal"
)

// Surface is where frames are presented and where size and pointer events come from
type Surface interface {
	// Size returns the drawable area in cells, zero when not yet laid out
	Size() (cols, rows int)
	// Subscribe registers fn for surface events until the subscription is closed
	Subscribe(fn func(terminal.Event)) Subscription
	// Present displays a finished frame
	Present(buf *render.Buffer)
}

// Subscription detaches an event handler
type Subscription interface {
	Close()
}

// subscriptionFunc adapts a function to Subscription
type subscriptionFunc func()

func (f subscriptionFunc) Close() { f() }

// ScreenSurface adapts a terminal.Screen to Surface
// One pump goroutine fans screen events out to all current subscribers
type ScreenSurface struct {
	screen *terminal.Screen

	mu       sync.Mutex
	handlers map[int]func(terminal.Event)
	nextID   int
	pumpOnce sync.Once
}

// NewScreenSurface wraps an initialized screen
func NewScreenSurface(s *terminal.Screen) *ScreenSurface {
	return &ScreenSurface{
		screen:   s,
		handlers: make(map[int]func(terminal.Event)),
	}
}

// Size returns the screen size in cells
func (s *ScreenSurface) Size() (int, int) {
	return s.screen.Size()
}

// Present flushes the buffer to the terminal
func (s *ScreenSurface) Present(buf *render.Buffer) {
	s.screen.Flush(buf.Cells(), buf.Width(), buf.Height())
}

// Subscribe registers fn; closing the subscription twice is harmless
func (s *ScreenSurface) Subscribe(fn func(terminal.Event)) Subscription {
	s.pumpOnce.Do(func() { core.Go(s.pump) })

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return subscriptionFunc(func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	})
}

// Subscribers returns the number of attached handlers
func (s *ScreenSurface) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// pump runs until the screen closes its event channel
func (s *ScreenSurface) pump() {
	for ev := range s.screen.Events() {
		s.mu.Lock()
		fns := make([]func(terminal.Event), 0, len(s.handlers))
		for _, fn := range s.handlers {
			fns = append(fns, fn)
		}
		s.mu.Unlock()

		for _, fn := range fns {
			fn(ev)
		}
	}
}

// Headless is a fixed-size surface with no events, used by the simulator
type Headless struct {
	cols, rows int

	mu     sync.Mutex
	frames int
	last   *render.Buffer
}

// NewHeadless creates a headless surface of the given size in cells
func NewHeadless(cols, rows int) *Headless {
	return &Headless{cols: cols, rows: rows}
}

func (h *Headless) Size() (int, int) { return h.cols, h.rows }

func (h *Headless) Subscribe(func(terminal.Event)) Subscription {
	return subscriptionFunc(func() {})
}

func (h *Headless) Present(buf *render.Buffer) {
	h.mu.Lock()
	h.frames++
	h.last = buf
	h.mu.Unlock()
}

// Frames returns how many frames were presented
func (h *Headless) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Last returns the most recently presented buffer
func (h *Headless) Last() *render.Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}
