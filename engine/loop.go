package engine

import (
	"context"

	"github.com/lixenwraith/windmap/core"
	"github.com/lixenwraith/windmap/particle"
	"github.com/lixenwraith/windmap/render"
	"github.com/lixenwraith/windmap/terminal"
)

// Start runs the frame loop until ctx is done or Stop is called
// Any loop already running is cancelled and awaited first, so at most one exists
func (w *WindMap) Start(ctx context.Context) {
	w.Stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	w.loopMu.Lock()
	w.loopCancel = cancel
	w.loopDone = done
	w.loopMu.Unlock()

	core.Go(func() { w.loop(loopCtx, done) })
}

// Stop cancels the frame loop and waits for it to exit
func (w *WindMap) Stop() {
	w.loopMu.Lock()
	cancel, done := w.loopCancel, w.loopDone
	w.loopCancel, w.loopDone = nil, nil
	w.loopMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Running reports whether a frame loop is active
func (w *WindMap) Running() bool {
	w.loopMu.Lock()
	defer w.loopMu.Unlock()
	return w.loopCancel != nil
}

// loop owns all simulation writes while it runs: ticks, surface events and commands
func (w *WindMap) loop(ctx context.Context, done chan struct{}) {
	defer w.finishLoop(done)

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.events:
			w.handleEvent(ev)
		case fn := <-w.cmds:
			fn()
		case <-ticker.Chan():
			if w.State() == StateRunning {
				w.Step()
			}
		}
	}
}

// finishLoop releases the loop slot when the loop ended on its own context,
// then runs commands posted while it was exiting
func (w *WindMap) finishLoop(done chan struct{}) {
	close(done)

	w.loopMu.Lock()
	defer w.loopMu.Unlock()
	if w.loopDone == done {
		w.loopCancel()
		w.loopCancel, w.loopDone = nil, nil
	}
	for {
		select {
		case fn := <-w.cmds:
			fn()
		default:
			return
		}
	}
}

// post runs fn on the loop goroutine, or inline when no loop is running
// loopMu is held across the send so an exiting loop drains whatever was queued
func (w *WindMap) post(fn func()) {
	w.loopMu.Lock()
	defer w.loopMu.Unlock()

	done := w.loopDone
	if done == nil {
		fn()
		return
	}
	select {
	case w.cmds <- fn:
	case <-done:
		fn()
	}
}

// enqueue is the surface subscription handler; it never blocks the surface
func (w *WindMap) enqueue(ev terminal.Event) {
	select {
	case w.events <- ev:
	default:
		w.log.Debug("event queue full, dropping event", "type", ev.Type)
	}
}

// handleEvent applies one surface event on the loop goroutine
func (w *WindMap) handleEvent(ev terminal.Event) {
	switch ev.Type {
	case terminal.EventResize:
		w.Resize(ev.Width, ev.Height)
	case terminal.EventMouse:
		w.mu.Lock()
		x, y := w.viewport.CellCenter(ev.X, ev.Y)
		w.mu.Unlock()
		w.SetPointer(x, y)
	case terminal.EventLeave:
		w.ClearPointer()
	case terminal.EventKey:
		switch {
		case ev.IsQuit():
			if w.onQuit != nil {
				w.onQuit()
			}
		case w.onKey != nil:
			w.onKey(ev)
		}
	case terminal.EventClosed:
		if w.onQuit != nil {
			w.onQuit()
		}
	}
}

// Step advances one frame and presents it
// While waiting for size it only re-measures the surface; uninitialized it does nothing
// Given the same seed and inputs the simulation is deterministic
func (w *WindMap) Step() {
	start := w.clock.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateUninitialized:
		return
	case StateWaitingForSize:
		if !w.measureLocked() {
			return
		}
		w.stopRetryLocked()
		w.activateLocked()
	}

	bounds := w.viewport.Bounds()
	band := w.pool.Band()

	w.flow.Advance()

	w.burstTimer++
	if w.burstTimer > band.BurstInterval {
		w.burstTimer = 0
		w.pool.SpawnBurst(particle.BurstSize, bounds)
		w.bursts++
		w.metrics.BurstsTotal.Inc()
		w.ambience.Gust()
	}

	resets := w.pool.Advance(w.field, &w.flow, w.obs.Speed, bounds)
	w.pool.Trim(band.Ceiling)
	w.frames++

	frame := render.Frame{
		Viewport:  w.viewport,
		Particles: w.pool.Particles(),
		Flow:      w.flow,
		Obs:       w.obs,
		Report:    w.report,
		Pointer:   w.pointer,
		Status:    w.status,
	}
	w.renderer.Draw(w.buf, &frame)
	if w.surface != nil {
		w.surface.Present(w.buf)
	}

	w.metrics.FramesTotal.Inc()
	w.metrics.ResetsTotal.Add(float64(resets))
	w.metrics.Particles.Set(float64(w.pool.Len()))
	w.metrics.FrameDuration.Observe(w.clock.Since(start).Seconds())
}
