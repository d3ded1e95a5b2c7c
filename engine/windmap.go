// Package engine drives the wind map animation: lifecycle, frame loop and surface events
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lixenwraith/windmap/audio"
	"github.com/lixenwraith/windmap/flow"
	"github.com/lixenwraith/windmap/observability"
	"github.com/lixenwraith/windmap/particle"
	"github.com/lixenwraith/windmap/render"
	"github.com/lixenwraith/windmap/terminal"
	"github.com/lixenwraith/windmap/weather"
)

// Driver defaults
const (
	DefaultFrameInterval  = 16 * time.Millisecond
	DefaultRetryDelay     = 200 * time.Millisecond
	DefaultMaxInitRetries = 50

	eventQueue   = 64
	commandQueue = 16
)

// Options configures a WindMap; zero fields take defaults
type Options struct {
	Clock          clockwork.Clock
	Rand           *rand.Rand
	Field          *flow.Field // nil uses flow.NewField
	CellW, CellH   float64     // canvas pixels per cell
	FrameInterval  time.Duration
	RetryDelay     time.Duration
	MaxInitRetries int
	Renderer       *render.Renderer
	Metrics        *observability.Metrics
	Logger         *slog.Logger
	Ambience       audio.Ambience

	// OnQuit runs on the loop goroutine for quit keys and a closed surface
	// It must not call Stop synchronously
	OnQuit func()
	// OnKey receives every other key event on the loop goroutine
	OnKey func(terminal.Event)
}

// Stats is a point-in-time view of the animation
type Stats struct {
	State     State
	Frames    uint64
	Bursts    uint64
	Particles int
	Band      particle.Band
	Direction float64
	Target    float64
	Viewport  render.Viewport
	Status    string
}

// WindMap is one animation instance; no package-level state is shared between instances
type WindMap struct {
	clock    clockwork.Clock
	log      *slog.Logger
	metrics  *observability.Metrics
	ambience audio.Ambience
	renderer *render.Renderer

	interval   time.Duration
	retryDelay time.Duration
	maxRetries int
	cellW      float64
	cellH      float64
	onQuit     func()
	onKey      func(terminal.Event)

	// Simulation state, guarded by mu and written only by the loop once it runs
	mu          sync.Mutex
	state       State
	surface     Surface
	sub         Subscription
	obs         weather.Observation
	report      *weather.Report
	status      string
	field       flow.Field
	flow        flow.State
	pool        *particle.Pool
	viewport    render.Viewport
	pointer     render.Pointer
	buf         *render.Buffer
	frames      uint64
	bursts      uint64
	burstTimer  int
	snapped     bool
	retries     int
	retryTimer  clockwork.Timer
	runCtx      context.Context

	events chan terminal.Event
	cmds   chan func()

	loopMu     sync.Mutex
	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// New creates an uninitialized WindMap
func New(opts Options) *WindMap {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(opts.Clock.Now().UnixNano()))
	}
	field := flow.NewField()
	if opts.Field != nil {
		field = *opts.Field
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MaxInitRetries <= 0 {
		opts.MaxInitRetries = DefaultMaxInitRetries
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	if opts.Logger == nil {
		opts.Logger = observability.Discard()
	}
	if opts.Ambience == nil {
		opts.Ambience = audio.NopAmbience{}
	}

	return &WindMap{
		clock:      opts.Clock,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		ambience:   opts.Ambience,
		renderer:   opts.Renderer,
		interval:   opts.FrameInterval,
		retryDelay: opts.RetryDelay,
		maxRetries: opts.MaxInitRetries,
		cellW:      opts.CellW,
		cellH:      opts.CellH,
		onQuit:     opts.OnQuit,
		onKey:      opts.OnKey,
		field:      field,
		pool:       particle.NewPool(opts.Rand, false),
		buf:        render.NewBuffer(0, 0),
		runCtx:     context.Background(),
		events:     make(chan terminal.Event, eventQueue),
		cmds:       make(chan func(), commandQueue),
	}
}

// Init binds the animation to a surface and an observation, then starts the loop
// The first call snaps the flow direction to the wind; later calls only retarget it
// A surface with no size defers activation: a retry is scheduled every RetryDelay
// up to MaxInitRetries, and a later resize event still activates it
// Init must not be called from the loop goroutine; use Update there
func (w *WindMap) Init(ctx context.Context, s Surface, obs weather.Observation) {
	w.Stop()

	w.mu.Lock()
	w.runCtx = ctx
	w.surface = s
	w.retries = 0
	w.stopRetryLocked()
	w.applyObservationLocked(obs)

	if w.sub != nil {
		w.sub.Close()
	}
	w.sub = s.Subscribe(w.enqueue)

	if w.measureLocked() {
		w.activateLocked()
	} else {
		w.setStateLocked(StateWaitingForSize)
		w.log.Info("surface has no size, deferring start")
		w.scheduleRetryLocked()
	}
	w.mu.Unlock()

	w.Start(ctx)
}

// Update applies a fresh observation, retargeting the flow and adjusting the population
func (w *WindMap) Update(obs weather.Observation) {
	w.post(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.applyObservationLocked(obs)
		w.reconcileLocked()
	})
}

// SetReport applies a full report: its observation plus header and forecast data
func (w *WindMap) SetReport(rep weather.Report) {
	w.post(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.report = &rep
		w.status = ""
		w.applyObservationLocked(rep.Observation)
		w.reconcileLocked()
	})
}

// SetStatus shows a feed problem under the header; empty clears it
// A successful SetReport clears it too
func (w *WindMap) SetStatus(msg string) {
	w.post(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if msg != w.status {
			w.log.Info("feed status changed", "status", msg)
		}
		w.status = msg
	})
}

// Resize sets the surface size in cells; zero in either dimension is ignored
func (w *WindMap) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setViewportLocked(cols, rows)
	if w.state == StateWaitingForSize {
		w.stopRetryLocked()
		w.activateLocked()
	}
}

// SetPointer records the pointer position in canvas pixels
func (w *WindMap) SetPointer(x, y float64) {
	w.mu.Lock()
	w.pointer = render.Pointer{X: x, Y: y, Active: true}
	w.mu.Unlock()
}

// ClearPointer forgets the pointer so no particle is highlighted
func (w *WindMap) ClearPointer() {
	w.mu.Lock()
	w.pointer = render.Pointer{}
	w.mu.Unlock()
}

// State returns the lifecycle phase
func (w *WindMap) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Stats returns counters and the current flow
func (w *WindMap) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		State:     w.state,
		Frames:    w.frames,
		Bursts:    w.bursts,
		Particles: w.pool.Len(),
		Band:      w.pool.Band(),
		Direction: w.flow.Direction,
		Target:    w.flow.Target,
		Viewport:  w.viewport,
		Status:    w.status,
	}
}

// Close stops the loop, cancels pending retries and detaches from the surface
func (w *WindMap) Close() {
	w.Stop()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopRetryLocked()
	if w.sub != nil {
		w.sub.Close()
		w.sub = nil
	}
}

// applyObservationLocked retargets flow, palette, band and ambience
func (w *WindMap) applyObservationLocked(obs weather.Observation) {
	obs = obs.Normalized()
	w.obs = obs
	w.flow.Retarget(weather.BearingToFlow(obs.Bearing), !w.snapped)
	w.snapped = true
	w.pool.SetNight(obs.IsNight)
	w.pool.SetSpeed(obs.Speed)
	w.ambience.SetWind(obs.Speed)
	w.metrics.Particles.Set(float64(w.pool.Len()))

	w.log.Debug("observation applied",
		"speed", obs.Speed,
		"bearing", obs.Bearing,
		"code", obs.Code,
		"night", obs.IsNight,
		"target", w.flow.Target)
}

// reconcileLocked rebuilds a running population that drifted outside tolerance
func (w *WindMap) reconcileLocked() {
	if w.state == StateRunning && w.pool.NeedsRecreate() {
		w.pool.CreateInitial(w.pool.Band().Target, w.viewport.Bounds())
		w.metrics.Particles.Set(float64(w.pool.Len()))
	}
}

// measureLocked reads the surface size, false when it has no area
func (w *WindMap) measureLocked() bool {
	if w.surface == nil {
		return false
	}
	cols, rows := w.surface.Size()
	if cols <= 0 || rows <= 0 {
		return false
	}
	w.setViewportLocked(cols, rows)
	return true
}

func (w *WindMap) setViewportLocked(cols, rows int) {
	w.viewport = render.NewViewport(cols, rows, w.cellW, w.cellH)
	w.buf.Resize(cols, rows)
}

// activateLocked enters Running, keeping a population that is within tolerance
func (w *WindMap) activateLocked() {
	if w.pool.NeedsRecreate() {
		w.pool.CreateInitial(w.pool.Band().Target, w.viewport.Bounds())
	}
	w.metrics.Particles.Set(float64(w.pool.Len()))
	w.setStateLocked(StateRunning)
	w.log.Info("animation running",
		"cols", w.viewport.Cols,
		"rows", w.viewport.Rows,
		"particles", w.pool.Len())
}

func (w *WindMap) setStateLocked(s State) {
	w.state = s
	w.metrics.DriverState.Set(float64(s))
}

// scheduleRetryLocked arms the next size check unless the budget is spent
func (w *WindMap) scheduleRetryLocked() {
	if w.retries >= w.maxRetries {
		w.log.Warn("surface still has no size, giving up retries", "attempts", w.retries)
		return
	}
	w.retries++
	w.metrics.InitRetries.Inc()
	w.retryTimer = w.clock.AfterFunc(w.retryDelay, func() {
		w.post(w.retryMeasure)
	})
}

func (w *WindMap) stopRetryLocked() {
	if w.retryTimer != nil {
		w.retryTimer.Stop()
		w.retryTimer = nil
	}
}

// retryMeasure is the body of a scheduled size check
func (w *WindMap) retryMeasure() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateWaitingForSize {
		return
	}
	w.retryTimer = nil
	if w.measureLocked() {
		w.activateLocked()
		return
	}
	w.scheduleRetryLocked()
}
