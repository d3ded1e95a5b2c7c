package owm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lixenwraith/windmap/observability"
	"github.com/lixenwraith/windmap/weather"
)

const sourceName = "owm"

// Refresher is a Fetcher that can skip its cache
// Timed refreshes use it so a long cache TTL never freezes the weather
type Refresher interface {
	Refresh(ctx context.Context, city string) (weather.Report, error)
}

// Poller refreshes one city's report on an interval and implements feed.Source
// Cities rotate with Next; the switch triggers an immediate fetch
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu     sync.Mutex
	cities  []string
	idx     int
	kick    chan struct{}
	onError func(city string, err error)
}

// NewPoller creates a poller over one or more cities; the first is shown first
func NewPoller(f Fetcher, cities []string, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	return &Poller{
		fetcher:  f,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		cities:   cities,
		kick:     make(chan struct{}, 1),
	}
}

// City returns the city currently polled
func (p *Poller) City() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.cities) == 0 {
		return ""
	}
	return p.cities[p.idx]
}

// Next switches to the following city and requests a fetch
func (p *Poller) Next() string {
	p.mu.Lock()
	if len(p.cities) > 0 {
		p.idx = (p.idx + 1) % len(p.cities)
	}
	p.mu.Unlock()

	select {
	case p.kick <- struct{}{}:
	default:
	}
	return p.City()
}

// OnError registers fn for failed refreshes, including the one that stops Run
func (p *Poller) OnError(fn func(city string, err error)) {
	p.mu.Lock()
	p.onError = fn
	p.mu.Unlock()
}

// Run fetches immediately and then every interval until ctx is done
// Transient errors keep the last good report on screen. An unknown city
// stops the poller only when it is the sole city configured
func (p *Poller) Run(ctx context.Context, emit func(weather.Report)) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	force := false
	for {
		if err := p.refresh(ctx, emit, force); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			force = true
		case <-p.kick:
			force = false
		}
	}
}

// refresh fetches the current city; force skips a cache on timed ticks
func (p *Poller) refresh(ctx context.Context, emit func(weather.Report), force bool) error {
	city := p.City()
	fetch := p.fetcher.Fetch
	if r, ok := p.fetcher.(Refresher); ok && force {
		fetch = r.Refresh
	}
	rep, err := fetch(ctx, city)
	switch {
	case err == nil:
		p.metrics.FeedRefreshes.WithLabelValues(sourceName, "success").Inc()
		p.logger.Debug("weather refreshed",
			"city", city,
			"speed", rep.Observation.Speed,
			"bearing", rep.Observation.Bearing,
			"code", rep.Observation.Code)
		emit(rep)
		return nil
	case ctx.Err() != nil:
		return nil
	}

	p.metrics.FeedRefreshes.WithLabelValues(sourceName, "error").Inc()
	p.mu.Lock()
	single := len(p.cities) <= 1
	onError := p.onError
	p.mu.Unlock()
	if onError != nil {
		onError(city, err)
	}
	if single && errors.Is(err, ErrCityNotFound) {
		return err
	}
	p.logger.Error("weather refresh failed", "city", city, "error", err)
	return nil
}
