// Package feed delivers weather reports to the animation
package feed

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lixenwraith/windmap/core"
	"github.com/lixenwraith/windmap/weather"
)

// Source produces reports until ctx is done
// Run calls emit from its own goroutine; emit must not block for long
type Source interface {
	Run(ctx context.Context, emit func(weather.Report)) error
}

// Static emits a single fixed report and then waits for cancellation
type Static struct {
	Report weather.Report
	Clock  clockwork.Clock
}

// NewStatic builds a static source from a bare observation
func NewStatic(city string, obs weather.Observation) *Static {
	return &Static{
		Report: weather.Report{City: city, Observation: obs},
		Clock:  clockwork.NewRealClock(),
	}
}

func (s *Static) Run(ctx context.Context, emit func(weather.Report)) error {
	rep := s.Report
	if rep.FetchedAt.IsZero() {
		rep.FetchedAt = s.now()
	}
	emit(rep)
	<-ctx.Done()
	return nil
}

func (s *Static) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// Channel adapts a source to a report channel that keeps only the latest
// undelivered report. The channel closes when the source returns
func Channel(ctx context.Context, src Source, onErr func(error)) <-chan weather.Report {
	out := make(chan weather.Report, 1)
	core.Go(func() {
		defer close(out)
		err := src.Run(ctx, func(rep weather.Report) {
			for {
				select {
				case out <- rep:
					return
				default:
				}
				// Drop the stale report so the newest always wins
				select {
				case <-out:
				default:
				}
			}
		})
		if err != nil && onErr != nil {
			onErr(err)
		}
	})
	return out
}
