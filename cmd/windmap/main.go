package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lixenwraith/windmap/audio"
	"github.com/lixenwraith/windmap/config"
	"github.com/lixenwraith/windmap/core"
	"github.com/lixenwraith/windmap/engine"
	"github.com/lixenwraith/windmap/feed"
	"github.com/lixenwraith/windmap/feed/kafka"
	"github.com/lixenwraith/windmap/feed/owm"
	"github.com/lixenwraith/windmap/observability"
	"github.com/lixenwraith/windmap/render"
	"github.com/lixenwraith/windmap/server"
	"github.com/lixenwraith/windmap/terminal"
	"github.com/lixenwraith/windmap/weather"
)

func main() {
	// Panic Recovery: restore the terminal even if the main goroutine crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "windmap: %v\n", err)
		os.Exit(2)
	}

	if cfg.PrintConfig {
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "windmap: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	logger, logFile := setupLogging(cfg.Log)
	if logFile != nil {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("windmap exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "windmap: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetricsWithRegistry(reg)

	// Resolve color mode from config
	var colorMode terminal.ColorMode
	switch cfg.Display.Color {
	case "256":
		colorMode = terminal.ColorMode256
	case "truecolor":
		colorMode = terminal.ColorModeTrueColor
	default:
		colorMode = terminal.DetectColorMode()
	}

	screen, err := terminal.New(colorMode)
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	core.SetCrashTerminal(screen)
	defer func() {
		core.SetCrashTerminal(nil)
		screen.Fini()
	}()
	logger.Info("terminal ready", "color", colorMode.String())

	var ambience audio.Ambience = audio.NopAmbience{}
	if cfg.Display.Audio {
		if sp, err := audio.OpenSpeaker(cfg.Display.Volume); err == nil {
			ambience = sp
		} else {
			logger.Warn("audio unavailable, continuing without sound", "error", err)
		}
	}
	defer ambience.Close()

	clock := clockwork.NewRealClock()
	// Feed callbacks only fire once the feed runs, after wm is assigned
	var wm *engine.WindMap
	src, onKey := buildSource(cfg, clock, logger, metrics, func(msg string) { wm.SetStatus(msg) })

	seed := cfg.Flow.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}
	renderer := render.NewRenderer()
	renderer.Overlays = cfg.Display.Overlays
	field := cfg.Field()

	wm = engine.New(engine.Options{
		Clock:         clock,
		Rand:          rand.New(rand.NewSource(seed)),
		Field:         &field,
		CellW:         cfg.Display.CellWidth,
		CellH:         cfg.Display.CellHeight,
		FrameInterval: cfg.FrameInterval(),
		Renderer:      renderer,
		Metrics:       metrics,
		Logger:        logger,
		Ambience:      ambience,
		OnQuit:        stop,
		OnKey:         onKey,
	})
	defer wm.Close()

	wm.Init(ctx, engine.NewScreenSurface(screen), staticObservation(cfg))

	reports := feed.Channel(ctx, src, func(err error) {
		logger.Error("weather feed stopped", "source", cfg.ResolvedSource(), "error", err)
		if !errors.Is(err, owm.ErrCityNotFound) {
			wm.SetStatus(owm.StatusUnavailable)
		}
	})
	core.Go(func() {
		for rep := range reports {
			wm.SetReport(rep)
		}
	})

	if cfg.HTTP.Addr != "" {
		srv := server.NewServer(cfg.HTTP.Addr, readiness(wm), func() any { return wm.Stats() }, reg, logger)
		core.Go(func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", "error", err)
			}
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http server shutdown", "error", err)
			}
		}()
	}

	<-ctx.Done()
	st := wm.Stats()
	logger.Info("shutting down", "frames", st.Frames, "bursts", st.Bursts, "particles", st.Particles)
	return nil
}

// staticObservation is what the map shows before the first report arrives
func staticObservation(cfg *config.Config) weather.Observation {
	return weather.Observation{
		Speed:   cfg.Weather.Speed,
		Bearing: cfg.Weather.Bearing,
		Code:    cfg.Weather.Code,
		IsNight: cfg.Weather.Night,
	}
}

// buildSource picks the weather feed; the key handler cycles cities for OpenWeatherMap
// and status receives fetch problems to show on screen
func buildSource(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, status func(string)) (feed.Source, func(terminal.Event)) {
	switch cfg.ResolvedSource() {
	case config.SourceOWM:
		client := owm.NewClient(cfg.Weather.APIKey, cfg.Weather.Timeout, logger)
		cached := owm.NewCachedFetcher(client, cfg.Weather.CacheSize, cfg.Weather.CacheTTL, clock, metrics)
		poller := owm.NewPoller(cached, cfg.Weather.Cities, cfg.Weather.RefreshInterval, clock, logger, metrics)
		poller.OnError(func(city string, err error) {
			status(owm.StatusText(city, err))
		})
		onKey := func(ev terminal.Event) {
			if ev.Rune == 'c' || ev.Rune == 'n' {
				logger.Info("switching city", "city", poller.Next())
			}
		}
		return poller, onKey

	case config.SourceKafka:
		reader := kafka.NewReader(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, logger, metrics)
		return closingSource{Source: reader, close: reader.Close, logger: logger}, nil
	}

	city := ""
	if len(cfg.Weather.Cities) > 0 {
		city = cfg.Weather.Cities[0]
	}
	st := feed.NewStatic(city, staticObservation(cfg))
	st.Clock = clock
	return st, nil
}

// closingSource closes the underlying consumer once Run returns
type closingSource struct {
	feed.Source
	close  func() error
	logger *slog.Logger
}

func (s closingSource) Run(ctx context.Context, emit func(weather.Report)) error {
	defer func() {
		if err := s.close(); err != nil {
			s.logger.Warn("close feed", "error", err)
		}
	}()
	return s.Source.Run(ctx, emit)
}

func readiness(wm *engine.WindMap) server.ReadinessFunc {
	return func(context.Context) error {
		if st := wm.State(); st != engine.StateRunning {
			return fmt.Errorf("animation %s", st)
		}
		return nil
	}
}
