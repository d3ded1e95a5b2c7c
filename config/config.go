// Package config loads windmap settings from defaults, a TOML file, the environment and flags
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/windmap/flow"
	"github.com/lixenwraith/windmap/toml"
)

// Defaults for optional inputs
const (
	DefaultFile    = "windmap.toml"
	DefaultEnvFile = ".env"
	EnvPrefix      = "WINDMAP_"
)

// Weather sources
const (
	SourceAuto   = "auto" // owm when an API key is set, otherwise static
	SourceStatic = "static"
	SourceOWM    = "owm"
	SourceKafka  = "kafka"
)

// ErrInvalid wraps every validation failure; the message names the key
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings, grouped as in the TOML file
type Config struct {
	Weather WeatherConfig `toml:"weather"`
	Kafka   KafkaConfig   `toml:"kafka"`
	Display DisplayConfig `toml:"display"`
	Flow    FlowConfig    `toml:"flow"`
	HTTP    HTTPConfig    `toml:"http"`
	Log     LogConfig     `toml:"log"`

	// Set by flags only
	File        string `toml:"-"`
	PrintConfig bool   `toml:"-"`
}

type WeatherConfig struct {
	Source          string        `toml:"source"`
	Cities          []string      `toml:"cities"`
	APIKey          string        `toml:"api_key"`
	RefreshInterval time.Duration `toml:"refresh_interval"`
	Timeout         time.Duration `toml:"timeout"`
	CacheSize       int           `toml:"cache_size"`
	CacheTTL        time.Duration `toml:"cache_ttl"`
	Units           string        `toml:"units"`

	// Observation used by the static source
	Speed   float64 `toml:"speed"`
	Bearing float64 `toml:"bearing"`
	Code    int     `toml:"code"`
	Night   bool    `toml:"night"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
	GroupID string   `toml:"group_id"`
}

type DisplayConfig struct {
	Color      string  `toml:"color"` // auto, truecolor, 256
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
	FPS        int     `toml:"fps"`
	Audio      bool    `toml:"audio"`
	Volume     float64 `toml:"volume"`
	Overlays   bool    `toml:"overlays"`
}

type FlowConfig struct {
	MaxPerturbation float64 `toml:"max_perturbation"`
	Seed            int64   `toml:"seed"` // 0 seeds from the clock
}

type HTTPConfig struct {
	Addr string `toml:"addr"` // empty disables the server
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
	Debug  bool   `toml:"debug"`
	Dir    string `toml:"dir"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Weather: WeatherConfig{
			Source:          SourceAuto,
			Cities:          []string{"London"},
			RefreshInterval: 10 * time.Minute,
			Timeout:         10 * time.Second,
			CacheSize:       32,
			CacheTTL:        5 * time.Minute,
			Units:           "metric",
			Speed:           5,
			Bearing:         270,
			Code:            800,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "weather-reports",
			GroupID: "windmap",
		},
		Display: DisplayConfig{
			Color:      "auto",
			CellWidth:  10,
			CellHeight: 20,
			FPS:        60,
			Audio:      true,
			Overlays:   true,
		},
		Flow: FlowConfig{
			MaxPerturbation: flow.DefaultMaxPerturbation,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Dir:    "logs",
		},
	}
}

// FrameInterval is the loop tick derived from fps
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Display.FPS)
}

// ResolvedSource returns the concrete weather source, resolving auto
func (c *Config) ResolvedSource() string {
	if c.Weather.Source == SourceAuto {
		if c.Weather.APIKey != "" {
			return SourceOWM
		}
		return SourceStatic
	}
	return c.Weather.Source
}

// Field returns the flow field with the configured bound
func (c *Config) Field() flow.Field {
	f := flow.NewField()
	f.MaxPerturbation = c.Flow.MaxPerturbation
	return f
}

// Marshal renders the effective configuration as TOML, secrets masked
func (c *Config) Marshal() ([]byte, error) {
	cp := *c
	if cp.Weather.APIKey != "" {
		cp.Weather.APIKey = "****"
	}
	return toml.Marshal(&cp)
}

func invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, key, fmt.Sprintf(format, args...))
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	w := c.Weather
	switch w.Source {
	case SourceAuto, SourceStatic, SourceOWM, SourceKafka:
	default:
		return invalid("weather.source", "unknown source %q", w.Source)
	}
	switch c.ResolvedSource() {
	case SourceOWM:
		if w.APIKey == "" {
			return invalid("weather.api_key", "required for the owm source")
		}
		if len(w.Cities) == 0 {
			return invalid("weather.cities", "at least one city is required")
		}
	case SourceKafka:
		if len(c.Kafka.Brokers) == 0 {
			return invalid("kafka.brokers", "at least one broker is required")
		}
		if c.Kafka.Topic == "" {
			return invalid("kafka.topic", "required for the kafka source")
		}
	}
	for i, city := range w.Cities {
		if strings.TrimSpace(city) == "" {
			return invalid("weather.cities", "entry %d is empty", i)
		}
	}
	if w.RefreshInterval < time.Minute {
		return invalid("weather.refresh_interval", "must be at least 1m, got %s", w.RefreshInterval)
	}
	if w.Timeout <= 0 {
		return invalid("weather.timeout", "must be positive")
	}
	if w.CacheSize < 1 {
		return invalid("weather.cache_size", "must be at least 1")
	}
	if w.CacheTTL < 0 {
		return invalid("weather.cache_ttl", "must not be negative")
	}
	if w.Units != "metric" {
		return invalid("weather.units", "only metric is supported, got %q", w.Units)
	}
	if w.Speed < 0 {
		return invalid("weather.speed", "must not be negative")
	}

	d := c.Display
	switch d.Color {
	case "auto", "truecolor", "256":
	default:
		return invalid("display.color", "must be auto, truecolor or 256, got %q", d.Color)
	}
	if d.CellWidth <= 0 {
		return invalid("display.cell_width", "must be positive")
	}
	if d.CellHeight <= 0 {
		return invalid("display.cell_height", "must be positive")
	}
	if d.FPS < 1 || d.FPS > 240 {
		return invalid("display.fps", "must be within 1..240, got %d", d.FPS)
	}

	if c.Flow.MaxPerturbation < 0 {
		return invalid("flow.max_perturbation", "must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log.level", "unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", "must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// readFile applies a TOML file over cfg; a missing default file is not an error
func readFile(cfg *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}
