package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// setting binds one key to its environment variable, flag and parser
type setting struct {
	key   string // dotted TOML key
	flag  string // empty when not exposed as a flag
	usage string
	set   func(c *Config, v string) error
}

// env derives the variable name: weather.api_key is WINDMAP_WEATHER_API_KEY
func (s setting) env() string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_").Replace(s.key))
}

func str(p func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*p(c) = v
		return nil
	}
}

func list(p func(*Config) *[]string, sep string) func(*Config, string) error {
	return func(c *Config, v string) error {
		var out []string
		for _, item := range strings.Split(v, sep) {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*p(c) = out
		return nil
	}
}

func integer(p func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*p(c) = n
		return nil
	}
}

func integer64(p func(*Config) *int64) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return err
		}
		*p(c) = n
		return nil
	}
}

func float(p func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		*p(c) = f
		return nil
	}
}

func boolean(p func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*p(c) = b
		return nil
	}
}

func duration(p func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*p(c) = d
		return nil
	}
}

var settings = []setting{
	{"weather.source", "source", "weather source: auto, static, owm, kafka", str(func(c *Config) *string { return &c.Weather.Source })},
	{"weather.cities", "city", "cities to show, separated by ';'", list(func(c *Config) *[]string { return &c.Weather.Cities }, ";")},
	{"weather.api_key", "", "", str(func(c *Config) *string { return &c.Weather.APIKey })},
	{"weather.refresh_interval", "refresh", "weather refresh interval", duration(func(c *Config) *time.Duration { return &c.Weather.RefreshInterval })},
	{"weather.timeout", "", "", duration(func(c *Config) *time.Duration { return &c.Weather.Timeout })},
	{"weather.cache_size", "", "", integer(func(c *Config) *int { return &c.Weather.CacheSize })},
	{"weather.cache_ttl", "", "", duration(func(c *Config) *time.Duration { return &c.Weather.CacheTTL })},
	{"weather.units", "", "", str(func(c *Config) *string { return &c.Weather.Units })},
	{"weather.speed", "speed", "static wind speed in m/s", float(func(c *Config) *float64 { return &c.Weather.Speed })},
	{"weather.bearing", "bearing", "static wind bearing in degrees", float(func(c *Config) *float64 { return &c.Weather.Bearing })},
	{"weather.code", "code", "static condition id", integer(func(c *Config) *int { return &c.Weather.Code })},
	{"weather.night", "night", "static night palette", boolean(func(c *Config) *bool { return &c.Weather.Night })},

	{"kafka.brokers", "brokers", "kafka brokers, separated by ','", list(func(c *Config) *[]string { return &c.Kafka.Brokers }, ",")},
	{"kafka.topic", "topic", "kafka topic carrying reports", str(func(c *Config) *string { return &c.Kafka.Topic })},
	{"kafka.group_id", "", "", str(func(c *Config) *string { return &c.Kafka.GroupID })},

	{"display.color", "color", "color mode: auto, truecolor, 256", str(func(c *Config) *string { return &c.Display.Color })},
	{"display.cell_width", "", "", float(func(c *Config) *float64 { return &c.Display.CellWidth })},
	{"display.cell_height", "", "", float(func(c *Config) *float64 { return &c.Display.CellHeight })},
	{"display.fps", "fps", "frames per second", integer(func(c *Config) *int { return &c.Display.FPS })},
	{"display.audio", "audio", "play wind ambience", boolean(func(c *Config) *bool { return &c.Display.Audio })},
	{"display.volume", "", "", float(func(c *Config) *float64 { return &c.Display.Volume })},
	{"display.overlays", "overlays", "draw header and forecast", boolean(func(c *Config) *bool { return &c.Display.Overlays })},

	{"flow.max_perturbation", "", "", float(func(c *Config) *float64 { return &c.Flow.MaxPerturbation })},
	{"flow.seed", "seed", "random seed, 0 uses the clock", integer64(func(c *Config) *int64 { return &c.Flow.Seed })},

	{"http.addr", "http", "serve /healthz, /readyz and /metrics on this address", str(func(c *Config) *string { return &c.HTTP.Addr })},

	{"log.level", "log-level", "log level: debug, info, warn, error", str(func(c *Config) *string { return &c.Log.Level })},
	{"log.format", "", "", str(func(c *Config) *string { return &c.Log.Format })},
	{"log.debug", "debug", "write logs to the log directory", boolean(func(c *Config) *bool { return &c.Log.Debug })},
	{"log.dir", "", "", str(func(c *Config) *string { return &c.Log.Dir })},
}

func isBool(s setting) bool {
	switch s.key {
	case "weather.night", "display.audio", "display.overlays", "log.debug":
		return true
	}
	return false
}

// Load builds the configuration from os.Args and the process environment
func Load() (*Config, error) {
	return LoadFrom(os.Args[1:], os.LookupEnv, os.Stderr)
}

// LoadFrom applies, in increasing precedence: defaults, the TOML file,
// the .env file, environment variables and flags. Flag errors and usage go to out
func LoadFrom(args []string, lookup func(string) (string, bool), out io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("windmap", flag.ContinueOnError)
	fs.SetOutput(out)

	file := fs.String("config", "", "TOML config file (default "+DefaultFile+" when present)")
	envFile := fs.String("env", DefaultEnvFile, "dotenv file, skipped when missing")
	printConfig := fs.Bool("print-config", false, "print the effective configuration and exit")

	// Flag values are replayed after the file and environment layers
	var pending []func(*Config) error
	for _, s := range settings {
		if s.flag == "" {
			continue
		}
		record := func(v string) error {
			pending = append(pending, func(c *Config) error {
				if err := s.set(c, v); err != nil {
					return invalid(s.key, "flag -%s: %v", s.flag, err)
				}
				return nil
			})
			return nil
		}
		if isBool(s) {
			fs.BoolFunc(s.flag, s.usage, record)
		} else {
			fs.Func(s.flag, s.usage, record)
		}
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	path, explicit := *file, true
	if path == "" {
		if v, ok := lookup(EnvPrefix + "CONFIG"); ok && v != "" {
			path = v
		} else {
			path, explicit = DefaultFile, false
		}
	}
	if err := readFile(cfg, path, explicit); err != nil {
		return nil, err
	}
	if explicit {
		cfg.File = path
	} else if _, err := os.Stat(path); err == nil {
		cfg.File = path
	}

	dotenv, err := godotenv.Read(*envFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	env := func(name string) (string, bool) {
		if v, ok := lookup(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}

	for _, apply := range pending {
		if err := apply(cfg); err != nil {
			return nil, err
		}
	}
	cfg.PrintConfig = *printConfig

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv sets every key whose WINDMAP_* variable is present
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, s := range settings {
		name := s.env()
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := s.set(cfg, v); err != nil {
			return invalid(s.key, "%s: %v", name, err)
		}
	}
	return nil
}
