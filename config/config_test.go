package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/windmap/toml"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func load(t *testing.T, args []string, env map[string]string) (*Config, error) {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	return LoadFrom(append([]string{"-env", filepath.Join(t.TempDir(), "none.env")}, args...), envMap(env), io.Discard)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, SourceAuto, cfg.Weather.Source)
	assert.Equal(t, SourceStatic, cfg.ResolvedSource())
	assert.Equal(t, []string{"London"}, cfg.Weather.Cities)
	assert.Equal(t, 10*time.Minute, cfg.Weather.RefreshInterval)
	assert.Equal(t, "metric", cfg.Weather.Units)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10.0, cfg.Display.CellWidth)
	assert.Equal(t, 20.0, cfg.Display.CellHeight)
	assert.Equal(t, 60, cfg.Display.FPS)
	assert.True(t, cfg.Display.Audio)
	assert.Equal(t, 0.5, cfg.Flow.MaxPerturbation)
	assert.Equal(t, "", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Debug)
	assert.Equal(t, "", cfg.File)
	assert.Equal(t, time.Second/60, cfg.FrameInterval())
}

func TestLoad_Precedence(t *testing.T) {
	file := writeFile(t, "windmap.toml", `
[weather]
source = "static"
speed = 3
bearing = 90
code = 500

[display]
fps = 30
color = "256"
`)
	dotenv := writeFile(t, "test.env", "WINDMAP_WEATHER_BEARING=180\nWINDMAP_DISPLAY_FPS=24\n")

	cfg, err := LoadFrom(
		[]string{"-config", file, "-env", dotenv, "-fps", "50"},
		envMap(map[string]string{"WINDMAP_WEATHER_BEARING": "200"}),
		io.Discard,
	)
	require.NoError(t, err)

	assert.Equal(t, file, cfg.File)
	assert.Equal(t, 3.0, cfg.Weather.Speed, "file over default")
	assert.Equal(t, 500, cfg.Weather.Code)
	assert.Equal(t, "256", cfg.Display.Color)
	assert.Equal(t, 200.0, cfg.Weather.Bearing, "process env over .env over file")
	assert.Equal(t, 50, cfg.Display.FPS, "flag over everything")
}

func TestLoad_DotenvFillsGaps(t *testing.T) {
	dotenv := writeFile(t, "test.env", "WINDMAP_WEATHER_API_KEY=secret\nWINDMAP_WEATHER_CITIES=Oslo; Bergen\n")

	cfg, err := LoadFrom([]string{"-env", dotenv}, envMap(nil), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Weather.APIKey)
	assert.Equal(t, SourceOWM, cfg.ResolvedSource())
	assert.Equal(t, []string{"Oslo", "Bergen"}, cfg.Weather.Cities)
}

func TestLoad_ConfigFromEnvVar(t *testing.T) {
	file := writeFile(t, "alt.toml", "[http]\naddr = \":9100\"\n")
	cfg, err := load(t, nil, map[string]string{"WINDMAP_CONFIG": file})
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, file, cfg.File)
}

func TestLoad_BoolFlags(t *testing.T) {
	cfg, err := load(t, []string{"-night", "-audio=false", "-debug", "-print-config"}, nil)
	require.NoError(t, err)
	assert.True(t, cfg.Weather.Night)
	assert.False(t, cfg.Display.Audio)
	assert.True(t, cfg.Log.Debug)
	assert.True(t, cfg.PrintConfig)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		file string
		want string
	}{
		{name: "owm without key", args: []string{"-source", "owm"}, want: "weather.api_key"},
		{name: "unknown source", env: map[string]string{"WINDMAP_WEATHER_SOURCE": "radio"}, want: "weather.source"},
		{name: "bad env duration", env: map[string]string{"WINDMAP_WEATHER_REFRESH_INTERVAL": "soon"}, want: "weather.refresh_interval"},
		{name: "refresh too short", args: []string{"-refresh", "10s"}, want: "weather.refresh_interval"},
		{name: "bad flag number", args: []string{"-fps", "many"}, want: "display.fps"},
		{name: "fps range", args: []string{"-fps", "0"}, want: "display.fps"},
		{name: "color", args: []string{"-color", "16"}, want: "display.color"},
		{name: "kafka without topic", args: []string{"-source", "kafka", "-topic", ""}, want: "kafka.topic"},
		{name: "log format", env: map[string]string{"WINDMAP_LOG_FORMAT": "xml"}, want: "log.format"},
		{name: "negative perturbation", env: map[string]string{"WINDMAP_FLOW_MAX_PERTURBATION": "-1"}, want: "flow.max_perturbation"},
		{name: "imperial units", file: "[weather]\nunits = \"imperial\"\n", want: "weather.units"},
		{name: "file type error", file: "[display]\nfps = \"fast\"\n", want: "display.fps"},
		{name: "file unknown key", file: "[display]\nfsp = 30\n", want: "display.fsp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.file != "" {
				args = append([]string{"-config", writeFile(t, "c.toml", tt.file)}, args...)
			}
			_, err := load(t, args, tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ValidationWrapsErrInvalid(t *testing.T) {
	_, err := load(t, []string{"-fps", "1000"}, nil)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = load(t, []string{"-config", writeFile(t, "c.toml", "[display]\nfps = \"x\"\n")}, nil)
	var de *toml.DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := load(t, []string{"-config", filepath.Join(t.TempDir(), "absent.toml")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_UnknownFlag(t *testing.T) {
	var out bytes.Buffer
	_, err := LoadFrom([]string{"-bogus"}, envMap(nil), &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "bogus")
}

func TestMarshalMasksSecrets(t *testing.T) {
	cfg := Default()
	cfg.Weather.APIKey = "abc123"

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "abc123")
	assert.Contains(t, string(data), "[weather]")
	assert.Equal(t, "abc123", cfg.Weather.APIKey, "original must be untouched")

	back := Default()
	require.NoError(t, toml.UnmarshalStrict(data, back))
	assert.Equal(t, cfg.Display, back.Display)
	assert.Equal(t, cfg.Weather.RefreshInterval, back.Weather.RefreshInterval)
}

func TestField(t *testing.T) {
	cfg := Default()
	cfg.Flow.MaxPerturbation = 0.3
	f := cfg.Field()
	assert.Equal(t, 0.3, f.MaxPerturbation)
	assert.Equal(t, 0.3, f.Bound())
}

func TestExampleFileLoads(t *testing.T) {
	cfg, err := load(t, []string{"-config", filepath.Join("..", "windmap.example.toml")}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"London", "Reykjavik", "Wellington"}, cfg.Weather.Cities)
	assert.Equal(t, SourceStatic, cfg.ResolvedSource())
	assert.Equal(t, 5*time.Minute, cfg.Weather.CacheTTL)
	assert.Equal(t, Default().Display, cfg.Display)
}
