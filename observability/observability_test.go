package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info("dropped")
	logger.Warn("kept", "particles", 120)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.InDelta(t, 120, entry["particles"], 0)
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("debug", "text", &buf).Debug("frame", "n", 3)
	assert.Contains(t, buf.String(), "msg=frame")
	assert.Contains(t, buf.String(), "n=3")
}

func TestMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.FramesTotal.Add(3)
	m.Particles.Set(150)
	m.FeedRefreshes.WithLabelValues("owm", "success").Inc()
	m.FeedCache.WithLabelValues("hit").Inc()
	m.FrameDuration.Observe(0.002)

	assert.InDelta(t, 3, testutil.ToFloat64(m.FramesTotal), 0)
	assert.InDelta(t, 150, testutil.ToFloat64(m.Particles), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FeedRefreshes.WithLabelValues("owm", "success")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"windmap_frames_total",
		"windmap_particles",
		"windmap_frame_duration_seconds",
		"windmap_feed_refreshes_total",
		"windmap_feed_cache_total",
	} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestNewMetricsForTestingIsUnregistered(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.BurstsTotal.Inc()
	assert.InDelta(t, 0, testutil.ToFloat64(b.BurstsTotal), 0)
}
