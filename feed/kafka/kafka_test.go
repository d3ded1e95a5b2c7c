package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/windmap/observability"
	"github.com/lixenwraith/windmap/weather"
)

type fakeReader struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		return m, nil
	}
	if f.err != nil {
		return kafkago.Message{}, f.err
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	msg := kafkago.Message{
		Value: []byte(`{"observation":{"speed":12.5,"bearing":90,"code":501,"is_night":true},"city":"Bergen","country":"NO"}`),
		Time:  now,
	}

	rep, err := decodeMessage(msg)
	require.NoError(t, err)

	assert.Equal(t, "Bergen", rep.City)
	assert.Equal(t, "NO", rep.Country)
	assert.Equal(t, 12.5, rep.Observation.Speed)
	assert.Equal(t, 90.0, rep.Observation.Bearing)
	assert.Equal(t, 501, rep.Observation.Code)
	assert.True(t, rep.Observation.IsNight)
	assert.Equal(t, now, rep.FetchedAt)
}

func TestDecodeMessageMalformed(t *testing.T) {
	_, err := decodeMessage(kafkago.Message{Value: []byte(`{"observation":`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode report")
}

func TestEncodeMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	rep := weather.Report{City: "Bergen", FetchedAt: now, Observation: weather.Observation{Speed: 3}}

	msg, err := EncodeMessage(rep)
	require.NoError(t, err)

	assert.Equal(t, []byte("Bergen"), msg.Key)
	assert.Contains(t, string(msg.Value), `"speed":3`)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "fetched_at", msg.Headers[0].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[0].Value)

	back, err := decodeMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "Bergen", back.City)
	assert.True(t, back.FetchedAt.Equal(now))
}

func TestRunSkipsMalformed(t *testing.T) {
	good, err := EncodeMessage(weather.Report{City: "Oslo"})
	require.NoError(t, err)

	fr := &fakeReader{msgs: []kafkago.Message{
		{Value: []byte("not json"), Offset: 1},
		good,
	}}
	m := observability.NewMetricsForTesting()
	r := &Reader{reader: fr, logger: discardLogger(), metrics: m}

	ctx, cancel := context.WithCancel(context.Background())
	var got []weather.Report
	err = r.Run(ctx, func(rep weather.Report) {
		got = append(got, rep)
		cancel()
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Oslo", got[0].City)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedRefreshes.WithLabelValues("kafka", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedRefreshes.WithLabelValues("kafka", "success")))

	require.NoError(t, r.Close())
	assert.True(t, fr.closed)
}

func TestRunReturnsReadError(t *testing.T) {
	boom := errors.New("broker down")
	m := observability.NewMetricsForTesting()
	r := &Reader{reader: &fakeReader{err: boom}, logger: discardLogger(), metrics: m}

	err := r.Run(context.Background(), func(weather.Report) {})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedRefreshes.WithLabelValues("kafka", "error")))
}
