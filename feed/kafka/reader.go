// Package kafka consumes weather reports published as JSON on a Kafka topic
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/lixenwraith/windmap/observability"
	"github.com/lixenwraith/windmap/weather"
)

const sourceName = "kafka"

// Config selects the topic to follow
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// Reader implements feed.Source over a Kafka topic
type Reader struct {
	reader  messageReader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReader creates a consumer group reader for the configured topic
func NewReader(cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  500 * time.Millisecond,
	})
	return &Reader{reader: r, logger: logger, metrics: metrics}
}

// Run reads until ctx is done, emitting each decodable report
// Malformed messages are logged, counted as skipped and committed past
func (r *Reader) Run(ctx context.Context, emit func(weather.Report)) error {
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			r.metrics.FeedRefreshes.WithLabelValues(sourceName, "error").Inc()
			return fmt.Errorf("read message: %w", err)
		}

		rep, err := decodeMessage(msg)
		if err != nil {
			r.metrics.FeedRefreshes.WithLabelValues(sourceName, "skipped").Inc()
			r.logger.Warn("skipping malformed report",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err)
			continue
		}

		r.metrics.FeedRefreshes.WithLabelValues(sourceName, "success").Inc()
		emit(rep)
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// decodeMessage unmarshals a report, defaulting FetchedAt to the message time
func decodeMessage(msg kafkago.Message) (weather.Report, error) {
	var rep weather.Report
	if err := json.Unmarshal(msg.Value, &rep); err != nil {
		return weather.Report{}, fmt.Errorf("decode report: %w", err)
	}
	if rep.FetchedAt.IsZero() {
		rep.FetchedAt = msg.Time
	}
	return rep, nil
}

// EncodeMessage marshals a report keyed by its city, the inverse of the reader
func EncodeMessage(rep weather.Report) (kafkago.Message, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rep.City),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "fetched_at", Value: []byte(rep.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
