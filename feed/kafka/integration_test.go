//go:build integration

package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/lixenwraith/windmap/observability"
	"github.com/lixenwraith/windmap/weather"
)

const testTopic = "test-weather-reports"

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("windmap-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestReaderConsumesReports publishes a malformed and a valid report and
// expects only the valid one to reach the animation
func TestReaderConsumesReports(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	good, err := EncodeMessage(weather.Report{
		City:        "Reykjavik",
		Observation: weather.Observation{Speed: 18, Bearing: 45, Code: 771},
	})
	require.NoError(t, err)
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("{broken")},
		good,
	))

	m := observability.NewMetricsForTesting()
	reader := NewReader(Config{
		Brokers: []string{broker},
		Topic:   testTopic,
		GroupID: fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
	}, discardLogger(), m)
	t.Cleanup(func() { _ = reader.Close() })

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var got weather.Report
	err = reader.Run(runCtx, func(rep weather.Report) {
		got = rep
		stop()
	})
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "timed out waiting for report")

	assert.Equal(t, "Reykjavik", got.City)
	assert.Equal(t, 18.0, got.Observation.Speed)
	assert.Equal(t, 771, got.Observation.Code)
	assert.False(t, got.FetchedAt.IsZero())
}
