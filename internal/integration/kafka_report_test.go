//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/flood-validation-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-validation-service/internal/config"
	"github.com/couchcryptid/flood-validation-service/internal/domain"
	"github.com/couchcryptid/flood-validation-service/internal/pipeline"
	"github.com/couchcryptid/flood-validation-service/internal/raster"
	"github.com/couchcryptid/flood-validation-service/internal/vector"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testReportTopic = "test-flood-validation-reports"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka in a container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

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

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestReportPublishing runs a real validation and verifies the report lands
// on the Kafka report topic with its key, headers, and payload intact.
func TestReportPublishing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportTopic)

	cfg := &config.Config{
		KafkaEnabled:     true,
		KafkaBrokers:     []string{broker},
		KafkaReportTopic: testReportTopic,
	}

	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	// A strip raster with perfect separation between the two point sets.
	grid := raster.NewGrid(raster.Grid{
		Cols: 4, Rows: 1, XMin: 0, YMin: 0, CellSize: 1, NoData: -9999,
	}, []float64{0.9, 0.7, 0.3, 0.1})

	report, err := pipeline.Evaluate(grid,
		vector.PointSet{Points: []domain.Point{{X: 0.5, Y: 0.5}, {X: 1.5, Y: 0.5}}},
		vector.PointSet{Points: []domain.Point{{X: 2.5, Y: 0.5}, {X: 3.5, Y: 0.5}}},
	)
	require.NoError(t, err)
	require.Equal(t, 1.0, report.AUC)

	require.NoError(t, publisher.Publish(ctx, report))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testReportTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	assert.Equal(t, report.ID, string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "1.000000", headers["auc"])
	_, err = time.Parse(time.RFC3339, headers["computed_at"])
	assert.NoError(t, err, "computed_at should be valid RFC3339")

	var received domain.ValidationReport
	require.NoError(t, json.Unmarshal(msg.Value, &received))
	assert.Equal(t, report.ID, received.ID)
	assert.Equal(t, report.AUC, received.AUC)
	assert.Equal(t, report.Flood, received.Flood)
	assert.Equal(t, report.NonFlood, received.NonFlood)
}
