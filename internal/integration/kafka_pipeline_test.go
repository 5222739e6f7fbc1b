//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/order-status-etl/internal/adapter/kafka"
	"github.com/couchcryptid/order-status-etl/internal/config"
	"github.com/couchcryptid/order-status-etl/internal/domain"
	"github.com/couchcryptid/order-status-etl/internal/observability"
	"github.com/couchcryptid/order-status-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

// mockOrders mirrors the statuses the backend is known to emit.
var mockOrders = []domain.RawOrderRecord{
	{OrderID: "ord-1", UserID: "u-1", Status: "PENDING", OrderedAt: "2024-01-01"},
	{OrderID: "ord-2", UserID: "u-1", Status: "배송 완료", OrderedAt: "2024-02-29T15:00:00Z"},
	{OrderID: "ord-3", UserID: "u-2", Status: "Delivered", OrderedAt: "2024-03-09T23:30:00"},
	{OrderID: "ord-4", UserID: "u-2", Status: "shipped", OrderedAt: ""},
	{OrderID: "ord-5", UserID: "u-3", Status: "", OrderedAt: "not-a-date"},
}

// displayMessage holds a deserialized message read from the sink topic.
type displayMessage struct {
	Event   domain.OrderEvent
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("order-etl-test"))
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
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

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func newConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 2 * time.Second,
	}
}

func publish(ctx context.Context, t *testing.T, broker string, msgs ...kafkago.Message) {
	t.Helper()
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// readDisplay reads a single message from the sink consumer and deserializes it.
func readDisplay(ctx context.Context, t *testing.T, consumer *kafkago.Reader) displayMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal sink message")

	return displayMessage{Event: event, Key: string(msg.Key), Headers: headers}
}

func runPipeline(ctx context.Context, t *testing.T, cfg *config.Config) func() {
	t.Helper()
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(metrics, discardLogger()), writer, discardLogger(), metrics, 50)

	pipelineCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	return func() {
		cancel()
		require.NoError(t, <-errCh)
	}
}

// TestPipelineEndToEnd wires Reader → Transformer → Writer against a real
// broker and checks the labels on every published order.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	msgs := make([]kafkago.Message, 0, len(mockOrders))
	for _, rec := range mockOrders {
		payload, err := json.Marshal(rec)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{Key: []byte(rec.OrderID), Value: payload})
	}
	publish(ctx, t, broker, msgs...)

	stop := runPipeline(ctx, t, newConfig(broker, "test-pipeline"))
	consumer := sinkConsumer(t, broker)

	received := map[string]displayMessage{}
	for len(received) < len(mockOrders) {
		dm := readDisplay(ctx, t, consumer)
		received[dm.Key] = dm
	}
	stop()

	want := map[string]struct {
		label   string
		known   bool
		arrival string
	}{
		"ord-1": {"상품 준비중", true, "1/2(화) 도착"},
		"ord-2": {"배송완료", true, "3/2(토) 도착"},
		"ord-3": {"배송완료", true, "3/10(일) 도착"},
		"ord-4": {"shipped", false, ""},
		"ord-5": {"", false, ""},
	}
	for id, w := range want {
		dm, ok := received[id]
		require.True(t, ok, "missing order %s", id)
		assert.Equal(t, w.label, dm.Event.StatusLabel, id)
		assert.Equal(t, w.known, dm.Event.StatusKnown, id)
		assert.Equal(t, w.arrival, dm.Event.ArrivalLabel, id)
		assert.Equal(t, w.label, dm.Headers["status_label"], id)
		_, err := time.Parse(time.RFC3339, dm.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at header on %s", id)
	}
}

// TestPipelineTransformError verifies that a poison-pill message is skipped
// and the pipeline keeps processing valid orders.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	valid, err := json.Marshal(mockOrders[0])
	require.NoError(t, err)
	publish(ctx, t, broker,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("ord-1"), Value: valid},
	)

	stop := runPipeline(ctx, t, newConfig(broker, "test-poison"))
	consumer := sinkConsumer(t, broker)

	dm := readDisplay(ctx, t, consumer)
	assert.Equal(t, "ord-1", dm.Event.ID)
	assert.Equal(t, domain.StatusPreparing, dm.Event.StatusLabel)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	stop()
}
