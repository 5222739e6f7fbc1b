package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/order-status-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("ord-1"),
		Value:     []byte(`{"orderId":"ord-1"}`),
		Topic:     "raw-order-events",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("order-api")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("ord-1"), raw.Key)
	assert.JSONEq(t, `{"orderId":"ord-1"}`, string(raw.Value))
	assert.Equal(t, "raw-order-events", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "order-api", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	event := domain.OrderEvent{
		ID:           "ord-1",
		Status:       "DELIVERED",
		StatusLabel:  domain.StatusDelivered,
		StatusKnown:  true,
		ArrivalLabel: "1/2(화) 도착",
		ProcessedAt:  now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("ord-1"), msg.Key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "배송완료", body["status_label"])
	assert.Equal(t, "1/2(화) 도착", body["arrival_label"])

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "status_label", msg.Headers[0].Key)
	assert.Equal(t, []byte("배송완료"), msg.Headers[0].Value)
	assert.Equal(t, "status_known", msg.Headers[1].Key)
	assert.Equal(t, []byte("true"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestWriter_LoadBatchEmpty(t *testing.T) {
	w := &Writer{writer: &kafkago.Writer{}, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	assert.NoError(t, w.LoadBatch(context.Background(), nil))
}
