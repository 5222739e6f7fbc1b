package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/order-status-etl/internal/domain"
	"github.com/couchcryptid/order-status-etl/internal/observability"
)

// OrderTransformer implements Transformer using the domain label functions.
type OrderTransformer struct {
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates an OrderTransformer.
func NewTransformer(metrics *observability.Metrics, logger *slog.Logger) *OrderTransformer {
	return &OrderTransformer{
		metrics: metrics,
		logger:  logger,
	}
}

func (t *OrderTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OrderEvent, error) {
	event, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OrderEvent{}, err
	}

	event = domain.EnrichOrderEvent(event)
	t.observe(event)

	return event, nil
}

func (t *OrderTransformer) observe(event domain.OrderEvent) {
	switch {
	case event.Status == "":
		t.metrics.StatusLabels.WithLabelValues("empty").Inc()
	case event.StatusKnown:
		t.metrics.StatusLabels.WithLabelValues("known").Inc()
	default:
		t.metrics.StatusLabels.WithLabelValues("passthrough").Inc()
		t.logger.Debug("unrecognized order status", "order_id", event.ID, "status", event.Status)
	}

	switch {
	case event.ArrivalLabel != "":
		t.metrics.ArrivalLabels.WithLabelValues("ok").Inc()
	case errors.Is(dateError(event.OrderedAt), domain.ErrNoDate):
		t.metrics.ArrivalLabels.WithLabelValues("absent").Inc()
	default:
		t.metrics.ArrivalLabels.WithLabelValues("invalid").Inc()
		t.logger.Warn("unparseable order date", "order_id", event.ID, "ordered_at", event.OrderedAt)
	}
}

func dateError(orderedAt string) error {
	_, err := domain.ParseDateInput(orderedAt)
	return err
}
