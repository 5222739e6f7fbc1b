package domain

import (
	"context"
	"time"
)

// RawOrderRecord is the order JSON published by the backend.
type RawOrderRecord struct {
	OrderID   string            `json:"orderId"`
	UserID    string            `json:"userId,omitempty"`
	Status    string            `json:"status"`
	OrderedAt string            `json:"orderedAt"`
	Items     []BackendCartItem `json:"items,omitempty"`
}

// BackendCartItem is an order line as the backend describes it. It is carried
// through to the display event untouched.
type BackendCartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OrderEvent is an order with its display labels attached.
type OrderEvent struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	StatusKnown bool   `json:"status_known"`

	OrderedAt    string     `json:"ordered_at,omitempty"`
	ArrivesAt    *time.Time `json:"arrives_at,omitempty"`
	ArrivalLabel string     `json:"arrival_label"`

	Items []BackendCartItem `json:"items,omitempty"`

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}
