package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseRawEvent deserializes a RawEvent's value into an OrderEvent.
// The order ID falls back to the message key, then to a generated ID.
func ParseRawEvent(raw RawEvent) (OrderEvent, error) {
	var rec RawOrderRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return OrderEvent{}, fmt.Errorf("parse raw order: %w", err)
	}

	id := strings.TrimSpace(rec.OrderID)
	if id == "" {
		id = string(raw.Key)
	}
	if id == "" {
		id = generateID(rec.UserID, rec.Status, rec.OrderedAt)
	}

	return OrderEvent{
		ID:        id,
		UserID:    rec.UserID,
		Status:    rec.Status,
		OrderedAt: rec.OrderedAt,
		Items:     rec.Items,

		RawPayload: raw.Value,
	}, nil
}

// generateID produces a deterministic ID from the order's key fields.
func generateID(userID, status, orderedAt string) string {
	hash := sha256.Sum256([]byte(userID + "|" + status + "|" + orderedAt))
	return "order-" + hex.EncodeToString(hash[:8])
}

// EnrichOrderEvent attaches the canonical status label and the arrival label
// to a parsed order. Unknown statuses and bad dates degrade to pass-through
// and empty values respectively.
func EnrichOrderEvent(event OrderEvent) OrderEvent {
	event.StatusLabel, event.StatusKnown = ClassifyOrderStatus(event.Status)

	event.ArrivesAt = nil
	event.ArrivalLabel = ""
	if orderedAt, err := ParseDateInput(event.OrderedAt); err == nil {
		arrival := ArrivalDate(orderedAt)
		event.ArrivesAt = &arrival
		event.ArrivalLabel = formatArrival(arrival)
	}

	event.ProcessedAt = clock.Now()
	return event
}
