package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDomainEventMetadata verifies events self-assign id and timestamp
func TestDomainEventMetadata(t *testing.T) {
	sale := createTestSale(t)
	itemID := uuid.New()

	events := []DomainEvent{
		NewSaleCreatedEvent(sale),
		NewSaleModifiedEvent(sale),
		NewSaleCancelledEvent(sale),
		NewSaleItemCancelledEvent(sale, itemID),
	}

	expectedTypes := []string{
		"sales.sale.created",
		"sales.sale.modified",
		"sales.sale.cancelled",
		"sales.sale.item-cancelled",
	}

	seen := make(map[string]bool)
	for i, evt := range events {
		assert.Equal(t, expectedTypes[i], evt.EventType())
		assert.Equal(t, sale.ID.String(), evt.AggregateID())
		assert.WithinDuration(t, time.Now().UTC(), evt.OccurredAt(), 2*time.Second)

		_, err := uuid.Parse(evt.EventID())
		assert.NoError(t, err)
		assert.False(t, seen[evt.EventID()], "event ids must be unique")
		seen[evt.EventID()] = true
	}
}

// TestSaleItemCancelledEventPayload verifies both ids make it into the JSON
func TestSaleItemCancelledEventPayload(t *testing.T) {
	sale := createTestSale(t)
	itemID := uuid.New()

	evt := NewSaleItemCancelledEvent(sale, itemID)

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.Equal(t, sale.ID.String(), payload["saleId"])
	assert.Equal(t, itemID.String(), payload["saleItemId"])
	assert.Equal(t, "sales.sale.item-cancelled", payload["type"])
	assert.NotEmpty(t, payload["id"])
	assert.NotEmpty(t, payload["timestamp"])
}
