package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a domain event
type DomainEvent interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseDomainEvent contains common event fields
type BaseDomainEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateId string    `json:"aggregateId"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseDomainEvent) EventID() string       { return e.ID }
func (e BaseDomainEvent) EventType() string     { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseDomainEvent) AggregateID() string   { return e.AggregateId }

func newBase(eventType string, saleID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateId: saleID.String(),
		Timestamp:   time.Now().UTC(),
	}
}

// SaleCreatedEvent is raised when a new sale is registered
type SaleCreatedEvent struct {
	BaseDomainEvent
	SaleID string `json:"saleId"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: newBase("sales.sale.created", sale.ID),
		SaleID:          sale.ID.String(),
	}
}

// SaleModifiedEvent is raised when a sale's data or item set changes
type SaleModifiedEvent struct {
	BaseDomainEvent
	SaleID string `json:"saleId"`
}

// NewSaleModifiedEvent creates a new SaleModifiedEvent
func NewSaleModifiedEvent(sale *Sale) *SaleModifiedEvent {
	return &SaleModifiedEvent{
		BaseDomainEvent: newBase("sales.sale.modified", sale.ID),
		SaleID:          sale.ID.String(),
	}
}

// SaleCancelledEvent is raised when a sale is cancelled
type SaleCancelledEvent struct {
	BaseDomainEvent
	SaleID string `json:"saleId"`
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(sale *Sale) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: newBase("sales.sale.cancelled", sale.ID),
		SaleID:          sale.ID.String(),
	}
}

// SaleItemCancelledEvent is raised when a single line item is cancelled
type SaleItemCancelledEvent struct {
	BaseDomainEvent
	SaleID     string `json:"saleId"`
	SaleItemID string `json:"saleItemId"`
}

// NewSaleItemCancelledEvent creates a new SaleItemCancelledEvent
func NewSaleItemCancelledEvent(sale *Sale, itemID uuid.UUID) *SaleItemCancelledEvent {
	return &SaleItemCancelledEvent{
		BaseDomainEvent: newBase("sales.sale.item-cancelled", sale.ID),
		SaleID:          sale.ID.String(),
		SaleItemID:      itemID.String(),
	}
}
