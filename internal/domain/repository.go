package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// Create persists a new sale together with its items
	Create(ctx context.Context, sale *Sale) error

	// FindByID retrieves a sale without its items
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDWithItems retrieves a sale with all of its items loaded
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*Sale, error)

	// Update persists sale-level changes and any modified items
	Update(ctx context.Context, sale *Sale) error

	// AddItem persists a newly added item and the sale's refreshed total
	AddItem(ctx context.Context, sale *Sale, item *SaleItem) error

	// Delete removes a sale and its items; returns false when absent
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// List retrieves sales matching the filter, ordered per the pagination
	List(ctx context.Context, filter SaleFilter, pagination Pagination) ([]*Sale, error)

	// Count returns the number of sales matching the filter
	Count(ctx context.Context, filter SaleFilter) (int64, error)
}

// SaleItemRepository defines the interface for line-item persistence
type SaleItemRepository interface {
	// FindByID retrieves a single item
	FindByID(ctx context.Context, id uuid.UUID) (*SaleItem, error)

	// FindBySaleID retrieves every item of a sale
	FindBySaleID(ctx context.Context, saleID uuid.UUID) ([]*SaleItem, error)

	// Update persists item-level changes
	Update(ctx context.Context, item *SaleItem) error
}

// Pagination represents pagination and ordering options. SortBy names a
// store column; an empty SortBy leaves the repository's default order.
type Pagination struct {
	Page     int64
	PageSize int64
	SortBy   string
	SortDesc bool
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 20,
		SortDesc: true,
	}
}

// Skip returns the number of records to skip
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of records to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}

// SaleFilter represents filter options for querying sales
type SaleFilter struct {
	IDs          []uuid.UUID
	SaleNumber   *string
	CustomerID   *string
	CustomerName *string // prefix match
	BranchID     *string
	BranchName   *string // prefix match
	IsCancelled  *bool
	FromDate     *time.Time
	ToDate       *time.Time
	WithItems    bool
}

// EventPublisher defines the interface for publishing domain events.
// Publishing is part of the command's unit of work: a failed publish
// fails the whole operation.
type EventPublisher interface {
	// Publish records a domain event
	Publish(ctx context.Context, event DomainEvent) error

	// PublishAll records multiple domain events, stopping at the first failure
	PublishAll(ctx context.Context, events []DomainEvent) error
}
