package application

import (
	"time"

	"github.com/google/uuid"
)

// CreateSaleCommand represents the command to register a new sale
type CreateSaleCommand struct {
	SaleNumber   string
	Date         time.Time
	CustomerID   string
	CustomerName string
	BranchID     string
	BranchName   string
	Items        []SaleItemInput
}

// SaleItemInput represents a line item in a command
type SaleItemInput struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
}

// UpdateSaleCommand represents the command to update a sale's descriptive data
type UpdateSaleCommand struct {
	SaleID       uuid.UUID
	SaleNumber   string
	Date         time.Time
	CustomerID   string
	CustomerName string
	BranchID     string
	BranchName   string
}

// CancelSaleCommand represents the command to cancel a sale
type CancelSaleCommand struct {
	SaleID uuid.UUID
}

// DeleteSaleCommand represents the command to delete a sale
type DeleteSaleCommand struct {
	SaleID uuid.UUID
}

// AddSaleItemCommand represents the command to add an item to a sale
type AddSaleItemCommand struct {
	SaleID      uuid.UUID
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
}

// CancelSaleItemCommand represents the command to cancel a single item
type CancelSaleItemCommand struct {
	SaleID uuid.UUID
	ItemID uuid.UUID
}

// ListSalesQuery represents the query to list sales with filters and pagination
type ListSalesQuery struct {
	IDs          []uuid.UUID
	SaleNumber   *string
	CustomerID   *string
	CustomerName *string
	BranchID     *string
	BranchName   *string
	IsCancelled  *bool
	FromDate     *time.Time
	ToDate       *time.Time
	WithItems    bool
	Page         int64
	PageSize     int64
	SortBy       string
	SortDesc     bool
}

// ListEventLogsQuery represents the query to browse the audit log
type ListEventLogsQuery struct {
	EventID   *string
	EventType *string
	FromDate  *time.Time
	ToDate    *time.Time
	Page      int64
	PageSize  int64
	SortDesc  bool
}
