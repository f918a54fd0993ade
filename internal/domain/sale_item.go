package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Errors for SaleItem
var (
	ErrProductIDRequired   = errors.New("product id is required")
	ErrProductNameRequired = errors.New("product name is required")
	ErrQuantityTooLow      = errors.New("quantity must be at least 1")
	ErrQuantityTooHigh     = errors.New("quantity cannot exceed 20 units per product")
	ErrUnitPriceInvalid    = errors.New("unit price must be greater than zero")
)

// Quantity bounds for a single product in a sale
const (
	MinItemQuantity = 1
	MaxItemQuantity = 20
)

// Discount tier thresholds and rates
const (
	tierTwoQuantity = 10
	tierOneQuantity = 4
	tierTwoRate     = 0.20
	tierOneRate     = 0.10
)

// SaleItem is a line item within a Sale. Discount and Total are fixed at
// creation time; cancelling an item never rewrites them, it only excludes
// the item from the parent sale's total.
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;index" json:"saleId"`
	ProductID   string    `gorm:"not null" json:"productId"`
	ProductName string    `gorm:"not null" json:"productName"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unitPrice"`
	Discount    float64   `gorm:"not null" json:"discount"`
	Total       float64   `gorm:"not null" json:"total"`
	IsCancelled bool      `gorm:"not null;default:false" json:"isCancelled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewSaleItem creates a line item, validating the business rules and
// computing the quantity discount and the item total.
func NewSaleItem(productID, productName string, quantity int, unitPrice float64) (*SaleItem, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, ErrProductIDRequired
	}
	if strings.TrimSpace(productName) == "" {
		return nil, ErrProductNameRequired
	}
	if quantity < MinItemQuantity {
		return nil, ErrQuantityTooLow
	}
	if quantity > MaxItemQuantity {
		return nil, ErrQuantityTooHigh
	}
	if unitPrice <= 0 {
		return nil, ErrUnitPriceInvalid
	}

	now := time.Now().UTC()
	item := &SaleItem{
		ID:          uuid.New(),
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.Discount = discountFor(quantity, unitPrice)
	item.Total = float64(quantity)*unitPrice - item.Discount

	return item, nil
}

// discountFor applies the tiered quantity discount: 20% for 10 or more
// units, 10% for 4 to 9 units, none below 4.
func discountFor(quantity int, unitPrice float64) float64 {
	gross := float64(quantity) * unitPrice
	switch {
	case quantity >= tierTwoQuantity:
		return gross * tierTwoRate
	case quantity >= tierOneQuantity:
		return gross * tierOneRate
	default:
		return 0
	}
}

// Cancel marks the item as cancelled. Discount and Total keep their
// original values for the audit trail.
func (i *SaleItem) Cancel() {
	i.IsCancelled = true
	i.UpdatedAt = time.Now().UTC()
}
