package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Errors for the Sale aggregate
var (
	ErrSaleNumberRequired   = errors.New("sale number is required")
	ErrSaleNumberTooLong    = errors.New("sale number cannot be longer than 15 characters")
	ErrSaleDateRequired     = errors.New("sale date is required")
	ErrCustomerIDRequired   = errors.New("customer id is required")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrBranchIDRequired     = errors.New("branch id is required")
	ErrBranchNameRequired   = errors.New("branch name is required")
	ErrSaleCancelled        = errors.New("sale has been cancelled")
	ErrItemRequired         = errors.New("sale item is required")
	ErrItemNotFound         = errors.New("item not found in sale")
)

// MaxSaleNumberLength bounds the external sale number identifier.
const MaxSaleNumberLength = 15

// Sale is the aggregate root for the sales bounded context. It owns its
// line items; the total amount is always the sum of the totals of the
// non-cancelled items.
type Sale struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SaleNumber   string     `gorm:"size:15;not null;index" json:"saleNumber"`
	Date         time.Time  `gorm:"not null" json:"date"`
	CustomerID   string     `gorm:"not null;index" json:"customerId"`
	CustomerName string     `gorm:"size:200;not null" json:"customerName"`
	BranchID     string     `gorm:"not null;index" json:"branchId"`
	BranchName   string     `gorm:"size:200;not null" json:"branchName"`
	TotalAmount  float64    `gorm:"not null" json:"totalAmount"`
	IsCancelled  bool       `gorm:"not null;default:false" json:"isCancelled"`
	Items        []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewSale creates a new Sale aggregate with no items and a zero total.
// Whether the date lies in the future is a request-level concern and is
// checked by the API validators, not here.
func NewSale(saleNumber string, date time.Time, customerID, customerName, branchID, branchName string) (*Sale, error) {
	if strings.TrimSpace(saleNumber) == "" {
		return nil, ErrSaleNumberRequired
	}
	if len(saleNumber) > MaxSaleNumberLength {
		return nil, ErrSaleNumberTooLong
	}
	if date.IsZero() {
		return nil, ErrSaleDateRequired
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrCustomerIDRequired
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, ErrCustomerNameRequired
	}
	if strings.TrimSpace(branchID) == "" {
		return nil, ErrBranchIDRequired
	}
	if strings.TrimSpace(branchName) == "" {
		return nil, ErrBranchNameRequired
	}

	now := time.Now().UTC()
	return &Sale{
		ID:           uuid.New(),
		SaleNumber:   saleNumber,
		Date:         date,
		CustomerID:   customerID,
		CustomerName: customerName,
		BranchID:     branchID,
		BranchName:   branchName,
		Items:        make([]SaleItem, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// AddItem appends a line item to the sale and recalculates the total.
// Returns ErrItemRequired when the item is nil.
func (s *Sale) AddItem(item *SaleItem) error {
	if item == nil {
		return ErrItemRequired
	}
	item.SaleID = s.ID
	s.Items = append(s.Items, *item)
	s.RecalculateTotal()
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Update replaces the descriptive fields of the sale. The total and the
// items are untouched.
func (s *Sale) Update(saleNumber string, date time.Time, customerID, customerName, branchID, branchName string) error {
	if strings.TrimSpace(saleNumber) == "" {
		return ErrSaleNumberRequired
	}
	if len(saleNumber) > MaxSaleNumberLength {
		return ErrSaleNumberTooLong
	}
	if date.IsZero() {
		return ErrSaleDateRequired
	}
	if strings.TrimSpace(customerID) == "" {
		return ErrCustomerIDRequired
	}
	if strings.TrimSpace(customerName) == "" {
		return ErrCustomerNameRequired
	}
	if strings.TrimSpace(branchID) == "" {
		return ErrBranchIDRequired
	}
	if strings.TrimSpace(branchName) == "" {
		return ErrBranchNameRequired
	}

	s.SaleNumber = saleNumber
	s.Date = date
	s.CustomerID = customerID
	s.CustomerName = customerName
	s.BranchID = branchID
	s.BranchName = branchName
	s.UpdatedAt = time.Now().UTC()

	return nil
}

// Cancel cancels the sale and cascades the cancellation to every item.
// The total drops to zero because no active items remain.
func (s *Sale) Cancel() {
	s.IsCancelled = true
	for i := range s.Items {
		if !s.Items[i].IsCancelled {
			s.Items[i].Cancel()
		}
	}
	s.RecalculateTotal()
	s.UpdatedAt = time.Now().UTC()
}

// CancelItem cancels the item with the given id and recalculates the
// sale. Returns ErrItemNotFound when the sale has no such item.
func (s *Sale) CancelItem(itemID uuid.UUID) error {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			s.Items[i].Cancel()
			s.Recalculate()
			return nil
		}
	}
	return ErrItemNotFound
}

// RecalculateTotal recomputes TotalAmount as the sum of the totals of
// the non-cancelled items.
func (s *Sale) RecalculateTotal() {
	total := 0.0
	for i := range s.Items {
		if !s.Items[i].IsCancelled {
			total += s.Items[i].Total
		}
	}
	s.TotalAmount = total
}

// Recalculate re-derives the sale state from its items: a sale whose
// items are all cancelled becomes cancelled itself, and the total is
// recomputed either way. An empty sale never self-cancels; cancellation
// only follows from cancelling items the sale actually has.
func (s *Sale) Recalculate() {
	if len(s.Items) > 0 {
		allCancelled := true
		for i := range s.Items {
			if !s.Items[i].IsCancelled {
				allCancelled = false
				break
			}
		}
		if allCancelled {
			s.IsCancelled = true
		}
	}
	s.RecalculateTotal()
	s.UpdatedAt = time.Now().UTC()
}

// ActiveItemCount returns the number of non-cancelled items.
func (s *Sale) ActiveItemCount() int {
	count := 0
	for i := range s.Items {
		if !s.Items[i].IsCancelled {
			count++
		}
	}
	return count
}

// FindItem returns the item with the given id, or nil if absent.
func (s *Sale) FindItem(itemID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}
