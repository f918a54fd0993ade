package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSaleItem tests line item creation and validation
func TestNewSaleItem(t *testing.T) {
	tests := []struct {
		name        string
		productID   string
		productName string
		quantity    int
		unitPrice   float64
		expectError error
	}{
		{
			name:        "Valid item",
			productID:   "PROD-001",
			productName: "Keyboard",
			quantity:    2,
			unitPrice:   59.90,
			expectError: nil,
		},
		{
			name:        "Missing product id",
			productID:   "",
			productName: "Keyboard",
			quantity:    2,
			unitPrice:   59.90,
			expectError: ErrProductIDRequired,
		},
		{
			name:        "Whitespace product name",
			productID:   "PROD-001",
			productName: "   ",
			quantity:    2,
			unitPrice:   59.90,
			expectError: ErrProductNameRequired,
		},
		{
			name:        "Quantity below minimum",
			productID:   "PROD-001",
			productName: "Keyboard",
			quantity:    0,
			unitPrice:   59.90,
			expectError: ErrQuantityTooLow,
		},
		{
			name:        "Quantity above maximum",
			productID:   "PROD-001",
			productName: "Keyboard",
			quantity:    21,
			unitPrice:   59.90,
			expectError: ErrQuantityTooHigh,
		},
		{
			name:        "Zero unit price",
			productID:   "PROD-001",
			productName: "Keyboard",
			quantity:    2,
			unitPrice:   0,
			expectError: ErrUnitPriceInvalid,
		},
		{
			name:        "Negative unit price",
			productID:   "PROD-001",
			productName: "Keyboard",
			quantity:    2,
			unitPrice:   -10,
			expectError: ErrUnitPriceInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewSaleItem(tt.productID, tt.productName, tt.quantity, tt.unitPrice)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, item)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, item)
			assert.NotEqual(t, "", item.ID.String())
			assert.Equal(t, tt.productID, item.ProductID)
			assert.Equal(t, tt.quantity, item.Quantity)
			assert.False(t, item.IsCancelled)
			assert.False(t, item.CreatedAt.IsZero())
		})
	}
}

// TestSaleItemDiscountTiers verifies the quantity discount schedule
func TestSaleItemDiscountTiers(t *testing.T) {
	tests := []struct {
		name           string
		quantity       int
		unitPrice      float64
		expectDiscount float64
		expectTotal    float64
	}{
		{"Single unit, no discount", 1, 100, 0, 100},
		{"Three units, no discount", 3, 100, 0, 300},
		{"Four units, ten percent", 4, 100, 40, 360},
		{"Five units, ten percent", 5, 100, 50, 450},
		{"Nine units, ten percent", 9, 100, 90, 810},
		{"Ten units, twenty percent", 10, 100, 200, 800},
		{"Twelve units, twenty percent", 12, 10, 24, 96},
		{"Twenty units, twenty percent", 20, 100, 400, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewSaleItem("PROD-001", "Widget", tt.quantity, tt.unitPrice)
			require.NoError(t, err)

			assert.InDelta(t, tt.expectDiscount, item.Discount, 0.0001)
			assert.InDelta(t, tt.expectTotal, item.Total, 0.0001)
		})
	}
}

// TestSaleItemCancel verifies that cancelling preserves the priced values
func TestSaleItemCancel(t *testing.T) {
	item, err := NewSaleItem("PROD-001", "Widget", 5, 100)
	require.NoError(t, err)

	discount := item.Discount
	total := item.Total
	updatedBefore := item.UpdatedAt

	item.Cancel()

	assert.True(t, item.IsCancelled)
	assert.Equal(t, discount, item.Discount)
	assert.Equal(t, total, item.Total)
	assert.False(t, item.UpdatedAt.Before(updatedBefore))

	// Cancelling again is harmless
	item.Cancel()
	assert.True(t, item.IsCancelled)
	assert.Equal(t, total, item.Total)
}
