package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestSale(t *testing.T) *Sale {
	t.Helper()
	sale, err := NewSale("SALE-2024-001", time.Now().UTC(), "CUST-001", "Acme Corp", "BR-01", "Downtown Branch")
	require.NoError(t, err)
	return sale
}

func mustItem(t *testing.T, quantity int, unitPrice float64) *SaleItem {
	t.Helper()
	item, err := NewSaleItem("PROD-"+uuid.New().String()[:8], "Test Product", quantity, unitPrice)
	require.NoError(t, err)
	return item
}

// TestNewSale tests sale creation and validation
func TestNewSale(t *testing.T) {
	validDate := time.Now().UTC()

	tests := []struct {
		name         string
		saleNumber   string
		date         time.Time
		customerID   string
		customerName string
		branchID     string
		branchName   string
		expectError  error
	}{
		{
			name:         "Valid sale",
			saleNumber:   "SALE-001",
			date:         validDate,
			customerID:   "CUST-001",
			customerName: "Acme Corp",
			branchID:     "BR-01",
			branchName:   "Downtown Branch",
			expectError:  nil,
		},
		{
			name:         "Missing sale number",
			saleNumber:   "  ",
			date:         validDate,
			customerID:   "CUST-001",
			customerName: "Acme Corp",
			branchID:     "BR-01",
			branchName:   "Downtown Branch",
			expectError:  ErrSaleNumberRequired,
		},
		{
			name:         "Sale number too long",
			saleNumber:   "SALE-00000000001",
			date:         validDate,
			customerID:   "CUST-001",
			customerName: "Acme Corp",
			branchID:     "BR-01",
			branchName:   "Downtown Branch",
			expectError:  ErrSaleNumberTooLong,
		},
		{
			name:         "Zero date",
			saleNumber:   "SALE-001",
			date:         time.Time{},
			customerID:   "CUST-001",
			customerName: "Acme Corp",
			branchID:     "BR-01",
			branchName:   "Downtown Branch",
			expectError:  ErrSaleDateRequired,
		},
		{
			name:         "Missing customer id",
			saleNumber:   "SALE-001",
			date:         validDate,
			customerID:   "",
			customerName: "Acme Corp",
			branchID:     "BR-01",
			branchName:   "Downtown Branch",
			expectError:  ErrCustomerIDRequired,
		},
		{
			name:         "Missing customer name",
			saleNumber:   "SALE-001",
			date:         validDate,
			customerID:   "CUST-001",
			customerName: "",
			branchID:     "BR-01",
			branchName:   "Downtown Branch",
			expectError:  ErrCustomerNameRequired,
		},
		{
			name:         "Missing branch id",
			saleNumber:   "SALE-001",
			date:         validDate,
			customerID:   "CUST-001",
			customerName: "Acme Corp",
			branchID:     "",
			branchName:   "Downtown Branch",
			expectError:  ErrBranchIDRequired,
		},
		{
			name:         "Missing branch name",
			saleNumber:   "SALE-001",
			date:         validDate,
			customerID:   "CUST-001",
			customerName: "Acme Corp",
			branchID:     "BR-01",
			branchName:   "",
			expectError:  ErrBranchNameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale, err := NewSale(tt.saleNumber, tt.date, tt.customerID, tt.customerName, tt.branchID, tt.branchName)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, sale)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, sale)
			assert.Equal(t, 0.0, sale.TotalAmount)
			assert.False(t, sale.IsCancelled)
			assert.Empty(t, sale.Items)
		})
	}
}

// TestSaleAddItem verifies totals track item additions
func TestSaleAddItem(t *testing.T) {
	sale := createTestSale(t)

	require.NoError(t, sale.AddItem(mustItem(t, 5, 100))) // discount 50, total 450
	assert.InDelta(t, 450, sale.TotalAmount, 0.0001)

	require.NoError(t, sale.AddItem(mustItem(t, 12, 10))) // discount 24, total 96
	assert.InDelta(t, 546, sale.TotalAmount, 0.0001)

	assert.Len(t, sale.Items, 2)
	for _, item := range sale.Items {
		assert.Equal(t, sale.ID, item.SaleID)
	}
}

// TestSaleAddItemNil verifies a nil item is rejected, not appended
func TestSaleAddItemNil(t *testing.T) {
	sale := createTestSale(t)

	err := sale.AddItem(nil)
	assert.ErrorIs(t, err, ErrItemRequired)
	assert.Empty(t, sale.Items)
	assert.Equal(t, 0.0, sale.TotalAmount)
}

// TestSaleCancelCascades verifies cancel propagates to all items
func TestSaleCancelCascades(t *testing.T) {
	sale := createTestSale(t)
	require.NoError(t, sale.AddItem(mustItem(t, 5, 100)))
	require.NoError(t, sale.AddItem(mustItem(t, 12, 10)))

	sale.Cancel()

	assert.True(t, sale.IsCancelled)
	assert.Equal(t, 0.0, sale.TotalAmount)
	for _, item := range sale.Items {
		assert.True(t, item.IsCancelled)
		// priced values survive cancellation
		assert.Greater(t, item.Total, 0.0)
	}
}

// TestSaleCancelItem verifies single-item cancellation and recalculation
func TestSaleCancelItem(t *testing.T) {
	sale := createTestSale(t)
	first := mustItem(t, 5, 100)
	second := mustItem(t, 12, 10)
	require.NoError(t, sale.AddItem(first))
	require.NoError(t, sale.AddItem(second))
	require.InDelta(t, 546, sale.TotalAmount, 0.0001)

	err := sale.CancelItem(first.ID)
	require.NoError(t, err)

	assert.InDelta(t, 96, sale.TotalAmount, 0.0001)
	assert.False(t, sale.IsCancelled)
	assert.Equal(t, 1, sale.ActiveItemCount())

	// cancelling the last active item cancels the sale itself
	err = sale.CancelItem(second.ID)
	require.NoError(t, err)

	assert.True(t, sale.IsCancelled)
	assert.Equal(t, 0.0, sale.TotalAmount)
}

// TestSaleCancelItemNotFound verifies the missing-item error
func TestSaleCancelItemNotFound(t *testing.T) {
	sale := createTestSale(t)
	require.NoError(t, sale.AddItem(mustItem(t, 2, 10)))

	err := sale.CancelItem(uuid.New())
	assert.ErrorIs(t, err, ErrItemNotFound)
}

// TestSaleRecalculateEmpty verifies an empty sale never self-cancels
func TestSaleRecalculateEmpty(t *testing.T) {
	sale := createTestSale(t)

	sale.Recalculate()

	assert.False(t, sale.IsCancelled)
	assert.Equal(t, 0.0, sale.TotalAmount)
}

// TestSaleUpdate verifies descriptive updates leave totals alone
func TestSaleUpdate(t *testing.T) {
	sale := createTestSale(t)
	require.NoError(t, sale.AddItem(mustItem(t, 5, 100)))
	total := sale.TotalAmount

	newDate := time.Now().UTC().Add(-24 * time.Hour)
	err := sale.Update("SALE-002", newDate, "CUST-002", "Globex", "BR-02", "Uptown Branch")
	require.NoError(t, err)

	assert.Equal(t, "SALE-002", sale.SaleNumber)
	assert.Equal(t, "CUST-002", sale.CustomerID)
	assert.Equal(t, "Globex", sale.CustomerName)
	assert.Equal(t, "BR-02", sale.BranchID)
	assert.Equal(t, total, sale.TotalAmount)
	assert.Len(t, sale.Items, 1)
}

// TestSaleUpdateValidation verifies update rejects the same bad input as creation
func TestSaleUpdateValidation(t *testing.T) {
	sale := createTestSale(t)

	assert.ErrorIs(t, sale.Update("", time.Now(), "C", "Cust", "B", "Branch"), ErrSaleNumberRequired)
	assert.ErrorIs(t, sale.Update("SALE-00000000001", time.Now(), "C", "Cust", "B", "Branch"), ErrSaleNumberTooLong)
	assert.ErrorIs(t, sale.Update("SALE-002", time.Time{}, "C", "Cust", "B", "Branch"), ErrSaleDateRequired)
	assert.ErrorIs(t, sale.Update("SALE-002", time.Now(), "", "Cust", "B", "Branch"), ErrCustomerIDRequired)
}

// TestSaleFindItem tests item lookup
func TestSaleFindItem(t *testing.T) {
	sale := createTestSale(t)
	item := mustItem(t, 2, 10)
	require.NoError(t, sale.AddItem(item))

	found := sale.FindItem(item.ID)
	require.NotNil(t, found)
	assert.Equal(t, item.ID, found.ID)

	assert.Nil(t, sale.FindItem(uuid.New()))
}
