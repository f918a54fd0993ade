package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sales-platform/sales-service/internal/domain"
	"github.com/sales-platform/sales-service/pkg/logging"
	"github.com/sales-platform/sales-service/pkg/metrics"
)

// SaleRepository implements domain.SaleRepository using PostgreSQL
type SaleRepository struct {
	db      *gorm.DB
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewSaleRepository creates a new SaleRepository. Metrics may be nil,
// for example in transaction-scoped test repositories.
func NewSaleRepository(db *gorm.DB, logger *logging.Logger, m *metrics.Metrics) *SaleRepository {
	return &SaleRepository{
		db:      db,
		logger:  logger.WithComponent("sale_repository"),
		metrics: m,
	}
}

func (r *SaleRepository) recordQuery(ctx context.Context, table, operation string, start time.Time, err error, rows int64) {
	duration := time.Since(start)
	r.logger.DatabaseQuery(ctx, table, operation, duration, err == nil, rows)
	if r.metrics != nil {
		r.metrics.RecordDBOperation(table, operation, err == nil, duration)
	}
}

// Create persists a new sale together with its items
func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Create(sale).Error
	r.recordQuery(ctx, "sales", "create", start, err, 1)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

// FindByID retrieves a sale without its items
func (r *SaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// FindByIDWithItems retrieves a sale with all of its items loaded
func (r *SaleRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// Update persists sale-level changes and any modified items in one transaction
func (r *SaleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Sale{}).Where("id = ?", sale.ID).Updates(map[string]any{
			"sale_number":   sale.SaleNumber,
			"date":          sale.Date,
			"customer_id":   sale.CustomerID,
			"customer_name": sale.CustomerName,
			"branch_id":     sale.BranchID,
			"branch_name":   sale.BranchName,
			"total_amount":  sale.TotalAmount,
			"is_cancelled":  sale.IsCancelled,
			"updated_at":    sale.UpdatedAt,
		}).Error; err != nil {
			return err
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			if err := tx.Model(&domain.SaleItem{}).Where("id = ?", item.ID).Updates(map[string]any{
				"is_cancelled": item.IsCancelled,
				"updated_at":   item.UpdatedAt,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	r.recordQuery(ctx, "sales", "update", start, err, int64(1+len(sale.Items)))
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	return nil
}

// AddItem persists a single new item for an existing sale and updates
// the sale's total and timestamp.
func (r *SaleRepository) AddItem(ctx context.Context, sale *domain.Sale, item *domain.SaleItem) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Sale{}).Where("id = ?", sale.ID).Updates(map[string]any{
			"total_amount": sale.TotalAmount,
			"updated_at":   sale.UpdatedAt,
		}).Error
	})
	r.recordQuery(ctx, "sale_items", "create", start, err, 1)
	if err != nil {
		return fmt.Errorf("failed to add sale item: %w", err)
	}
	return nil
}

// Delete removes a sale and its items; returns false when absent
func (r *SaleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	start := time.Now()
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&domain.SaleItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Sale{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	r.recordQuery(ctx, "sales", "delete", start, err, 1)
	if err != nil {
		return false, fmt.Errorf("failed to delete sale: %w", err)
	}
	return deleted, nil
}

// List retrieves sales matching the filter. Ordering follows the
// pagination's sort column, newest first by default. SortBy is expected
// to be a whitelisted column name; the HTTP layer maps request fields.
func (r *SaleRepository) List(ctx context.Context, filter domain.SaleFilter, pagination domain.Pagination) ([]*domain.Sale, error) {
	query := r.buildFilter(r.db.WithContext(ctx).Model(&domain.Sale{}), filter)

	if filter.WithItems {
		query = query.Preload("Items")
	}

	order := "date DESC"
	if pagination.SortBy != "" {
		direction := "ASC"
		if pagination.SortDesc {
			direction = "DESC"
		}
		order = pagination.SortBy + " " + direction
	}

	var sales []*domain.Sale
	err := query.
		Order(order).
		Offset(int(pagination.Skip())).
		Limit(int(pagination.Limit())).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// Count returns the number of sales matching the filter
func (r *SaleRepository) Count(ctx context.Context, filter domain.SaleFilter) (int64, error) {
	var count int64
	err := r.buildFilter(r.db.WithContext(ctx).Model(&domain.Sale{}), filter).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return count, nil
}

func (r *SaleRepository) buildFilter(query *gorm.DB, filter domain.SaleFilter) *gorm.DB {
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.SaleNumber != nil {
		query = query.Where("sale_number = ?", *filter.SaleNumber)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.CustomerName != nil {
		query = query.Where("customer_name ILIKE ?", *filter.CustomerName+"%")
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.BranchName != nil {
		query = query.Where("branch_name ILIKE ?", *filter.BranchName+"%")
	}
	if filter.IsCancelled != nil {
		query = query.Where("is_cancelled = ?", *filter.IsCancelled)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}
