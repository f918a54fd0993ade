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

// SaleItemRepository implements domain.SaleItemRepository using PostgreSQL
type SaleItemRepository struct {
	db      *gorm.DB
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewSaleItemRepository creates a new SaleItemRepository. Metrics may be nil.
func NewSaleItemRepository(db *gorm.DB, logger *logging.Logger, m *metrics.Metrics) *SaleItemRepository {
	return &SaleItemRepository{
		db:      db,
		logger:  logger.WithComponent("sale_item_repository"),
		metrics: m,
	}
}

// FindByID retrieves a single item
func (r *SaleItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SaleItem, error) {
	var item domain.SaleItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindBySaleID retrieves every item of a sale, oldest first
func (r *SaleItemRepository) FindBySaleID(ctx context.Context, saleID uuid.UUID) ([]*domain.SaleItem, error) {
	var items []*domain.SaleItem
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	return items, nil
}

// Update persists item-level changes
func (r *SaleItemRepository) Update(ctx context.Context, item *domain.SaleItem) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Model(&domain.SaleItem{}).Where("id = ?", item.ID).Updates(map[string]any{
		"is_cancelled": item.IsCancelled,
		"updated_at":   item.UpdatedAt,
	}).Error
	duration := time.Since(start)
	r.logger.DatabaseQuery(ctx, "sale_items", "update", duration, err == nil, 1)
	if r.metrics != nil {
		r.metrics.RecordDBOperation("sale_items", "update", err == nil, duration)
	}
	if err != nil {
		return fmt.Errorf("failed to update sale item: %w", err)
	}
	return nil
}
