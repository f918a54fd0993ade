package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sales-platform/sales-service/internal/domain"
	"github.com/sales-platform/sales-service/pkg/errors"
	"github.com/sales-platform/sales-service/pkg/logging"
	"github.com/sales-platform/sales-service/pkg/metrics"
)

// SaleApplicationService handles sale-related use cases. Each command
// follows the same sequence: validate, load, mutate the aggregate,
// persist, then record the domain event. A failed event append fails
// the command.
type SaleApplicationService struct {
	saleRepo  domain.SaleRepository
	itemRepo  domain.SaleItemRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewSaleApplicationService creates a new SaleApplicationService
func NewSaleApplicationService(
	saleRepo domain.SaleRepository,
	itemRepo domain.SaleItemRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
	m *metrics.Metrics,
) *SaleApplicationService {
	return &SaleApplicationService{
		saleRepo:  saleRepo,
		itemRepo:  itemRepo,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// CreateSale registers a new sale with its initial items
func (s *SaleApplicationService) CreateSale(ctx context.Context, cmd CreateSaleCommand) (*SaleDTO, error) {
	sale, err := domain.NewSale(cmd.SaleNumber, cmd.Date, cmd.CustomerID, cmd.CustomerName, cmd.BranchID, cmd.BranchName)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	for _, input := range cmd.Items {
		item, err := domain.NewSaleItem(input.ProductID, input.ProductName, input.Quantity, input.UnitPrice)
		if err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
		if err := sale.AddItem(item); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
		if s.metrics != nil {
			s.metrics.RecordItemDiscount(item.Discount)
		}
	}

	sale.Recalculate()

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		s.logger.WithError(err).Error("Failed to create sale", "saleNumber", cmd.SaleNumber)
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.NewSaleCreatedEvent(sale)); err != nil {
		s.logger.WithError(err).Error("Failed to publish sale created event", "saleId", sale.ID)
		return nil, errors.ErrEventPublish("sale created").Wrap(err)
	}

	if s.metrics != nil {
		s.metrics.RecordSaleCreated(sale.BranchID, sale.TotalAmount)
	}

	s.logger.Audit(ctx, "create", "sale", sale.ID.String(), map[string]any{
		"saleNumber":  sale.SaleNumber,
		"totalAmount": sale.TotalAmount,
		"itemCount":   len(sale.Items),
	})

	return ToSaleDTO(sale), nil
}

// GetSale retrieves a sale by id, optionally with its items
func (s *SaleApplicationService) GetSale(ctx context.Context, saleID uuid.UUID, withItems bool) (*SaleDTO, error) {
	var (
		sale *domain.Sale
		err  error
	)

	if withItems {
		sale, err = s.saleRepo.FindByIDWithItems(ctx, saleID)
	} else {
		sale, err = s.saleRepo.FindByID(ctx, saleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, errors.ErrNotFoundWithID("sale", saleID.String())
	}

	return ToSaleDTO(sale), nil
}

// ListSales retrieves sales matching the query and the total match count
func (s *SaleApplicationService) ListSales(ctx context.Context, query ListSalesQuery) ([]*SaleDTO, int64, error) {
	filter := domain.SaleFilter{
		IDs:          query.IDs,
		SaleNumber:   query.SaleNumber,
		CustomerID:   query.CustomerID,
		CustomerName: query.CustomerName,
		BranchID:     query.BranchID,
		BranchName:   query.BranchName,
		IsCancelled:  query.IsCancelled,
		FromDate:     query.FromDate,
		ToDate:       query.ToDate,
		WithItems:    query.WithItems,
	}

	pagination := domain.Pagination{
		Page:     query.Page,
		PageSize: query.PageSize,
		SortBy:   query.SortBy,
		SortDesc: query.SortDesc,
	}
	if pagination.Page < 1 || pagination.PageSize < 1 {
		pagination.Page = 1
		pagination.PageSize = 20
	}

	total, err := s.saleRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	sales, err := s.saleRepo.List(ctx, filter, pagination)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}

	dtos := make([]*SaleDTO, 0, len(sales))
	for _, sale := range sales {
		dtos = append(dtos, ToSaleDTO(sale))
	}

	return dtos, total, nil
}

// UpdateSale replaces a sale's descriptive fields
func (s *SaleApplicationService) UpdateSale(ctx context.Context, cmd UpdateSaleCommand) (*SaleDTO, error) {
	sale, err := s.saleRepo.FindByIDWithItems(ctx, cmd.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, errors.ErrNotFoundWithID("sale", cmd.SaleID.String())
	}

	if err := sale.Update(cmd.SaleNumber, cmd.Date, cmd.CustomerID, cmd.CustomerName, cmd.BranchID, cmd.BranchName); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		s.logger.WithError(err).Error("Failed to update sale", "saleId", sale.ID)
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.NewSaleModifiedEvent(sale)); err != nil {
		s.logger.WithError(err).Error("Failed to publish sale modified event", "saleId", sale.ID)
		return nil, errors.ErrEventPublish("sale modified").Wrap(err)
	}

	return ToSaleDTO(sale), nil
}

// DeleteSale removes a sale and its items. Deletion is an administrative
// correction, not a business fact, so no event is recorded.
func (s *SaleApplicationService) DeleteSale(ctx context.Context, cmd DeleteSaleCommand) error {
	deleted, err := s.saleRepo.Delete(ctx, cmd.SaleID)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if !deleted {
		return errors.ErrNotFoundWithID("sale", cmd.SaleID.String())
	}

	s.logger.Audit(ctx, "delete", "sale", cmd.SaleID.String(), nil)
	return nil
}

// CancelSale cancels a sale and cascades the cancellation to its items
func (s *SaleApplicationService) CancelSale(ctx context.Context, cmd CancelSaleCommand) (*SaleDTO, error) {
	sale, err := s.saleRepo.FindByIDWithItems(ctx, cmd.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, errors.ErrNotFoundWithID("sale", cmd.SaleID.String())
	}
	if sale.IsCancelled {
		return nil, errors.ErrConflict("sale is already cancelled")
	}

	sale.Cancel()

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		s.logger.WithError(err).Error("Failed to cancel sale", "saleId", sale.ID)
		return nil, fmt.Errorf("failed to cancel sale: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.NewSaleCancelledEvent(sale)); err != nil {
		s.logger.WithError(err).Error("Failed to publish sale cancelled event", "saleId", sale.ID)
		return nil, errors.ErrEventPublish("sale cancelled").Wrap(err)
	}

	if s.metrics != nil {
		s.metrics.RecordSaleCancelled(sale.BranchID)
	}

	s.logger.Audit(ctx, "cancel", "sale", sale.ID.String(), map[string]any{
		"saleNumber": sale.SaleNumber,
	})

	return ToSaleDTO(sale), nil
}

// AddSaleItem adds a line item to an existing sale
func (s *SaleApplicationService) AddSaleItem(ctx context.Context, cmd AddSaleItemCommand) (*SaleItemDTO, error) {
	sale, err := s.saleRepo.FindByIDWithItems(ctx, cmd.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, errors.ErrNotFoundWithID("sale", cmd.SaleID.String())
	}
	if sale.IsCancelled {
		return nil, errors.ErrConflict("cannot add items to a cancelled sale")
	}

	item, err := domain.NewSaleItem(cmd.ProductID, cmd.ProductName, cmd.Quantity, cmd.UnitPrice)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := sale.AddItem(item); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saleRepo.AddItem(ctx, sale, item); err != nil {
		s.logger.WithError(err).Error("Failed to add sale item", "saleId", sale.ID)
		return nil, fmt.Errorf("failed to add sale item: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.NewSaleModifiedEvent(sale)); err != nil {
		s.logger.WithError(err).Error("Failed to publish sale modified event", "saleId", sale.ID)
		return nil, errors.ErrEventPublish("sale modified").Wrap(err)
	}

	if s.metrics != nil {
		s.metrics.RecordItemDiscount(item.Discount)
	}

	return ToSaleItemDTO(item), nil
}

// GetSaleItems retrieves every item of a sale
func (s *SaleApplicationService) GetSaleItems(ctx context.Context, saleID uuid.UUID) ([]*SaleItemDTO, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, errors.ErrNotFoundWithID("sale", saleID.String())
	}

	items, err := s.itemRepo.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}

	dtos := make([]*SaleItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ToSaleItemDTO(item))
	}

	return dtos, nil
}

// GetSaleItem retrieves a single item of a sale
func (s *SaleApplicationService) GetSaleItem(ctx context.Context, saleID, itemID uuid.UUID) (*SaleItemDTO, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale item: %w", err)
	}
	if item == nil || item.SaleID != saleID {
		return nil, errors.ErrNotFoundWithID("sale item", itemID.String())
	}

	return ToSaleItemDTO(item), nil
}

// CancelSaleItem cancels a single line item. The parent sale is
// recalculated; when its last active item goes, the sale itself is
// cancelled and a second event records that fact.
func (s *SaleApplicationService) CancelSaleItem(ctx context.Context, cmd CancelSaleItemCommand) (*SaleDTO, error) {
	sale, err := s.saleRepo.FindByIDWithItems(ctx, cmd.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, errors.ErrNotFoundWithID("sale", cmd.SaleID.String())
	}

	item := sale.FindItem(cmd.ItemID)
	if item == nil {
		return nil, errors.ErrNotFoundWithID("sale item", cmd.ItemID.String())
	}
	if item.IsCancelled {
		return nil, errors.ErrConflict("sale item is already cancelled")
	}

	wasCancelled := sale.IsCancelled
	if err := sale.CancelItem(cmd.ItemID); err != nil {
		return nil, errors.ErrNotFoundWithID("sale item", cmd.ItemID.String())
	}

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		s.logger.WithError(err).Error("Failed to cancel sale item", "saleId", sale.ID, "itemId", cmd.ItemID)
		return nil, fmt.Errorf("failed to cancel sale item: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.NewSaleItemCancelledEvent(sale, cmd.ItemID)); err != nil {
		s.logger.WithError(err).Error("Failed to publish item cancelled event", "saleId", sale.ID, "itemId", cmd.ItemID)
		return nil, errors.ErrEventPublish("sale item cancelled").Wrap(err)
	}

	if sale.IsCancelled && !wasCancelled {
		if err := s.publisher.Publish(ctx, domain.NewSaleCancelledEvent(sale)); err != nil {
			s.logger.WithError(err).Error("Failed to publish sale cancelled event", "saleId", sale.ID)
			return nil, errors.ErrEventPublish("sale cancelled").Wrap(err)
		}
		if s.metrics != nil {
			s.metrics.RecordSaleCancelled(sale.BranchID)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordSaleItemCancelled()
	}

	return ToSaleDTO(sale), nil
}
