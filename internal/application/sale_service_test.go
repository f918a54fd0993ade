package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sales-platform/sales-service/internal/domain"
	apperrors "github.com/sales-platform/sales-service/pkg/errors"
	"github.com/sales-platform/sales-service/pkg/logging"
)

// In-memory fakes

type fakeSaleRepo struct {
	sales map[uuid.UUID]*domain.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*domain.Sale)}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *domain.Sale) error {
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	cp.Items = nil
	return &cp, nil
}

func (r *fakeSaleRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	cp.Items = append([]domain.SaleItem(nil), sale.Items...)
	return &cp, nil
}

func (r *fakeSaleRepo) Update(_ context.Context, sale *domain.Sale) error {
	cp := *sale
	cp.Items = append([]domain.SaleItem(nil), sale.Items...)
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) AddItem(_ context.Context, sale *domain.Sale, _ *domain.SaleItem) error {
	return r.Update(context.Background(), sale)
}

func (r *fakeSaleRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.sales[id]; !ok {
		return false, nil
	}
	delete(r.sales, id)
	return true, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter domain.SaleFilter, _ domain.Pagination) ([]*domain.Sale, error) {
	var out []*domain.Sale
	for _, sale := range r.sales {
		if filter.CustomerID != nil && sale.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.IsCancelled != nil && sale.IsCancelled != *filter.IsCancelled {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

func (r *fakeSaleRepo) Count(ctx context.Context, filter domain.SaleFilter) (int64, error) {
	sales, _ := r.List(ctx, filter, domain.DefaultPagination())
	return int64(len(sales)), nil
}

type fakeItemRepo struct {
	saleRepo *fakeSaleRepo
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.SaleItem, error) {
	for _, sale := range r.saleRepo.sales {
		for i := range sale.Items {
			if sale.Items[i].ID == id {
				cp := sale.Items[i]
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeItemRepo) FindBySaleID(_ context.Context, saleID uuid.UUID) ([]*domain.SaleItem, error) {
	sale, ok := r.saleRepo.sales[saleID]
	if !ok {
		return nil, nil
	}
	items := make([]*domain.SaleItem, 0, len(sale.Items))
	for i := range sale.Items {
		cp := sale.Items[i]
		items = append(items, &cp)
	}
	return items, nil
}

func (r *fakeItemRepo) Update(_ context.Context, _ *domain.SaleItem) error {
	return nil
}

type fakePublisher struct {
	events  []domain.DomainEvent
	failErr error
}

func (p *fakePublisher) Publish(_ context.Context, event domain.DomainEvent) error {
	if p.failErr != nil {
		return p.failErr
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

func newTestService(publisher *fakePublisher) (*SaleApplicationService, *fakeSaleRepo) {
	saleRepo := newFakeSaleRepo()
	itemRepo := &fakeItemRepo{saleRepo: saleRepo}
	logger := logging.New(logging.DefaultConfig("sales-service-test"))
	return NewSaleApplicationService(saleRepo, itemRepo, publisher, logger, nil), saleRepo
}

func validCreateCommand() CreateSaleCommand {
	return CreateSaleCommand{
		SaleNumber:   "SALE-001",
		Date:         time.Now().UTC().Add(-time.Hour),
		CustomerID:   "CUST-001",
		CustomerName: "Acme Corp",
		BranchID:     "BR-01",
		BranchName:   "Downtown Branch",
		Items: []SaleItemInput{
			{ProductID: "PROD-001", ProductName: "Keyboard", Quantity: 5, UnitPrice: 100},
			{ProductID: "PROD-002", ProductName: "Cable", Quantity: 12, UnitPrice: 10},
		},
	}
}

// TestCreateSale covers creation, discount totals, and the created event
func TestCreateSale(t *testing.T) {
	publisher := &fakePublisher{}
	svc, repo := newTestService(publisher)

	dto, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.NoError(t, err)
	require.NotNil(t, dto)

	assert.InDelta(t, 546, dto.TotalAmount, 0.0001)
	assert.Len(t, dto.Items, 2)
	assert.Len(t, repo.sales, 1)
	assert.Equal(t, []string{"sales.sale.created"}, publisher.eventTypes())
}

// TestCreateSaleValidation verifies domain errors surface as validation errors
func TestCreateSaleValidation(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := newTestService(publisher)

	cmd := validCreateCommand()
	cmd.Items[0].Quantity = 21

	_, err := svc.CreateSale(context.Background(), cmd)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	assert.Empty(t, publisher.events)
}

// TestCreateSalePublishFailure verifies a failed append fails the command
func TestCreateSalePublishFailure(t *testing.T) {
	publisher := &fakePublisher{failErr: errors.New("event log unavailable")}
	svc, _ := newTestService(publisher)

	_, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEventPublishError, appErr.Code)
}

// TestGetSaleNotFound verifies the not-found mapping
func TestGetSaleNotFound(t *testing.T) {
	svc, _ := newTestService(&fakePublisher{})

	_, err := svc.GetSale(context.Background(), uuid.New(), true)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

// TestCancelSale verifies cancellation cascades and records the event
func TestCancelSale(t *testing.T) {
	publisher := &fakePublisher{}
	svc, repo := newTestService(publisher)

	created, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.NoError(t, err)
	saleID := uuid.MustParse(created.ID)

	dto, err := svc.CancelSale(context.Background(), CancelSaleCommand{SaleID: saleID})
	require.NoError(t, err)

	assert.True(t, dto.IsCancelled)
	assert.Equal(t, 0.0, dto.TotalAmount)
	for _, item := range dto.Items {
		assert.True(t, item.IsCancelled)
	}
	assert.Equal(t, []string{"sales.sale.created", "sales.sale.cancelled"}, publisher.eventTypes())

	// repeated cancellation is a conflict
	_, err = svc.CancelSale(context.Background(), CancelSaleCommand{SaleID: saleID})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	stored := repo.sales[saleID]
	assert.True(t, stored.IsCancelled)
}

// TestAddSaleItemToCancelledSale verifies the orchestration-level rejection
func TestAddSaleItemToCancelledSale(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := newTestService(publisher)

	created, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.NoError(t, err)
	saleID := uuid.MustParse(created.ID)

	_, err = svc.CancelSale(context.Background(), CancelSaleCommand{SaleID: saleID})
	require.NoError(t, err)

	_, err = svc.AddSaleItem(context.Background(), AddSaleItemCommand{
		SaleID:      saleID,
		ProductID:   "PROD-003",
		ProductName: "Mouse",
		Quantity:    1,
		UnitPrice:   25,
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

// TestAddSaleItem verifies item addition updates the total and publishes
func TestAddSaleItem(t *testing.T) {
	publisher := &fakePublisher{}
	svc, repo := newTestService(publisher)

	created, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.NoError(t, err)
	saleID := uuid.MustParse(created.ID)

	item, err := svc.AddSaleItem(context.Background(), AddSaleItemCommand{
		SaleID:      saleID,
		ProductID:   "PROD-003",
		ProductName: "Mouse",
		Quantity:    4,
		UnitPrice:   50,
	})
	require.NoError(t, err)

	// 4 units at 50 gets the 10% tier
	assert.InDelta(t, 20, item.Discount, 0.0001)
	assert.InDelta(t, 180, item.Total, 0.0001)

	stored := repo.sales[saleID]
	assert.InDelta(t, 726, stored.TotalAmount, 0.0001)
	assert.Equal(t, []string{"sales.sale.created", "sales.sale.modified"}, publisher.eventTypes())
}

// TestCancelSaleItem verifies recalculation and the cascading sale cancel
func TestCancelSaleItem(t *testing.T) {
	publisher := &fakePublisher{}
	svc, repo := newTestService(publisher)

	created, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.NoError(t, err)
	saleID := uuid.MustParse(created.ID)

	firstItemID := uuid.MustParse(created.Items[0].ID)
	secondItemID := uuid.MustParse(created.Items[1].ID)

	dto, err := svc.CancelSaleItem(context.Background(), CancelSaleItemCommand{SaleID: saleID, ItemID: firstItemID})
	require.NoError(t, err)

	assert.InDelta(t, 96, dto.TotalAmount, 0.0001)
	assert.False(t, dto.IsCancelled)

	// cancelling the same item again is a conflict
	_, err = svc.CancelSaleItem(context.Background(), CancelSaleItemCommand{SaleID: saleID, ItemID: firstItemID})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	// cancelling the last active item cancels the whole sale
	dto, err = svc.CancelSaleItem(context.Background(), CancelSaleItemCommand{SaleID: saleID, ItemID: secondItemID})
	require.NoError(t, err)
	assert.True(t, dto.IsCancelled)
	assert.Equal(t, 0.0, dto.TotalAmount)

	assert.Equal(t, []string{
		"sales.sale.created",
		"sales.sale.item-cancelled",
		"sales.sale.item-cancelled",
		"sales.sale.cancelled",
	}, publisher.eventTypes())

	stored := repo.sales[saleID]
	assert.True(t, stored.IsCancelled)
}

// TestUpdateSale verifies descriptive updates and the modified event
func TestUpdateSale(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := newTestService(publisher)

	created, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.NoError(t, err)
	saleID := uuid.MustParse(created.ID)

	dto, err := svc.UpdateSale(context.Background(), UpdateSaleCommand{
		SaleID:       saleID,
		SaleNumber:   "SALE-002",
		Date:         time.Now().UTC().Add(-2 * time.Hour),
		CustomerID:   "CUST-002",
		CustomerName: "Globex",
		BranchID:     "BR-02",
		BranchName:   "Uptown Branch",
	})
	require.NoError(t, err)

	assert.Equal(t, "SALE-002", dto.SaleNumber)
	assert.InDelta(t, created.TotalAmount, dto.TotalAmount, 0.0001)
	assert.Equal(t, []string{"sales.sale.created", "sales.sale.modified"}, publisher.eventTypes())
}

// TestDeleteSale verifies delete semantics
func TestDeleteSale(t *testing.T) {
	svc, repo := newTestService(&fakePublisher{})

	created, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.NoError(t, err)
	saleID := uuid.MustParse(created.ID)

	require.NoError(t, svc.DeleteSale(context.Background(), DeleteSaleCommand{SaleID: saleID}))
	assert.Empty(t, repo.sales)

	err = svc.DeleteSale(context.Background(), DeleteSaleCommand{SaleID: saleID})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

// TestGetSaleItems verifies the item listing path
func TestGetSaleItems(t *testing.T) {
	svc, _ := newTestService(&fakePublisher{})

	created, err := svc.CreateSale(context.Background(), validCreateCommand())
	require.NoError(t, err)
	saleID := uuid.MustParse(created.ID)

	items, err := svc.GetSaleItems(context.Background(), saleID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	item, err := svc.GetSaleItem(context.Background(), saleID, uuid.MustParse(items[0].ID))
	require.NoError(t, err)
	assert.Equal(t, items[0].ID, item.ID)

	// item from another sale is not visible
	_, err = svc.GetSaleItem(context.Background(), uuid.New(), uuid.MustParse(items[0].ID))
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
