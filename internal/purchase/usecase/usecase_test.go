package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/apperrors"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/purchase/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}

func (m *mockRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}

func (m *mockRepository) FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.PurchaseOrder), args.Int(1), args.Error(2)
}

func (m *mockRepository) FindRecent(ctx context.Context, limit int) ([]model.PurchaseOrder, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PurchaseOrder), args.Error(1)
}

func (m *mockRepository) CountByStatus(ctx context.Context) (map[model.POStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.POStatus]int), args.Error(1)
}

func (m *mockRepository) TotalOrderValue(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockRepository) CreateWithItems(ctx context.Context, po *model.PurchaseOrder, change *model.PurchaseOrderStatusChange) error {
	args := m.Called(ctx, po, change)
	return args.Error(0)
}

func (m *mockRepository) Update(ctx context.Context, po *model.PurchaseOrder, change *model.PurchaseOrderStatusChange) error {
	args := m.Called(ctx, po, change)
	return args.Error(0)
}

func (m *mockRepository) UpdateWithItems(ctx context.Context, po *model.PurchaseOrder, replaceItems bool, change *model.PurchaseOrderStatusChange) error {
	args := m.Called(ctx, po, replaceItems, change)
	return args.Error(0)
}

func (m *mockRepository) DeleteCascade(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepository) ListStatusChanges(ctx context.Context, orderID string) ([]model.PurchaseOrderStatusChange, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PurchaseOrderStatusChange), args.Error(1)
}

func (m *mockRepository) NextSequence(ctx context.Context, prefix string, year, month int) (int, error) {
	args := m.Called(ctx, prefix, year, month)
	return args.Int(0), args.Error(1)
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     true,
		Encoding:          "console",
		Level:             "error",
		DisableCaller:     true,
		DisableStacktrace: true,
	})
}

func newUseCase(repo *mockRepository) *purchaseUseCase {
	return &purchaseUseCase{repo: repo, logger: testLogger()}
}

func TestCreateComputesRollups(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("NextSequence", mock.Anything, "PO", mock.Anything, mock.Anything).Return(1, nil)
	repo.On("CreateWithItems", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	po, err := uc.Create(context.Background(), &dto.CreateOrderInput{
		SupplierID:   "sup-1",
		SupplierName: "Acme Metals",
		TaxRate:      18,
		Items: []dto.LineItemInput{
			{Name: "Steel Rod", Quantity: 10, UnitPrice: 50},
			{Name: "Copper Wire", Quantity: 5, UnitPrice: 100},
		},
		CreatedBy: "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, 1000.0, po.Subtotal)
	assert.Equal(t, 180.0, po.TaxAmount)
	assert.Equal(t, 1180.0, po.TotalAmount)
	assert.Equal(t, model.POStatusDraft, po.Status)
	require.Len(t, po.Items, 2)
	assert.Equal(t, 500.0, po.Items[0].TotalPrice)

	change := repo.Calls[1].Arguments.Get(2).(*model.PurchaseOrderStatusChange)
	require.NotNil(t, change)
	assert.Equal(t, model.POStatusDraft, change.PreviousStatus)
	assert.Equal(t, model.POStatusDraft, change.NewStatus)
	assert.Equal(t, "order created", change.Reason)
}

func TestCreateGeneratesOrderNumber(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("NextSequence", mock.Anything, "PO", mock.Anything, mock.Anything).Return(7, nil)
	repo.On("CreateWithItems", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	po, err := uc.Create(context.Background(), &dto.CreateOrderInput{
		SupplierID: "sup-1",
		Items:      []dto.LineItemInput{{Name: "Steel Rod", Quantity: 1, UnitPrice: 1}},
	})

	require.NoError(t, err)
	now := time.Now()
	expected := fmt.Sprintf("PO-%02d-%02d-007", now.Year()%100, int(now.Month()))
	assert.Equal(t, expected, po.OrderNumber)
}

func TestCreateRejectsDuplicateOrderNumber(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByOrderNumber", mock.Anything, "PO-26-08-001").
		Return(&model.PurchaseOrder{OrderNumber: "PO-26-08-001"}, nil)

	_, err := uc.Create(context.Background(), &dto.CreateOrderInput{
		OrderNumber: "PO-26-08-001",
		SupplierID:  "sup-1",
		Items:       []dto.LineItemInput{{Name: "Steel Rod", Quantity: 1, UnitPrice: 1}},
	})

	var conflictErr *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestCreateValidation(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	var validationErr *apperrors.ValidationError

	_, err := uc.Create(context.Background(), &dto.CreateOrderInput{
		Items: []dto.LineItemInput{{Name: "x", Quantity: 1}},
	})
	assert.ErrorAs(t, err, &validationErr)

	_, err = uc.Create(context.Background(), &dto.CreateOrderInput{SupplierID: "sup-1"})
	assert.ErrorAs(t, err, &validationErr)

	_, err = uc.Create(context.Background(), &dto.CreateOrderInput{
		SupplierID: "sup-1",
		Items:      []dto.LineItemInput{{Name: "x", Quantity: 0}},
	})
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateStatusWritesAuditRow(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	existing := &model.PurchaseOrder{ID: "po-1", Status: model.POStatusDraft}
	repo.On("FindByID", mock.Anything, "po-1").Return(existing, nil)

	var captured *model.PurchaseOrderStatusChange
	repo.On("Update", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(*model.PurchaseOrderStatusChange)
		}).Return(nil)

	po, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		OrderID: "po-1", NewStatus: "PENDING_APPROVAL", ChangedBy: "tester", Reason: "submitted",
	})

	require.NoError(t, err)
	assert.Equal(t, model.POStatusPendingApproval, po.Status)
	require.NotNil(t, captured)
	assert.Equal(t, model.POStatusDraft, captured.PreviousStatus)
	assert.Equal(t, model.POStatusPendingApproval, captured.NewStatus)
	assert.Equal(t, "submitted", captured.Reason)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "po-1").
		Return(&model.PurchaseOrder{ID: "po-1", Status: model.POStatusDraft}, nil)

	_, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		OrderID: "po-1", NewStatus: "RECEIVED",
	})

	var invalidOpErr *apperrors.InvalidOperationError
	assert.ErrorAs(t, err, &invalidOpErr)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusForceOverride(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "po-1").
		Return(&model.PurchaseOrder{ID: "po-1", Status: model.POStatusDraft}, nil)
	repo.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	po, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		OrderID: "po-1", NewStatus: "RECEIVED", Force: true,
	})

	require.NoError(t, err)
	assert.Equal(t, model.POStatusReceived, po.Status)
	require.NotNil(t, po.ReceivedDate)
}

func TestUpdateStatusNoOpOnSameStatus(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "po-1").
		Return(&model.PurchaseOrder{ID: "po-1", Status: model.POStatusOrdered}, nil)

	po, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		OrderID: "po-1", NewStatus: "ORDERED",
	})

	require.NoError(t, err)
	assert.Equal(t, model.POStatusOrdered, po.Status)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkItemsReceivedFull(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	existing := &model.PurchaseOrder{
		ID: "po-1", Status: model.POStatusOrdered,
		Items: []model.PurchaseOrderItem{
			{ID: "line-1", Quantity: 10},
			{ID: "line-2", Quantity: 5},
		},
	}
	repo.On("FindByID", mock.Anything, "po-1").Return(existing, nil)

	var captured *model.PurchaseOrderStatusChange
	repo.On("UpdateWithItems", mock.Anything, mock.Anything, true, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(3).(*model.PurchaseOrderStatusChange)
		}).Return(nil)

	po, err := uc.MarkItemsReceived(context.Background(), &dto.ReceiveItemsInput{
		OrderID: "po-1",
		Receipts: []dto.LineReceipt{
			{LineItemID: "line-1", ReceivedQuantity: 10},
			{LineItemID: "line-2", ReceivedQuantity: 5},
		},
		ChangedBy: "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, model.POStatusReceived, po.Status)
	require.NotNil(t, po.ReceivedDate)
	require.NotNil(t, captured)
	assert.Equal(t, model.POStatusOrdered, captured.PreviousStatus)
	assert.Equal(t, model.POStatusReceived, captured.NewStatus)
}

func TestMarkItemsReceivedPartial(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	existing := &model.PurchaseOrder{
		ID: "po-1", Status: model.POStatusOrdered,
		Items: []model.PurchaseOrderItem{
			{ID: "line-1", Quantity: 10},
			{ID: "line-2", Quantity: 5},
		},
	}
	repo.On("FindByID", mock.Anything, "po-1").Return(existing, nil)
	repo.On("UpdateWithItems", mock.Anything, mock.Anything, true, mock.Anything).Return(nil)

	po, err := uc.MarkItemsReceived(context.Background(), &dto.ReceiveItemsInput{
		OrderID:  "po-1",
		Receipts: []dto.LineReceipt{{LineItemID: "line-1", ReceivedQuantity: 4}},
	})

	require.NoError(t, err)
	assert.Equal(t, model.POStatusPartiallyReceived, po.Status)
	assert.Nil(t, po.ReceivedDate)
}

func TestMarkItemsReceivedClampsQuantity(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	existing := &model.PurchaseOrder{
		ID: "po-1", Status: model.POStatusOrdered,
		Items: []model.PurchaseOrderItem{{ID: "line-1", Quantity: 10}},
	}
	repo.On("FindByID", mock.Anything, "po-1").Return(existing, nil)
	repo.On("UpdateWithItems", mock.Anything, mock.Anything, true, mock.Anything).Return(nil)

	po, err := uc.MarkItemsReceived(context.Background(), &dto.ReceiveItemsInput{
		OrderID:  "po-1",
		Receipts: []dto.LineReceipt{{LineItemID: "line-1", ReceivedQuantity: 25}},
	})

	require.NoError(t, err)
	assert.Equal(t, 10.0, po.Items[0].ReceivedQuantity)
	assert.Equal(t, model.POStatusReceived, po.Status)
}

func TestMarkItemsReceivedUnknownLine(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "po-1").Return(&model.PurchaseOrder{
		ID: "po-1", Status: model.POStatusOrdered,
		Items: []model.PurchaseOrderItem{{ID: "line-1", Quantity: 10}},
	}, nil)

	_, err := uc.MarkItemsReceived(context.Background(), &dto.ReceiveItemsInput{
		OrderID:  "po-1",
		Receipts: []dto.LineReceipt{{LineItemID: "ghost", ReceivedQuantity: 1}},
	})

	var notFoundErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestMarkItemsReceivedCancelledOrder(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "po-1").Return(&model.PurchaseOrder{
		ID: "po-1", Status: model.POStatusCancelled,
	}, nil)

	_, err := uc.MarkItemsReceived(context.Background(), &dto.ReceiveItemsInput{
		OrderID:  "po-1",
		Receipts: []dto.LineReceipt{{LineItemID: "line-1", ReceivedQuantity: 1}},
	})

	var invalidOpErr *apperrors.InvalidOperationError
	assert.ErrorAs(t, err, &invalidOpErr)
}

func TestUpdateRecomputesTotals(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	existing := &model.PurchaseOrder{
		ID: "po-1", Status: model.POStatusDraft, TaxRate: 10,
		Items: []model.PurchaseOrderItem{{ID: "line-1", Quantity: 2, UnitPrice: 50, TotalPrice: 100}},
	}
	repo.On("FindByID", mock.Anything, "po-1").Return(existing, nil)
	repo.On("UpdateWithItems", mock.Anything, mock.Anything, true, mock.Anything).Return(nil)

	po, err := uc.Update(context.Background(), "po-1", &dto.UpdateOrderInput{
		Items: []dto.LineItemInput{{Name: "Steel Rod", Quantity: 4, UnitPrice: 100}},
	})

	require.NoError(t, err)
	assert.Equal(t, 400.0, po.Subtotal)
	assert.Equal(t, 40.0, po.TaxAmount)
	assert.Equal(t, 440.0, po.TotalAmount)
}

func TestDeleteNotFound(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "missing").Return(nil, nil)

	err := uc.Delete(context.Background(), "missing")

	var notFoundErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	repo.AssertNotCalled(t, "DeleteCascade", mock.Anything, mock.Anything)
}
