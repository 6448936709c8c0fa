package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/apperrors"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/workorder/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*model.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkOrder), args.Error(1)
}

func (m *mockRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*model.WorkOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkOrder), args.Error(1)
}

func (m *mockRepository) FindAll(ctx context.Context, filters *dto.WorkOrderFilters) ([]model.WorkOrder, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.WorkOrder), args.Int(1), args.Error(2)
}

func (m *mockRepository) FindRecent(ctx context.Context, limit int) ([]model.WorkOrder, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkOrder), args.Error(1)
}

func (m *mockRepository) CountByStatus(ctx context.Context) (map[model.WOStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.WOStatus]int), args.Error(1)
}

func (m *mockRepository) TotalEstimatedCost(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockRepository) CreateWithChildren(ctx context.Context, wo *model.WorkOrder, change *model.WorkOrderStatusChange) error {
	args := m.Called(ctx, wo, change)
	return args.Error(0)
}

func (m *mockRepository) Update(ctx context.Context, wo *model.WorkOrder, change *model.WorkOrderStatusChange) error {
	args := m.Called(ctx, wo, change)
	return args.Error(0)
}

func (m *mockRepository) UpdateWithChildren(ctx context.Context, wo *model.WorkOrder, replaceChildren bool, change *model.WorkOrderStatusChange) error {
	args := m.Called(ctx, wo, replaceChildren, change)
	return args.Error(0)
}

func (m *mockRepository) UpdateAssemblies(ctx context.Context, wo *model.WorkOrder, assemblies []model.WorkOrderAssembly, change *model.WorkOrderStatusChange) error {
	args := m.Called(ctx, wo, assemblies, change)
	return args.Error(0)
}

func (m *mockRepository) DeleteCascade(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepository) ListStatusChanges(ctx context.Context, workOrderID string) ([]model.WorkOrderStatusChange, error) {
	args := m.Called(ctx, workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkOrderStatusChange), args.Error(1)
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

func newUseCase(repo *mockRepository) *workOrderUseCase {
	return &workOrderUseCase{repo: repo, logger: testLogger()}
}

func TestCreateWorkOrder(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("NextSequence", mock.Anything, "WO", mock.Anything, mock.Anything).Return(3, nil)
	repo.On("CreateWithChildren", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	wo, err := uc.Create(context.Background(), &dto.CreateWorkOrderInput{
		CustomerID:    "cust-1",
		CustomerName:  "Globex",
		ProductName:   "Steel Frame",
		TotalQuantity: 100,
		Assemblies: []dto.AssemblyInput{
			{Name: "Base", Quantity: 100, UnitCost: 5},
		},
		Specifications: []dto.SpecificationInput{
			{Name: "finish", Value: "powder-coated"},
		},
		CreatedBy: "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, model.WOStatusDraft, wo.Status)
	now := time.Now()
	expected := fmt.Sprintf("WO-%02d-%02d-003", now.Year()%100, int(now.Month()))
	assert.Equal(t, expected, wo.OrderNumber)
	require.Len(t, wo.Assemblies, 1)
	require.Len(t, wo.Specifications, 1)

	change := repo.Calls[1].Arguments.Get(2).(*model.WorkOrderStatusChange)
	require.NotNil(t, change)
	assert.Equal(t, "work order created", change.Reason)
}

func TestCreateWorkOrderValidation(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	var validationErr *apperrors.ValidationError

	_, err := uc.Create(context.Background(), &dto.CreateWorkOrderInput{
		ProductName: "Frame", TotalQuantity: 1,
	})
	assert.ErrorAs(t, err, &validationErr)

	_, err = uc.Create(context.Background(), &dto.CreateWorkOrderInput{
		CustomerID: "cust-1", ProductName: "Frame", TotalQuantity: 0,
	})
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateProgressFullCompletion(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	existing := &model.WorkOrder{
		ID: "wo-1", Status: model.WOStatusInProgress, TotalQuantity: 100, CompletedQuantity: 60,
	}
	repo.On("FindByID", mock.Anything, "wo-1").Return(existing, nil)

	var captured *model.WorkOrderStatusChange
	repo.On("UpdateAssemblies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			if change, ok := args.Get(3).(*model.WorkOrderStatusChange); ok {
				captured = change
			}
		}).Return(nil)

	qty := 100.0
	wo, err := uc.UpdateProgress(context.Background(), &dto.UpdateProgressInput{
		WorkOrderID: "wo-1", CompletedQuantity: &qty, ChangedBy: "tester",
	})

	require.NoError(t, err)
	assert.Equal(t, model.WOStatusCompleted, wo.Status)
	require.NotNil(t, wo.CompletedDate)
	require.NotNil(t, captured)
	assert.Equal(t, model.WOStatusInProgress, captured.PreviousStatus)
	assert.Equal(t, model.WOStatusCompleted, captured.NewStatus)
}

func TestUpdateProgressPreservesOnHold(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	existing := &model.WorkOrder{
		ID: "wo-1", Status: model.WOStatusOnHold, TotalQuantity: 100, CompletedQuantity: 10,
	}
	repo.On("FindByID", mock.Anything, "wo-1").Return(existing, nil)
	repo.On("UpdateAssemblies", mock.Anything, mock.Anything, mock.Anything, (*model.WorkOrderStatusChange)(nil)).Return(nil)

	qty := 100.0
	wo, err := uc.UpdateProgress(context.Background(), &dto.UpdateProgressInput{
		WorkOrderID: "wo-1", CompletedQuantity: &qty,
	})

	require.NoError(t, err)
	assert.Equal(t, model.WOStatusOnHold, wo.Status)
	assert.Nil(t, wo.CompletedDate)
}

func TestUpdateProgressClampsQuantities(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	existing := &model.WorkOrder{
		ID: "wo-1", Status: model.WOStatusInProgress, TotalQuantity: 100,
		Assemblies: []model.WorkOrderAssembly{
			{ID: "asm-1", WorkOrderID: "wo-1", Quantity: 50},
		},
	}
	repo.On("FindByID", mock.Anything, "wo-1").Return(existing, nil)

	var capturedAssemblies []model.WorkOrderAssembly
	repo.On("UpdateAssemblies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedAssemblies = args.Get(2).([]model.WorkOrderAssembly)
		}).Return(nil)

	qty := 150.0
	wo, err := uc.UpdateProgress(context.Background(), &dto.UpdateProgressInput{
		WorkOrderID:       "wo-1",
		CompletedQuantity: &qty,
		Assemblies: []dto.AssemblyProgress{
			{AssemblyID: "asm-1", CompletedQuantity: 80},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 100.0, wo.CompletedQuantity)
	require.Len(t, capturedAssemblies, 1)
	assert.Equal(t, 50.0, capturedAssemblies[0].CompletedQuantity)
}

func TestUpdateProgressRollback(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	completedAt := time.Now().Add(-time.Hour)
	existing := &model.WorkOrder{
		ID: "wo-1", Status: model.WOStatusCompleted, TotalQuantity: 100,
		CompletedQuantity: 100, CompletedDate: &completedAt,
	}
	repo.On("FindByID", mock.Anything, "wo-1").Return(existing, nil)
	repo.On("UpdateAssemblies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// Dropping progress below 100% rolls the order back into production and
	// clears the completion stamp.
	qty := 40.0
	wo, err := uc.UpdateProgress(context.Background(), &dto.UpdateProgressInput{
		WorkOrderID: "wo-1", CompletedQuantity: &qty,
	})

	require.NoError(t, err)
	assert.Equal(t, model.WOStatusInProgress, wo.Status)
	assert.Equal(t, 40.0, wo.CompletedQuantity)
	assert.Nil(t, wo.CompletedDate)
}

func TestUpdateProgressCancelledOrder(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "wo-1").Return(&model.WorkOrder{
		ID: "wo-1", Status: model.WOStatusCancelled, TotalQuantity: 100,
	}, nil)

	qty := 10.0
	_, err := uc.UpdateProgress(context.Background(), &dto.UpdateProgressInput{
		WorkOrderID: "wo-1", CompletedQuantity: &qty,
	})

	var invalidOpErr *apperrors.InvalidOperationError
	assert.ErrorAs(t, err, &invalidOpErr)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "wo-1").
		Return(&model.WorkOrder{ID: "wo-1", Status: model.WOStatusDraft}, nil)

	_, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		WorkOrderID: "wo-1", NewStatus: "COMPLETED",
	})

	var invalidOpErr *apperrors.InvalidOperationError
	assert.ErrorAs(t, err, &invalidOpErr)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusForceOverride(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "wo-1").
		Return(&model.WorkOrder{ID: "wo-1", Status: model.WOStatusDraft}, nil)
	repo.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	wo, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		WorkOrderID: "wo-1", NewStatus: "COMPLETED", Force: true,
	})

	require.NoError(t, err)
	assert.Equal(t, model.WOStatusCompleted, wo.Status)
	require.NotNil(t, wo.CompletedDate)
}

func TestUpdateStatusCancelFromActive(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "wo-1").
		Return(&model.WorkOrder{ID: "wo-1", Status: model.WOStatusInProgress}, nil)
	repo.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	wo, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		WorkOrderID: "wo-1", NewStatus: "CANCELLED", Reason: "customer cancelled",
	})

	require.NoError(t, err)
	assert.Equal(t, model.WOStatusCancelled, wo.Status)
}

func TestUpdateStatusCancelFromTerminal(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "wo-1").
		Return(&model.WorkOrder{ID: "wo-1", Status: model.WOStatusDelivered}, nil)

	_, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{
		WorkOrderID: "wo-1", NewStatus: "CANCELLED",
	})

	var invalidOpErr *apperrors.InvalidOperationError
	assert.ErrorAs(t, err, &invalidOpErr)
}

func TestDeleteWorkOrderNotFound(t *testing.T) {
	repo := new(mockRepository)
	uc := newUseCase(repo)

	repo.On("FindByID", mock.Anything, "missing").Return(nil, nil)

	err := uc.Delete(context.Background(), "missing")

	var notFoundErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	repo.AssertNotCalled(t, "DeleteCascade", mock.Anything, mock.Anything)
}
