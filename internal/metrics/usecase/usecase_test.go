package usecase

import (
	"context"
	"testing"

	"github.com/danwidi/erp-ledger-service/internal/inventory"
	invdto "github.com/danwidi/erp-ledger-service/internal/inventory/dto"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/purchase"
	"github.com/danwidi/erp-ledger-service/internal/workorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInventoryRepo struct {
	inventory.Repository
	metrics *invdto.InventoryMetrics
}

func (s *stubInventoryRepo) GetMetrics(ctx context.Context) (*invdto.InventoryMetrics, error) {
	return s.metrics, nil
}

type stubPurchaseRepo struct {
	purchase.Repository
	counts map[model.POStatus]int
	value  float64
	recent []model.PurchaseOrder
}

func (s *stubPurchaseRepo) CountByStatus(ctx context.Context) (map[model.POStatus]int, error) {
	return s.counts, nil
}

func (s *stubPurchaseRepo) TotalOrderValue(ctx context.Context) (float64, error) {
	return s.value, nil
}

func (s *stubPurchaseRepo) FindRecent(ctx context.Context, limit int) ([]model.PurchaseOrder, error) {
	return s.recent, nil
}

type stubWorkOrderRepo struct {
	workorder.Repository
	counts map[model.WOStatus]int
	value  float64
	recent []model.WorkOrder
}

func (s *stubWorkOrderRepo) CountByStatus(ctx context.Context) (map[model.WOStatus]int, error) {
	return s.counts, nil
}

func (s *stubWorkOrderRepo) TotalEstimatedCost(ctx context.Context) (float64, error) {
	return s.value, nil
}

func (s *stubWorkOrderRepo) FindRecent(ctx context.Context, limit int) ([]model.WorkOrder, error) {
	return s.recent, nil
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

func TestGetDashboard(t *testing.T) {
	invRepo := &stubInventoryRepo{metrics: &invdto.InventoryMetrics{TotalItems: 12, TotalValue: 3400}}
	poRepo := &stubPurchaseRepo{
		counts: map[model.POStatus]int{
			model.POStatusDraft:     2,
			model.POStatusOrdered:   3,
			model.POStatusReceived:  4,
			model.POStatusCancelled: 1,
		},
		value:  15000,
		recent: []model.PurchaseOrder{{ID: "po-1"}},
	}
	woRepo := &stubWorkOrderRepo{
		counts: map[model.WOStatus]int{
			model.WOStatusInProgress: 5,
			model.WOStatusDelivered:  2,
		},
		value:  8000,
		recent: []model.WorkOrder{{ID: "wo-1"}},
	}

	uc := NewMetricsUseCase(invRepo, poRepo, woRepo, testLogger())
	dashboard, err := uc.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, dashboard.Inventory.TotalItems)
	// Terminal statuses (RECEIVED, CANCELLED, DELIVERED) never count as open.
	assert.Equal(t, 5, dashboard.OpenPurchaseOrders)
	assert.Equal(t, 5, dashboard.OpenWorkOrders)
	assert.Equal(t, 15000.0, dashboard.PurchaseOrderValue)
	assert.Equal(t, 8000.0, dashboard.WorkOrderValue)
	require.Len(t, dashboard.RecentPurchaseOrders, 1)
	require.Len(t, dashboard.RecentWorkOrders, 1)
}

func TestGetDashboardEmptyStore(t *testing.T) {
	uc := NewMetricsUseCase(
		&stubInventoryRepo{metrics: &invdto.InventoryMetrics{}},
		&stubPurchaseRepo{},
		&stubWorkOrderRepo{},
		testLogger(),
	)

	dashboard, err := uc.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, dashboard.Inventory.TotalItems)
	assert.Equal(t, 0, dashboard.OpenPurchaseOrders)
	assert.Equal(t, 0.0, dashboard.PurchaseOrderValue)
	assert.NotNil(t, dashboard.PurchaseOrdersByStatus)
	assert.NotNil(t, dashboard.WorkOrdersByStatus)
	assert.Empty(t, dashboard.RecentPurchaseOrders)
}
