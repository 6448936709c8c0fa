package usecase

import (
	"context"

	"github.com/danwidi/erp-ledger-service/internal/inventory"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/metrics"
	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/purchase"
	"github.com/danwidi/erp-ledger-service/internal/workorder"
)

const recentOrderLimit = 5

type metricsUseCase struct {
	inventoryRepo inventory.Repository
	purchaseRepo  purchase.Repository
	workOrderRepo workorder.Repository
	logger        logger.ZapLogger
}

func NewMetricsUseCase(
	inventoryRepo inventory.Repository,
	purchaseRepo purchase.Repository,
	workOrderRepo workorder.Repository,
	logger logger.ZapLogger,
) metrics.UseCase {
	return &metricsUseCase{
		inventoryRepo: inventoryRepo,
		purchaseRepo:  purchaseRepo,
		workOrderRepo: workOrderRepo,
		logger:        logger,
	}
}

func (uc *metricsUseCase) GetDashboard(ctx context.Context) (*metrics.Dashboard, error) {
	dashboard := &metrics.Dashboard{}

	inventoryMetrics, err := uc.inventoryRepo.GetMetrics(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.Inventory = inventoryMetrics

	poCounts, err := uc.purchaseRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.PurchaseOrdersByStatus = poCounts
	for status, count := range poCounts {
		if !status.IsTerminal() {
			dashboard.OpenPurchaseOrders += count
		}
	}

	poValue, err := uc.purchaseRepo.TotalOrderValue(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.PurchaseOrderValue = poValue

	recentPOs, err := uc.purchaseRepo.FindRecent(ctx, recentOrderLimit)
	if err != nil {
		return nil, err
	}
	dashboard.RecentPurchaseOrders = recentPOs

	woCounts, err := uc.workOrderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.WorkOrdersByStatus = woCounts
	for status, count := range woCounts {
		if !status.IsTerminal() {
			dashboard.OpenWorkOrders += count
		}
	}

	woValue, err := uc.workOrderRepo.TotalEstimatedCost(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.WorkOrderValue = woValue

	recentWOs, err := uc.workOrderRepo.FindRecent(ctx, recentOrderLimit)
	if err != nil {
		return nil, err
	}
	dashboard.RecentWorkOrders = recentWOs

	if dashboard.PurchaseOrdersByStatus == nil {
		dashboard.PurchaseOrdersByStatus = map[model.POStatus]int{}
	}
	if dashboard.WorkOrdersByStatus == nil {
		dashboard.WorkOrdersByStatus = map[model.WOStatus]int{}
	}

	return dashboard, nil
}
