package workorder

import (
	"context"

	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/workorder/dto"
)

type Repository interface {
	// Find* return (nil, nil) when no row matches. FindByID loads assemblies
	// and specifications.
	FindByID(ctx context.Context, id string) (*model.WorkOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*model.WorkOrder, error)
	FindAll(ctx context.Context, filters *dto.WorkOrderFilters) ([]model.WorkOrder, int, error)
	FindRecent(ctx context.Context, limit int) ([]model.WorkOrder, error)
	CountByStatus(ctx context.Context) (map[model.WOStatus]int, error)
	// TotalEstimatedCost sums estimated_cost over non-cancelled orders.
	TotalEstimatedCost(ctx context.Context) (float64, error)

	// Atomic writes: order, child rows and status-change audit rows commit in
	// one transaction. On update the audit row is written before the order
	// row; on create the order row goes first to satisfy the FK.
	CreateWithChildren(ctx context.Context, wo *model.WorkOrder, change *model.WorkOrderStatusChange) error
	Update(ctx context.Context, wo *model.WorkOrder, change *model.WorkOrderStatusChange) error
	UpdateWithChildren(ctx context.Context, wo *model.WorkOrder, replaceChildren bool, change *model.WorkOrderStatusChange) error
	UpdateAssemblies(ctx context.Context, wo *model.WorkOrder, assemblies []model.WorkOrderAssembly, change *model.WorkOrderStatusChange) error
	DeleteCascade(ctx context.Context, id string) error

	ListStatusChanges(ctx context.Context, workOrderID string) ([]model.WorkOrderStatusChange, error)

	// NextSequence atomically increments the (prefix, year, month) counter.
	NextSequence(ctx context.Context, prefix string, year, month int) (int, error)
}
