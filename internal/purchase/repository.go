package purchase

import (
	"context"

	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/purchase/dto"
)

type Repository interface {
	// Find* return (nil, nil) when no row matches. FindByID loads line items.
	FindByID(ctx context.Context, id string) (*model.PurchaseOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*model.PurchaseOrder, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error)
	FindRecent(ctx context.Context, limit int) ([]model.PurchaseOrder, error)
	CountByStatus(ctx context.Context) (map[model.POStatus]int, error)
	// TotalOrderValue sums total_amount over non-cancelled orders.
	TotalOrderValue(ctx context.Context) (float64, error)

	// Atomic writes: order, line items and status-change audit rows commit in
	// one transaction. On update the audit row is written before the order
	// row; on create the order row goes first to satisfy the FK.
	CreateWithItems(ctx context.Context, po *model.PurchaseOrder, change *model.PurchaseOrderStatusChange) error
	Update(ctx context.Context, po *model.PurchaseOrder, change *model.PurchaseOrderStatusChange) error
	UpdateWithItems(ctx context.Context, po *model.PurchaseOrder, replaceItems bool, change *model.PurchaseOrderStatusChange) error
	DeleteCascade(ctx context.Context, id string) error

	ListStatusChanges(ctx context.Context, orderID string) ([]model.PurchaseOrderStatusChange, error)

	// NextSequence atomically increments the (prefix, year, month) counter.
	NextSequence(ctx context.Context, prefix string, year, month int) (int, error)
}
