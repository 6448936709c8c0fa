package purchase

import (
	"context"

	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/purchase/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateOrderInput) (*model.PurchaseOrder, error)
	Update(ctx context.Context, id string, input *dto.UpdateOrderInput) (*model.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.PurchaseOrder, error)
	MarkItemsReceived(ctx context.Context, input *dto.ReceiveItemsInput) (*model.PurchaseOrder, error)
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error)
	GetAll(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error)
	CountByStatus(ctx context.Context) (map[model.POStatus]int, error)
	GetRecent(ctx context.Context, limit int) ([]model.PurchaseOrder, error)
	GetStatusHistory(ctx context.Context, orderID string) ([]model.PurchaseOrderStatusChange, error)
	GenerateOrderNumber(ctx context.Context) (string, error)
}
