package workorder

import (
	"context"

	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/workorder/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateWorkOrderInput) (*model.WorkOrder, error)
	Update(ctx context.Context, id string, input *dto.UpdateWorkOrderInput) (*model.WorkOrder, error)
	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.WorkOrder, error)
	UpdateProgress(ctx context.Context, input *dto.UpdateProgressInput) (*model.WorkOrder, error)
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*model.WorkOrder, error)
	GetAll(ctx context.Context, filters *dto.WorkOrderFilters) ([]model.WorkOrder, int, error)
	CountByStatus(ctx context.Context) (map[model.WOStatus]int, error)
	GetRecent(ctx context.Context, limit int) ([]model.WorkOrder, error)
	GetStatusHistory(ctx context.Context, workOrderID string) ([]model.WorkOrderStatusChange, error)
	GenerateOrderNumber(ctx context.Context) (string, error)
}
