package inventory

import (
	"context"

	"github.com/danwidi/erp-ledger-service/internal/inventory/dto"
	"github.com/danwidi/erp-ledger-service/internal/model"
)

type UseCase interface {
	// Items
	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, id string, input *dto.UpdateItemInput) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (*model.InventoryItem, error)
	GetItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error)
	SearchItems(ctx context.Context, query string, page, pageSize int) ([]model.InventoryItem, int, error)

	// Stock operations
	AdjustQuantity(ctx context.Context, input *dto.AdjustQuantityInput) (*model.InventoryItem, error)
	CreateReservation(ctx context.Context, input *dto.CreateReservationInput) (*model.InventoryReservation, error)
	ReleaseReservation(ctx context.Context, id string) (*model.InventoryReservation, error)
	ReleaseExpiredReservations(ctx context.Context) (int, error)

	// Audit & alerts
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.InventoryTransaction, int, error)
	ListReservations(ctx context.Context, filters *dto.ReservationFilters) ([]model.InventoryReservation, int, error)
	ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.InventoryAlert, int, error)
	ResolveAlert(ctx context.Context, id, resolvedBy string) error

	// Reporting
	GetMetrics(ctx context.Context) (*dto.InventoryMetrics, error)
}
