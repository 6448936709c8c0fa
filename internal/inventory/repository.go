package inventory

import (
	"context"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/inventory/dto"
	"github.com/danwidi/erp-ledger-service/internal/model"
)

type Repository interface {
	// Items. Find* return (nil, nil) when no row matches.
	FindItemByID(ctx context.Context, id string) (*model.InventoryItem, error)
	FindItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error)
	FindItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error)

	// Atomic multi-table writes: each call is one transaction, all rows
	// commit together or not at all.
	CreateItemWithTransaction(ctx context.Context, item *model.InventoryItem, txn *model.InventoryTransaction) error
	UpdateItemWithTransaction(ctx context.Context, item *model.InventoryItem, txn *model.InventoryTransaction, alert *model.InventoryAlert) error
	ReserveStock(ctx context.Context, item *model.InventoryItem, res *model.InventoryReservation) error
	ReleaseReservation(ctx context.Context, item *model.InventoryItem, res *model.InventoryReservation) error
	DeleteItemCascade(ctx context.Context, itemID string) error

	// Movements / audit
	ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.InventoryTransaction, int, error)

	// Reservations
	FindReservationByID(ctx context.Context, id string) (*model.InventoryReservation, error)
	ListReservations(ctx context.Context, filters *dto.ReservationFilters) ([]model.InventoryReservation, int, error)
	FindExpiredActiveReservations(ctx context.Context, now time.Time) ([]model.InventoryReservation, error)
	ActiveReservationTotal(ctx context.Context, itemID string) (float64, error)

	// Alerts. ResolveAlert reports false when no unresolved alert matched.
	FindOpenAlert(ctx context.Context, itemID string) (*model.InventoryAlert, error)
	ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.InventoryAlert, int, error)
	ResolveAlert(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error)

	// Reporting
	GetMetrics(ctx context.Context) (*dto.InventoryMetrics, error)
}
