package metrics

import (
	"context"

	invdto "github.com/danwidi/erp-ledger-service/internal/inventory/dto"
	"github.com/danwidi/erp-ledger-service/internal/model"
)

// Dashboard is the read-side aggregate over inventory and both order books.
// It is computed on demand, never stored.
type Dashboard struct {
	Inventory *invdto.InventoryMetrics `json:"inventory"`

	PurchaseOrdersByStatus map[model.POStatus]int `json:"purchase_orders_by_status"`
	OpenPurchaseOrders     int                    `json:"open_purchase_orders"`
	PurchaseOrderValue     float64                `json:"purchase_order_value"`
	RecentPurchaseOrders   []model.PurchaseOrder  `json:"recent_purchase_orders"`

	WorkOrdersByStatus map[model.WOStatus]int `json:"work_orders_by_status"`
	OpenWorkOrders     int                    `json:"open_work_orders"`
	WorkOrderValue     float64                `json:"work_order_value"`
	RecentWorkOrders   []model.WorkOrder      `json:"recent_work_orders"`
}

type UseCase interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
}
