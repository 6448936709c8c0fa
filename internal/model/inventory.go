package model

import "time"

// Inventory item lifecycle statuses. IN_STOCK / LOW_STOCK / OUT_OF_STOCK are
// derived from quantity vs thresholds; DISCONTINUED and PENDING_RECEIPT are
// only ever set by explicit update.
type ItemStatus string

const (
	ItemStatusInStock        ItemStatus = "IN_STOCK"
	ItemStatusLowStock       ItemStatus = "LOW_STOCK"
	ItemStatusOutOfStock     ItemStatus = "OUT_OF_STOCK"
	ItemStatusDiscontinued   ItemStatus = "DISCONTINUED"
	ItemStatusPendingReceipt ItemStatus = "PENDING_RECEIPT"
)

type TransactionType string

const (
	TransactionAdjustment  TransactionType = "ADJUSTMENT"
	TransactionReceipt     TransactionType = "RECEIPT"
	TransactionReservation TransactionType = "RESERVATION"
	TransactionRelease     TransactionType = "RELEASE"
)

type AlertLevel string

const (
	AlertLevelNormal   AlertLevel = "normal"
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelCritical AlertLevel = "critical"
)

type InventoryItem struct {
	ID                string     `db:"id" json:"id"`
	SKU               string     `db:"sku" json:"sku"`
	Name              string     `db:"name" json:"name"`
	Description       string     `db:"description" json:"description"`
	Category          string     `db:"category" json:"category"`
	ItemType          string     `db:"item_type" json:"item_type"`
	Unit              string     `db:"unit" json:"unit"`
	Status            ItemStatus `db:"status" json:"status"`
	SupplierID        *string    `db:"supplier_id" json:"supplier_id"`
	SupplierName      string     `db:"supplier_name" json:"supplier_name"`
	CurrentQuantity   float64    `db:"current_quantity" json:"current_quantity"`
	ReservedQuantity  float64    `db:"reserved_quantity" json:"reserved_quantity"`
	AvailableQuantity float64    `db:"available_quantity" json:"available_quantity"`
	MinimumQuantity   float64    `db:"minimum_quantity" json:"minimum_quantity"`
	MaximumQuantity   float64    `db:"maximum_quantity" json:"maximum_quantity"`
	ReorderQuantity   float64    `db:"reorder_quantity" json:"reorder_quantity"`
	UnitPrice         float64    `db:"unit_price" json:"unit_price"`
	TotalValue        float64    `db:"total_value" json:"total_value"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	IsFlagged         bool       `db:"is_flagged" json:"is_flagged"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Recalculate re-derives every computed field from the stored quantities.
// Must be called after any change to quantity, reservation or price.
func (i *InventoryItem) Recalculate() {
	i.AvailableQuantity = i.CurrentQuantity - i.ReservedQuantity
	i.TotalValue = i.CurrentQuantity * i.UnitPrice
	i.Status = DeriveItemStatus(i.CurrentQuantity, i.MinimumQuantity)
	i.IsFlagged = i.CurrentQuantity <= i.MinimumQuantity
}

// DeriveItemStatus maps current quantity against the minimum threshold.
func DeriveItemStatus(current, minimum float64) ItemStatus {
	switch {
	case current <= 0:
		return ItemStatusOutOfStock
	case current <= minimum:
		return ItemStatusLowStock
	default:
		return ItemStatusInStock
	}
}

// AlertLevelFor returns the alert severity a status warrants, or "" when the
// status does not warrant one.
func AlertLevelFor(status ItemStatus) AlertLevel {
	switch status {
	case ItemStatusOutOfStock:
		return AlertLevelCritical
	case ItemStatusLowStock:
		return AlertLevelWarning
	default:
		return ""
	}
}

// alertSeverityRank orders levels for de-duplication: a new alert is only
// inserted when it escalates past the newest unresolved one.
func alertSeverityRank(level AlertLevel) int {
	switch level {
	case AlertLevelCritical:
		return 3
	case AlertLevelWarning:
		return 2
	case AlertLevelNormal:
		return 1
	default:
		return 0
	}
}

func AlertEscalates(existing, candidate AlertLevel) bool {
	return alertSeverityRank(candidate) > alertSeverityRank(existing)
}

type InventoryTransaction struct {
	ID              string          `db:"id" json:"id"`
	ItemID          string          `db:"item_id" json:"item_id"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	QuantityChange  float64         `db:"quantity_change" json:"quantity_change"`
	QuantityBefore  float64         `db:"quantity_before" json:"quantity_before"`
	QuantityAfter   float64         `db:"quantity_after" json:"quantity_after"`
	UnitPrice       float64         `db:"unit_price" json:"unit_price"`
	Reason          string          `db:"reason" json:"reason"`
	Notes           string          `db:"notes" json:"notes"`
	ReferenceType   *string         `db:"reference_type" json:"reference_type"`
	ReferenceID     *string         `db:"reference_id" json:"reference_id"`
	PerformedBy     string          `db:"performed_by" json:"performed_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type InventoryReservation struct {
	ID            string     `db:"id" json:"id"`
	ItemID        string     `db:"item_id" json:"item_id"`
	Quantity      float64    `db:"quantity" json:"quantity"`
	ReferenceType string     `db:"reference_type" json:"reference_type"`
	ReferenceID   string     `db:"reference_id" json:"reference_id"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at"`
	CreatedBy     string     `db:"created_by" json:"created_by"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type InventoryAlert struct {
	ID         string     `db:"id" json:"id"`
	ItemID     string     `db:"item_id" json:"item_id"`
	Level      AlertLevel `db:"level" json:"level"`
	Message    string     `db:"message" json:"message"`
	IsResolved bool       `db:"is_resolved" json:"is_resolved"`
	ResolvedBy *string    `db:"resolved_by" json:"resolved_by"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
