package dto

import "time"

type ItemFilters struct {
	Status      string
	ItemType    string
	Category    string
	SupplierID  string
	Flagged     *bool
	LowStock    bool // 0 < current <= minimum
	OutOfStock  bool // current <= 0
	ExcessStock bool // current > maximum and maximum > 0
	SearchQuery string
	ActiveOnly  bool
	Page        int
	PageSize    int
}

type TransactionFilters struct {
	ItemID          string
	TransactionType string
	StartDate       *time.Time
	EndDate         *time.Time
	Page            int
	PageSize        int
}

type ReservationFilters struct {
	ItemID        string
	ReferenceType string
	ReferenceID   string
	ActiveOnly    bool
	Page          int
	PageSize      int
}

type AlertFilters struct {
	ItemID         string
	Level          string
	UnresolvedOnly bool
	Page           int
	PageSize       int
}

type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int    `db:"count" json:"count"`
}

// InventoryMetrics aggregates active items only.
type InventoryMetrics struct {
	TotalItems       int             `json:"total_items"`
	InStock          int             `json:"in_stock"`
	LowStock         int             `json:"low_stock"`
	OutOfStock       int             `json:"out_of_stock"`
	Discontinued     int             `json:"discontinued"`
	PendingReceipt   int             `json:"pending_receipt"`
	TotalValue       float64         `json:"total_value"`
	TopCategories    []CategoryCount `json:"top_categories"`
	UnresolvedAlerts int             `json:"unresolved_alerts"`
}
