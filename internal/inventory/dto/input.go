package dto

import "time"

type CreateItemInput struct {
	SKU             string
	Name            string
	Description     string
	Category        string
	ItemType        string
	Unit            string
	SupplierID      *string
	SupplierName    string
	CurrentQuantity float64
	MinimumQuantity float64
	MaximumQuantity float64
	ReorderQuantity float64
	UnitPrice       float64
	PerformedBy     string
}

// UpdateItemInput carries one pointer per updatable field; nil means "leave
// unchanged". Derived fields (available, total value) are never accepted.
type UpdateItemInput struct {
	Name            *string
	Description     *string
	Category        *string
	ItemType        *string
	Unit            *string
	Status          *string // only DISCONTINUED / PENDING_RECEIPT stick; stock statuses are derived
	SupplierID      *string
	SupplierName    *string
	CurrentQuantity *float64
	MinimumQuantity *float64
	MaximumQuantity *float64
	ReorderQuantity *float64
	UnitPrice       *float64
	IsActive        *bool
	PerformedBy     string
}

type AdjustQuantityInput struct {
	ItemID        string
	Delta         float64
	Reason        string
	Notes         string
	ReferenceType string
	ReferenceID   string
	PerformedBy   string
}

type CreateReservationInput struct {
	ItemID        string
	Quantity      float64
	ReferenceType string
	ReferenceID   string
	ExpiresAt     *time.Time
	CreatedBy     string
}
