package dto

import "time"

type LineItemInput struct {
	ItemID    *string
	SKU       string
	Name      string
	Quantity  float64
	UnitPrice float64
}

type CreateOrderInput struct {
	OrderNumber  string // generated when empty
	SupplierID   string
	SupplierName string
	Status       string // DRAFT when empty
	OrderDate    *time.Time
	ExpectedDate *time.Time
	TaxRate      float64
	DiscountRate float64
	ShippingCost float64
	PaymentTerms string
	Notes        string
	Items        []LineItemInput
	CreatedBy    string
}

// UpdateOrderInput: nil means "leave unchanged". Financial rollups are always
// recomputed, never accepted. Items, when present, replace all line items.
type UpdateOrderInput struct {
	ExpectedDate *time.Time
	TaxRate      *float64
	DiscountRate *float64
	ShippingCost *float64
	PaymentTerms *string
	Notes        *string
	Status       *string
	StatusReason string
	Force        bool // manual override skipping transition validation
	Items        []LineItemInput
	ChangedBy    string
}

type UpdateStatusInput struct {
	OrderID   string
	NewStatus string
	ChangedBy string
	Reason    string
	Force     bool
}

type LineReceipt struct {
	LineItemID       string
	ReceivedQuantity float64 // absolute, clamped to the ordered quantity
}

type ReceiveItemsInput struct {
	OrderID   string
	Receipts  []LineReceipt
	ChangedBy string
	Reason    string
}
