package model

import "time"

type POStatus string

const (
	POStatusDraft             POStatus = "DRAFT"
	POStatusPendingApproval   POStatus = "PENDING_APPROVAL"
	POStatusApproved          POStatus = "APPROVED"
	POStatusOrdered           POStatus = "ORDERED"
	POStatusPartiallyReceived POStatus = "PARTIALLY_RECEIVED"
	POStatusReceived          POStatus = "RECEIVED"
	POStatusCancelled         POStatus = "CANCELLED"
)

// poTransitions is the reachability table for purchase orders. CANCELLED is
// reachable from every non-terminal state; RECEIVED and CANCELLED are
// terminal.
var poTransitions = map[POStatus][]POStatus{
	POStatusDraft:             {POStatusPendingApproval, POStatusCancelled},
	POStatusPendingApproval:   {POStatusApproved, POStatusDraft, POStatusCancelled},
	POStatusApproved:          {POStatusOrdered, POStatusCancelled},
	POStatusOrdered:           {POStatusPartiallyReceived, POStatusReceived, POStatusCancelled},
	POStatusPartiallyReceived: {POStatusPartiallyReceived, POStatusReceived, POStatusCancelled},
	POStatusReceived:          {},
	POStatusCancelled:         {},
}

func (s POStatus) CanTransitionTo(next POStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s POStatus) IsTerminal() bool {
	return s == POStatusReceived || s == POStatusCancelled
}

func (s POStatus) Valid() bool {
	_, ok := poTransitions[s]
	return ok
}

type PurchaseOrder struct {
	ID             string     `db:"id" json:"id"`
	OrderNumber    string     `db:"order_number" json:"order_number"`
	SupplierID     string     `db:"supplier_id" json:"supplier_id"`
	SupplierName   string     `db:"supplier_name" json:"supplier_name"` // snapshot at creation, never re-synced
	Status         POStatus   `db:"status" json:"status"`
	OrderDate      time.Time  `db:"order_date" json:"order_date"`
	ExpectedDate   *time.Time `db:"expected_date" json:"expected_date"`
	ReceivedDate   *time.Time `db:"received_date" json:"received_date"`
	Subtotal       float64    `db:"subtotal" json:"subtotal"`
	TaxRate        float64    `db:"tax_rate" json:"tax_rate"`
	TaxAmount      float64    `db:"tax_amount" json:"tax_amount"`
	DiscountRate   float64    `db:"discount_rate" json:"discount_rate"`
	DiscountAmount float64    `db:"discount_amount" json:"discount_amount"`
	ShippingCost   float64    `db:"shipping_cost" json:"shipping_cost"`
	TotalAmount    float64    `db:"total_amount" json:"total_amount"`
	PaymentTerms   string     `db:"payment_terms" json:"payment_terms"`
	Notes          string     `db:"notes" json:"notes"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`

	Items []PurchaseOrderItem `db:"-" json:"items,omitempty"`
}

// RecalculateTotals derives the financial rollups from line items and rates.
// Totals are never edited independently.
func (po *PurchaseOrder) RecalculateTotals() {
	subtotal := 0.0
	for _, item := range po.Items {
		subtotal += item.TotalPrice
	}
	po.Subtotal = subtotal
	po.TaxAmount = subtotal * po.TaxRate / 100
	po.DiscountAmount = subtotal * po.DiscountRate / 100
	po.TotalAmount = subtotal + po.TaxAmount - po.DiscountAmount + po.ShippingCost
}

// DeriveReceivingStatus inspects line receipts: RECEIVED only when every line
// is fully received, PARTIALLY_RECEIVED otherwise.
func (po *PurchaseOrder) DeriveReceivingStatus() POStatus {
	allReceived := true
	for _, item := range po.Items {
		if item.ReceivedQuantity < item.Quantity {
			allReceived = false
			break
		}
	}
	if allReceived && len(po.Items) > 0 {
		return POStatusReceived
	}
	return POStatusPartiallyReceived
}

type PurchaseOrderItem struct {
	ID               string    `db:"id" json:"id"`
	PurchaseOrderID  string    `db:"purchase_order_id" json:"purchase_order_id"`
	ItemID           *string   `db:"item_id" json:"item_id"`
	SKU              string    `db:"sku" json:"sku"`
	Name             string    `db:"name" json:"name"`
	Quantity         float64   `db:"quantity" json:"quantity"`
	ReceivedQuantity float64   `db:"received_quantity" json:"received_quantity"`
	UnitPrice        float64   `db:"unit_price" json:"unit_price"`
	TotalPrice       float64   `db:"total_price" json:"total_price"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type PurchaseOrderStatusChange struct {
	ID              string    `db:"id" json:"id"`
	PurchaseOrderID string    `db:"purchase_order_id" json:"purchase_order_id"`
	PreviousStatus  POStatus  `db:"previous_status" json:"previous_status"`
	NewStatus       POStatus  `db:"new_status" json:"new_status"`
	ChangedBy       string    `db:"changed_by" json:"changed_by"`
	Reason          string    `db:"reason" json:"reason"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
