package model

import "time"

type WOStatus string

const (
	WOStatusDraft      WOStatus = "DRAFT"
	WOStatusPending    WOStatus = "PENDING"
	WOStatusInProgress WOStatus = "IN_PROGRESS"
	WOStatusOnHold     WOStatus = "ON_HOLD"
	WOStatusCompleted  WOStatus = "COMPLETED"
	WOStatusDelivered  WOStatus = "DELIVERED"
	WOStatusCancelled  WOStatus = "CANCELLED"
)

var woTransitions = map[WOStatus][]WOStatus{
	WOStatusDraft:      {WOStatusPending, WOStatusCancelled},
	WOStatusPending:    {WOStatusInProgress, WOStatusOnHold, WOStatusCancelled},
	WOStatusInProgress: {WOStatusOnHold, WOStatusCompleted, WOStatusPending, WOStatusCancelled},
	WOStatusOnHold:     {WOStatusInProgress, WOStatusCancelled},
	WOStatusCompleted:  {WOStatusDelivered, WOStatusInProgress, WOStatusCancelled},
	WOStatusDelivered:  {},
	WOStatusCancelled:  {},
}

func (s WOStatus) CanTransitionTo(next WOStatus) bool {
	for _, allowed := range woTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s WOStatus) IsTerminal() bool {
	return s == WOStatusDelivered || s == WOStatusCancelled
}

func (s WOStatus) Valid() bool {
	_, ok := woTransitions[s]
	return ok
}

// SuggestWOStatus derives the status a work order's completion percentage
// warrants. ON_HOLD and the terminal states are never overridden by progress.
func SuggestWOStatus(current WOStatus, completed, total float64) WOStatus {
	if current == WOStatusOnHold || current.IsTerminal() {
		return current
	}
	switch {
	case total <= 0 || completed <= 0:
		return WOStatusPending
	case completed >= total:
		return WOStatusCompleted
	default:
		return WOStatusInProgress
	}
}

type WorkOrder struct {
	ID                string     `db:"id" json:"id"`
	OrderNumber       string     `db:"order_number" json:"order_number"`
	CustomerID        string     `db:"customer_id" json:"customer_id"`
	CustomerName      string     `db:"customer_name" json:"customer_name"` // snapshot at creation, never re-synced
	ProductName       string     `db:"product_name" json:"product_name"`
	Status            WOStatus   `db:"status" json:"status"`
	Priority          int        `db:"priority" json:"priority"` // 0=normal, 1=urgent, 2=critical
	StartDate         *time.Time `db:"start_date" json:"start_date"`
	DueDate           *time.Time `db:"due_date" json:"due_date"`
	CompletedDate     *time.Time `db:"completed_date" json:"completed_date"`
	TotalQuantity     float64    `db:"total_quantity" json:"total_quantity"`
	CompletedQuantity float64    `db:"completed_quantity" json:"completed_quantity"`
	EstimatedCost     float64    `db:"estimated_cost" json:"estimated_cost"`
	Notes             string     `db:"notes" json:"notes"`
	CreatedBy         string     `db:"created_by" json:"created_by"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	Assemblies     []WorkOrderAssembly     `db:"-" json:"assemblies,omitempty"`
	Specifications []WorkOrderSpecification `db:"-" json:"specifications,omitempty"`
}

// CompletionPercent is completed/total, clamped to [0, 100].
func (wo *WorkOrder) CompletionPercent() float64 {
	if wo.TotalQuantity <= 0 {
		return 0
	}
	pct := wo.CompletedQuantity / wo.TotalQuantity * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

type WorkOrderAssembly struct {
	ID                string    `db:"id" json:"id"`
	WorkOrderID       string    `db:"work_order_id" json:"work_order_id"`
	Name              string    `db:"name" json:"name"`
	Quantity          float64   `db:"quantity" json:"quantity"`
	CompletedQuantity float64   `db:"completed_quantity" json:"completed_quantity"`
	UnitCost          float64   `db:"unit_cost" json:"unit_cost"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type WorkOrderSpecification struct {
	ID          string    `db:"id" json:"id"`
	WorkOrderID string    `db:"work_order_id" json:"work_order_id"`
	Name        string    `db:"name" json:"name"`
	Value       string    `db:"value" json:"value"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type WorkOrderStatusChange struct {
	ID             string    `db:"id" json:"id"`
	WorkOrderID    string    `db:"work_order_id" json:"work_order_id"`
	PreviousStatus WOStatus  `db:"previous_status" json:"previous_status"`
	NewStatus      WOStatus  `db:"new_status" json:"new_status"`
	ChangedBy      string    `db:"changed_by" json:"changed_by"`
	Reason         string    `db:"reason" json:"reason"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
