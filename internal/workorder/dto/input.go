package dto

import "time"

type AssemblyInput struct {
	Name     string
	Quantity float64
	UnitCost float64
}

type SpecificationInput struct {
	Name  string
	Value string
}

type CreateWorkOrderInput struct {
	OrderNumber    string // generated when empty
	CustomerID     string
	CustomerName   string
	ProductName    string
	Status         string // DRAFT when empty
	Priority       int
	StartDate      *time.Time
	DueDate        *time.Time
	TotalQuantity  float64
	EstimatedCost  float64
	Notes          string
	Assemblies     []AssemblyInput
	Specifications []SpecificationInput
	CreatedBy      string
}

// UpdateWorkOrderInput: nil means "leave unchanged". Assemblies and
// Specifications, when present, replace their whole sets.
type UpdateWorkOrderInput struct {
	ProductName    *string
	Priority       *int
	StartDate      *time.Time
	DueDate        *time.Time
	TotalQuantity  *float64
	EstimatedCost  *float64
	Notes          *string
	Status         *string
	StatusReason   string
	Force          bool
	Assemblies     []AssemblyInput
	Specifications []SpecificationInput
	ChangedBy      string
}

type UpdateStatusInput struct {
	WorkOrderID string
	NewStatus   string
	ChangedBy   string
	Reason      string
	Force       bool
}

type AssemblyProgress struct {
	AssemblyID        string
	CompletedQuantity float64 // absolute, clamped to the assembly quantity
}

// UpdateProgressInput reports production progress. CompletedQuantity applies
// to the order itself; assembly lines are optional.
type UpdateProgressInput struct {
	WorkOrderID       string
	CompletedQuantity *float64
	Assemblies        []AssemblyProgress
	ChangedBy         string
	Reason            string
}

type WorkOrderFilters struct {
	Status     string
	CustomerID string
	Priority   *int
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PageSize   int
}
