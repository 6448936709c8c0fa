package dto

import "time"

type OrderFilters struct {
	Status     string
	SupplierID string
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PageSize   int
}
