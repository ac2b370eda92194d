package store

import (
	"seat-occupancy-backend/internal/model"
)

// SeatFilter narrows ListSeats. Zero values are ignored.
type SeatFilter struct {
	Building string
	Floor    *int
	Status   model.SeatStatus
}

// EmployeeFilter narrows ListEmployees. Zero values are ignored.
type EmployeeFilter struct {
	BusinessGroup string
	Department    string
	Status        model.EmployeeStatus
}

// HistoryFilter narrows ListHistory. Zero values are ignored.
type HistoryFilter struct {
	EmployeeID int64
	SeatID     string
	OpenOnly   bool
	Limit      int
}

// SeatCounts is the seat population split by status.
type SeatCounts struct {
	Total    int64
	Occupied int64
	Vacant   int64
}

// GroupCount is one row of the business-group aggregation. BusinessGroup is
// nil for seats without an occupant or whose occupant has no group.
type GroupCount struct {
	BusinessGroup *string
	TotalSeats    int64
	OccupiedSeats int64
}

// LocationCount is one row of the building/floor aggregation.
type LocationCount struct {
	Building      string
	Floor         int
	TotalSeats    int64
	OccupiedSeats int64
	VacantSeats   int64
}

// ExportRow is a seat joined with its current occupant, if any.
type ExportRow struct {
	SeatID         string
	Building       string
	Floor          int
	Status         string
	EmployeeNumber *string
	FirstName      *string
	LastName       *string
	Email          *string
	BusinessGroup  *string
	Department     *string
}
