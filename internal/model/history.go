package model

import "time"

// HistoryAction names the kind of occupancy transition recorded.
type HistoryAction string

const (
	ActionAssigned HistoryAction = "assigned"
	ActionMoved    HistoryAction = "moved"
	ActionVacated  HistoryAction = "vacated"
)

// AssignmentHistory is an append-only log entry of an occupancy transition.
//
// An assigned or moved entry with a nil EndDate is open: the employee still
// sits there. Vacated entries mark a point in time and are never open.
type AssignmentHistory struct {
	ID           int64         `gorm:"primaryKey" json:"id"`
	EmployeeID   int64         `gorm:"not null;index" json:"employeeId"`
	SeatID       string        `gorm:"column:seat_id;size:64;not null;index" json:"seatId"`
	Action       HistoryAction `gorm:"size:16;not null" json:"action"`
	StartDate    time.Time     `gorm:"not null" json:"startDate"`
	EndDate      *time.Time    `json:"endDate"`
	PreviousSeat *string       `gorm:"size:64" json:"previousSeat,omitempty"`
	AssignedBy   string        `gorm:"size:128;not null;default:system" json:"assignedBy"`
	Reason       string        `gorm:"size:512" json:"reason,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// IsOpen reports whether the entry represents an active assignment.
func (h *AssignmentHistory) IsOpen() bool {
	return h.EndDate == nil && h.Action != ActionVacated
}
