package model

import "time"

// SeatStatus is the occupancy state of a seat.
type SeatStatus string

const (
	SeatVacant   SeatStatus = "vacant"
	SeatOccupied SeatStatus = "occupied"
)

// Seat represents a physical workspace location.
//
// OccupantID is a weak reference to an Employee: the seat never owns the
// employee record. The unique index keeps any employee on at most one seat.
type Seat struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	SeatID     string     `gorm:"column:seat_id;uniqueIndex;size:64;not null" json:"seatId"`
	Building   string     `gorm:"size:128;index:idx_seat_location,priority:1" json:"building"`
	Floor      int        `gorm:"index:idx_seat_location,priority:2" json:"floor"`
	Status     SeatStatus `gorm:"size:16;not null;default:vacant;index" json:"status"`
	OccupantID *int64     `gorm:"uniqueIndex" json:"occupantId"`
	UpdatedBy  string     `gorm:"size:128;not null;default:system" json:"updatedBy"`
	Version    int64      `gorm:"not null;default:0" json:"version"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Occupy points the seat at the employee and marks it occupied.
func (s *Seat) Occupy(employeeID int64) {
	id := employeeID
	s.OccupantID = &id
	s.Status = SeatOccupied
}

// Clear removes the occupant and marks the seat vacant.
func (s *Seat) Clear() {
	s.OccupantID = nil
	s.Status = SeatVacant
}

// IsOccupied reports whether the seat currently has an occupant.
func (s *Seat) IsOccupied() bool {
	return s.Status == SeatOccupied
}

// OccupiedBy reports whether the given employee is the current occupant.
func (s *Seat) OccupiedBy(employeeID int64) bool {
	return s.OccupantID != nil && *s.OccupantID == employeeID
}
