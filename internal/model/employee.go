package model

import "time"

// EmployeeStatus is the lifecycle state of an employee. Employees are never
// deleted, only deactivated.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee represents a person who can occupy a seat.
type Employee struct {
	ID             int64          `gorm:"primaryKey" json:"id"`
	EmployeeNumber string         `gorm:"uniqueIndex;size:64;not null" json:"employeeNumber"`
	FirstName      string         `gorm:"size:128;not null" json:"firstName"`
	LastName       string         `gorm:"size:128;not null" json:"lastName"`
	Email          string         `gorm:"size:256" json:"email,omitempty"`
	BusinessGroup  string         `gorm:"size:128;index" json:"businessGroup,omitempty"`
	Department     string         `gorm:"size:128" json:"department,omitempty"`
	TransitNumber  string         `gorm:"size:64" json:"transitNumber,omitempty"`
	Status         EmployeeStatus `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
