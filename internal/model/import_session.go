package model

import "time"

// ImportConflict records a row whose employee already occupies another seat.
type ImportConflict struct {
	Employee    string `json:"employee"`
	CurrentSeat string `json:"currentSeat"`
	NewSeat     string `json:"newSeat"`
}

// ImportFailure records a row that could not be applied.
type ImportFailure struct {
	Row   map[string]string `json:"row"`
	Error string            `json:"error"`
}

// ImportSession summarizes one reconciliation run. It is written once and
// never updated.
type ImportSession struct {
	ID               int64             `gorm:"primaryKey" json:"id"`
	SessionID        string            `gorm:"uniqueIndex;size:36;not null" json:"sessionId"`
	FileName         string            `gorm:"size:256" json:"fileName"`
	ImportDate       time.Time         `gorm:"not null;index" json:"importDate"`
	RecordsProcessed int               `gorm:"not null" json:"recordsProcessed"`
	RecordsSuccess   int               `gorm:"not null" json:"recordsSuccess"`
	RecordsFailed    int               `gorm:"not null" json:"recordsFailed"`
	RecordsSkipped   int               `gorm:"not null" json:"recordsSkipped"`
	MappingsUsed     map[string]string `gorm:"serializer:json" json:"mappingsUsed"`
	Conflicts        []ImportConflict  `gorm:"serializer:json" json:"conflicts"`
	Errors           []ImportFailure   `gorm:"serializer:json" json:"errors"`
	CreatedAt        time.Time         `json:"createdAt"`
}
