package model

import "time"

// PushSubscription holds the information for a browser push subscription
// and the seats whose vacancy it wants to hear about.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Seats []*Seat `gorm:"many2many:subscription_seat_mapping;"`
}
