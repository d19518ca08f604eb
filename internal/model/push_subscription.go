package model

import "time"

// PushSubscription holds a browser push subscription. Subscribers follow
// specific machines and receive a push when a visible report is approved or
// a visit reminder fires.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Machines []*Machine `gorm:"many2many:subscription_machine_mapping;"`
}
