package model

import (
	"time"

	"github.com/google/uuid"
)

// Machine represents a physical water purifier unit. The ID doubles as the
// QR code payload printed on the machine and is immutable after creation.
type Machine struct {
	ID               string     `gorm:"size:64;primaryKey" json:"id"`
	Location         string     `gorm:"size:200;not null" json:"location"`
	LastMaintenance  string     `gorm:"size:200" json:"lastMaintenance,omitempty"`
	AssignedToUserID *uuid.UUID `gorm:"type:uuid" json:"assignedToUserId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
