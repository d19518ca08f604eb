package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access role of a portal user.
type Role string

const (
	RoleTechnician Role = "TECHNICIAN"
	RoleOwner      Role = "OWNER"
	RoleCondoAdmin Role = "CONDO_ADMIN"
)

// User represents a portal account. Technicians and owners log in with an
// email address; condo admins log in with a username and are scoped to
// exactly one machine.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email             string    `gorm:"size:120;index" json:"email,omitempty"`
	Username          string    `gorm:"size:64;index" json:"username,omitempty"`
	PasswordHash      string    `gorm:"size:255;not null" json:"-"`
	Name              string    `gorm:"size:120;not null" json:"name"`
	Role              Role      `gorm:"size:20;not null" json:"role"`
	AssignedMachineID string    `gorm:"size:64;index" json:"assignedMachineId,omitempty"`
	Phone             string    `gorm:"size:24" json:"phone,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
