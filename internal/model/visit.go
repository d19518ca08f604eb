package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitType mirrors the recurring report types; special reports are ad-hoc
// and never scheduled.
type VisitType string

const (
	VisitWeekly  VisitType = "weekly"
	VisitMonthly VisitType = "monthly"
)

// VisitStatusPending is the only modeled visit status; performed visits are
// recorded as Reports, not as visit transitions.
const VisitStatusPending = "pending"

// Visit is a scheduled maintenance event. Date carries calendar-date
// semantics only; the time of day is normalized to midnight UTC.
type Visit struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MachineID      string    `gorm:"size:64;index;not null" json:"machineId"`
	TechnicianID   uuid.UUID `gorm:"type:uuid;index" json:"technicianId"`
	TechnicianName string    `gorm:"size:120" json:"technicianName"`
	Date           time.Time `gorm:"not null;index" json:"date"`
	Type           VisitType `gorm:"size:20;not null" json:"type"`
	Status         string    `gorm:"size:20;not null" json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = VisitStatusPending
	}
	return nil
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
