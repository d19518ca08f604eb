package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportStatus is the review state of a submitted report.
type ReportStatus string

const (
	StatusPending  ReportStatus = "PENDING"
	StatusApproved ReportStatus = "APPROVED"
	StatusRejected ReportStatus = "REJECTED"
)

// ReportType distinguishes the recurring maintenance checklists from ad-hoc
// incident reports.
type ReportType string

const (
	TypeWeekly  ReportType = "weekly"
	TypeMonthly ReportType = "monthly"
	TypeSpecial ReportType = "special"
)

// Report is a completed (or rejected and pending correction) checklist
// submission for one machine.
type Report struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MachineID      string          `gorm:"size:64;index;not null" json:"machineId"`
	TechnicianID   uuid.UUID       `gorm:"type:uuid;index" json:"technicianId"`
	TechnicianName string          `gorm:"size:120" json:"technicianName"`
	Status         ReportStatus    `gorm:"size:20;not null" json:"status"`
	Type           ReportType      `gorm:"size:20;not null" json:"type"`
	Data           ChecklistValues `gorm:"serializer:json" json:"data"`
	AdminComment   string          `gorm:"size:500" json:"adminComment,omitempty"`
	ShowInCondo    *bool           `json:"showInCondo,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// EffectiveVisibility reports whether condo-facing views may see this
// report. Weekly and monthly reports are always visible; only special
// reports respect the ShowInCondo flag, and an absent flag means visible
// (legacy reports predate the column).
func (r *Report) EffectiveVisibility() bool {
	if r.Type != TypeSpecial {
		return true
	}
	return r.ShowInCondo == nil || *r.ShowInCondo
}

// Value returns the checklist answer for the given item id, if present.
func (r *Report) Value(itemID string) (ChecklistValue, bool) {
	for _, v := range r.Data {
		if v.ItemID == itemID {
			return v, true
		}
	}
	return ChecklistValue{}, false
}
