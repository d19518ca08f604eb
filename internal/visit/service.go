// Package visit implements scheduled-visit management, including the bulk
// generation of recurring weekly visits within a calendar month.
package visit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agua24-backend/internal/auth"
	"agua24-backend/internal/model"
	"agua24-backend/internal/store"
)

// ErrPermission is returned when the caller's role does not allow the
// operation; visit management is owner-only.
var ErrPermission = errors.New("operation not allowed for this role")

// ValidationError blocks a write before it reaches the store.
type ValidationError struct{ Reason string }

func (e *ValidationError) Error() string { return e.Reason }

// Service coordinates visit scheduling against the store.
type Service struct {
	store store.Store
}

// NewService creates a visit service.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// CreateInput is a single scheduled visit.
type CreateInput struct {
	MachineID      string
	TechnicianID   uuid.UUID
	TechnicianName string
	Date           time.Time
	Type           model.VisitType
}

// Create schedules one visit. There is no conflict detection here beyond
// what bulk generation does.
func (s *Service) Create(ctx context.Context, sess *auth.Session, in CreateInput) (*model.Visit, error) {
	if !sess.IsOwner() {
		return nil, ErrPermission
	}
	if in.Type != model.VisitWeekly && in.Type != model.VisitMonthly {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid visit type %q", in.Type)}
	}
	if in.Date.IsZero() {
		return nil, &ValidationError{Reason: "visit date is required"}
	}
	if _, err := s.store.GetMachineByID(ctx, in.MachineID); err != nil {
		return nil, fmt.Errorf("machine %s: %w", in.MachineID, err)
	}
	v := &model.Visit{
		MachineID:      in.MachineID,
		TechnicianID:   in.TechnicianID,
		TechnicianName: in.TechnicianName,
		Date:           model.DateOnly(in.Date),
		Type:           in.Type,
		Status:         model.VisitStatusPending,
	}
	if err := s.store.CreateVisit(ctx, v); err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}
	return v, nil
}

// Delete removes one scheduled visit.
func (s *Service) Delete(ctx context.Context, sess *auth.Session, id uuid.UUID) error {
	if !sess.IsOwner() {
		return ErrPermission
	}
	if err := s.store.DeleteVisit(ctx, id); err != nil {
		return fmt.Errorf("delete visit %s: %w", id, err)
	}
	return nil
}

// GenerateMonth creates a weekly pending visit for every date in ref's
// calendar month that falls on the given weekday, skipping dates that
// already have a visit for the machine. It returns the number of visits
// created; re-running for the same month and weekday creates none.
func (s *Service) GenerateMonth(ctx context.Context, sess *auth.Session, machineID string, weekday time.Weekday, technicianID uuid.UUID, technicianName string, ref time.Time) (int, error) {
	if !sess.IsOwner() {
		return 0, ErrPermission
	}
	if _, err := s.store.GetMachineByID(ctx, machineID); err != nil {
		return 0, fmt.Errorf("machine %s: %w", machineID, err)
	}

	year, month, _ := ref.UTC().Date()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	created := 0
	for day := 1; day <= lastDay; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if date.Weekday() != weekday {
			continue
		}
		exists, err := s.store.VisitExists(ctx, machineID, date)
		if err != nil {
			return created, fmt.Errorf("check visit on %s: %w", date.Format("2006-01-02"), err)
		}
		if exists {
			continue
		}
		v := &model.Visit{
			MachineID:      machineID,
			TechnicianID:   technicianID,
			TechnicianName: technicianName,
			Date:           date,
			Type:           model.VisitWeekly,
			Status:         model.VisitStatusPending,
		}
		if err := s.store.CreateVisit(ctx, v); err != nil {
			return created, fmt.Errorf("create visit on %s: %w", date.Format("2006-01-02"), err)
		}
		created++
	}
	return created, nil
}

// Upcoming filters visits whose date is today or later, date-only. The
// input order (ascending by date, as the store returns it) is preserved.
func Upcoming(visits []model.Visit, now time.Time) []model.Visit {
	today := model.DateOnly(now)
	var out []model.Visit
	for _, v := range visits {
		if !model.DateOnly(v.Date).Before(today) {
			out = append(out, v)
		}
	}
	return out
}

// Next returns the earliest upcoming visit, or nil if there is none.
func Next(visits []model.Visit, now time.Time) *model.Visit {
	up := Upcoming(visits, now)
	if len(up) == 0 {
		return nil
	}
	next := up[0]
	for _, v := range up[1:] {
		if v.Date.Before(next.Date) {
			next = v
		}
	}
	return &next
}
