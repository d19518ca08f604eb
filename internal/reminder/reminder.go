// Package reminder runs the background sweep that pushes visit reminders
// shortly before a scheduled maintenance visit is due.
package reminder

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"agua24-backend/config"
	"agua24-backend/internal/model"
	"agua24-backend/internal/store"
	"agua24-backend/internal/visit"
)

// Dispatcher queues a reminder for asynchronous delivery.
type Dispatcher interface {
	VisitReminder(visitID uuid.UUID)
}

// Service periodically scans scheduled visits and dispatches reminders for
// those inside the lead window.
type Service struct {
	cfg   *config.ReminderConfig
	store store.Store
	pool  Dispatcher

	mu       sync.Mutex
	notified map[uuid.UUID]struct{}
}

// NewService creates a reminder service.
func NewService(cfg *config.ReminderConfig, st store.Store, pool Dispatcher) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		pool:     pool,
		notified: make(map[uuid.UUID]struct{}),
	}
}

// Run starts the sweep loop. It returns when ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Visit reminders are disabled. Not starting.")
		return
	}
	log.Println("Starting visit reminder service...")

	s.SweepOnce(ctx, time.Now())

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Visit reminder service shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx, time.Now())
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce dispatches a reminder for every pending visit due within the
// lead window that has not been reminded during this process lifetime.
func (s *Service) SweepOnce(ctx context.Context, now time.Time) {
	visits, err := s.store.GetVisits(ctx)
	if err != nil {
		log.Printf("reminder sweep: failed to fetch visits: %v", err)
		return
	}

	today := model.DateOnly(now)
	horizon := today.AddDate(0, 0, s.cfg.LeadDays)

	dispatched := 0
	for _, v := range visit.Upcoming(visits, now) {
		if v.Status != model.VisitStatusPending {
			continue
		}
		if model.DateOnly(v.Date).After(horizon) {
			continue
		}
		if s.alreadyNotified(v.ID) {
			continue
		}
		s.pool.VisitReminder(v.ID)
		s.markNotified(v.ID)
		dispatched++
	}
	if dispatched > 0 {
		log.Printf("reminder sweep: dispatched %d visit reminders", dispatched)
	}
}

func (s *Service) alreadyNotified(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notified[id]
	return ok
}

func (s *Service) markNotified(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified[id] = struct{}{}
}
