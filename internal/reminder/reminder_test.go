package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agua24-backend/config"
	"agua24-backend/internal/model"
	"agua24-backend/internal/store"
)

type recordingDispatcher struct {
	ids []uuid.UUID
}

func (d *recordingDispatcher) VisitReminder(id uuid.UUID) { d.ids = append(d.ids, id) }

func newTestService(t *testing.T, name string, leadDays int) (*Service, store.Store, *recordingDispatcher) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(&model.Visit{}))

	s := store.NewGormStore(db)
	d := &recordingDispatcher{}
	svc := NewService(&config.ReminderConfig{Enabled: true, LeadDays: leadDays}, s, d)
	return svc, s, d
}

func addVisit(t *testing.T, s store.Store, date time.Time, status string) uuid.UUID {
	t.Helper()
	v := &model.Visit{
		MachineID:      "QR-001",
		TechnicianID:   uuid.New(),
		TechnicianName: "Luis",
		Date:           date,
		Type:           model.VisitWeekly,
		Status:         status,
	}
	require.NoError(t, s.CreateVisit(context.Background(), v))
	return v.ID
}

func TestSweepOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	t.Run("dispatches only visits inside the lead window", func(t *testing.T) {
		svc, s, d := newTestService(t, "sweep_window", 2)
		inToday := addVisit(t, s, day(0), model.VisitStatusPending)
		inWindow := addVisit(t, s, day(2), model.VisitStatusPending)
		addVisit(t, s, day(5), model.VisitStatusPending)  // beyond the horizon
		addVisit(t, s, day(-1), model.VisitStatusPending) // already past

		svc.SweepOnce(ctx, now)
		assert.ElementsMatch(t, []uuid.UUID{inToday, inWindow}, d.ids)
	})

	t.Run("non-pending visits are ignored", func(t *testing.T) {
		svc, s, d := newTestService(t, "sweep_status", 2)
		addVisit(t, s, day(1), "done")

		svc.SweepOnce(ctx, now)
		assert.Empty(t, d.ids)
	})

	t.Run("a visit is reminded once per process", func(t *testing.T) {
		svc, s, d := newTestService(t, "sweep_dedupe", 2)
		id := addVisit(t, s, day(1), model.VisitStatusPending)

		svc.SweepOnce(ctx, now)
		svc.SweepOnce(ctx, now.Add(time.Hour))
		assert.Equal(t, []uuid.UUID{id}, d.ids)
	})
}

func TestRunDisabled(t *testing.T) {
	svc, _, d := newTestService(t, "sweep_disabled", 2)
	svc.cfg.Enabled = false

	done := make(chan struct{})
	go func() {
		svc.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled reminder service should return immediately")
	}
	assert.Empty(t, d.ids)
}
