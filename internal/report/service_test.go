package report

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agua24-backend/internal/auth"
	"agua24-backend/internal/checklist"
	"agua24-backend/internal/model"
	"agua24-backend/internal/store"
	"agua24-backend/internal/walink"
)

type approvedRecorder struct {
	ids []uuid.UUID
}

func (r *approvedRecorder) ReportApproved(id uuid.UUID) { r.ids = append(r.ids, id) }

func newTestService(t *testing.T, name string) (*Service, store.Store, *approvedRecorder) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Machine{}, &model.Report{}))

	s := store.NewGormStore(db)
	require.NoError(t, s.CreateMachine(context.Background(), &model.Machine{ID: "QR-001", Location: "Torre Norte"}))

	rec := &approvedRecorder{}
	svc := NewService(s, walink.NewBuilder("https://agua24.app"), rec)
	return svc, s, rec
}

func techSession() *auth.Session {
	return &auth.Session{UserID: uuid.New(), Name: "Luis", Role: model.RoleTechnician, Phone: "5215512345678"}
}

func ownerSession() *auth.Session {
	return &auth.Session{UserID: uuid.New(), Name: "Dueño", Role: model.RoleOwner}
}

func weeklyData() model.ChecklistValues {
	return model.ChecklistValues{
		{ItemID: checklist.ItemPH, Value: model.NumberAnswer(7.2)},
		{ItemID: checklist.ItemTDS, Value: model.NumberAnswer(180)},
		{ItemID: checklist.ItemChlorine, Value: model.NumberAnswer(0.2)},
		{ItemID: checklist.ItemHardness, Value: model.NumberAnswer(90)},
		{ItemID: "dispenser_clean", Value: model.BoolAnswer(true)},
		{ItemID: "area_clean", Value: model.BoolAnswer(true)},
		{ItemID: "leaks_checked", Value: model.BoolAnswer(true)},
	}
}

func specialData() model.ChecklistValues {
	return model.ChecklistValues{
		{ItemID: checklist.ItemDescription, Value: model.TextAnswer("Fuga en la válvula")},
		{ItemID: "resolved", Value: model.BoolAnswer(true)},
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending report", func(t *testing.T) {
		svc, _, _ := newTestService(t, "submit_ok")
		sess := techSession()
		r, err := svc.Submit(ctx, sess, SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, r.Status)
		assert.Equal(t, sess.UserID, r.TechnicianID)
		assert.Equal(t, "Luis", r.TechnicianName)
		assert.Nil(t, r.ShowInCondo, "weekly reports carry no visibility flag")
	})

	t.Run("only technicians submit", func(t *testing.T) {
		svc, _, _ := newTestService(t, "submit_role")
		_, err := svc.Submit(ctx, ownerSession(), SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		assert.ErrorIs(t, err, ErrPermission)
	})

	t.Run("unknown machine is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t, "submit_machine")
		_, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-999", Type: model.TypeWeekly, Data: weeklyData()})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing required items block the write", func(t *testing.T) {
		svc, s, _ := newTestService(t, "submit_missing")
		_, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()[2:]})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.ElementsMatch(t, []string{checklist.ItemPH, checklist.ItemTDS}, ve.Missing)

		reports, err := s.GetAllReports(ctx)
		require.NoError(t, err)
		assert.Empty(t, reports, "validation failures must not persist anything")
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t, "submit_type")
		_, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-001", Type: "quarterly", Data: weeklyData()})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("special report honors the visibility flag", func(t *testing.T) {
		svc, _, _ := newTestService(t, "submit_special")
		hidden := false
		r, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-001", Type: model.TypeSpecial, Data: specialData(), ShowInCondo: &hidden})
		require.NoError(t, err)
		require.NotNil(t, r.ShowInCondo)
		assert.False(t, *r.ShowInCondo)
		assert.False(t, r.EffectiveVisibility())
	})

	t.Run("weekly report discards a stray visibility flag", func(t *testing.T) {
		svc, _, _ := newTestService(t, "submit_stray_flag")
		hidden := false
		r, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData(), ShowInCondo: &hidden})
		require.NoError(t, err)
		assert.Nil(t, r.ShowInCondo)
		assert.True(t, r.EffectiveVisibility())
	})
}

func TestReview(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, svc *Service, sess *auth.Session) *model.Report {
		r, err := svc.Submit(ctx, sess, SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		require.NoError(t, err)
		return r
	}

	t.Run("approval forces visibility and notifies", func(t *testing.T) {
		svc, s, rec := newTestService(t, "review_approve")
		tech := techSession()
		require.NoError(t, s.CreateUser(ctx, &model.User{
			ID: tech.UserID, Email: "tech@agua24.app", Name: "Luis",
			Role: model.RoleTechnician, Phone: "5215512345678", PasswordHash: "x",
		}))
		r := submit(t, svc, tech)

		res, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusApproved})
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, res.Report.Status)
		require.NotNil(t, res.Report.ShowInCondo)
		assert.True(t, *res.Report.ShowInCondo)
		assert.Empty(t, res.Report.AdminComment)
		assert.Contains(t, res.TechnicianMessage, "aprobado")
		assert.Contains(t, res.TechnicianLink, "wa.me/5215512345678")
		assert.Equal(t, []uuid.UUID{r.ID}, rec.ids)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		svc, s, _ := newTestService(t, "review_no_reason")
		r := submit(t, svc, techSession())

		_, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusRejected, Comment: "   "})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)

		// nothing may have changed
		stored, err := s.GetReportByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, stored.Status)
		assert.Empty(t, stored.AdminComment)
	})

	t.Run("rejection stores the reason and hides the report", func(t *testing.T) {
		svc, _, rec := newTestService(t, "review_reject")
		r := submit(t, svc, techSession())

		res, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusRejected, Comment: "Falta la foto del filtro"})
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, res.Report.Status)
		assert.Equal(t, "Falta la foto del filtro", res.Report.AdminComment)
		require.NotNil(t, res.Report.ShowInCondo)
		assert.False(t, *res.Report.ShowInCondo)
		assert.Contains(t, res.TechnicianMessage, "Falta la foto del filtro")
		assert.Contains(t, res.TechnicianMessage, "/checklist/QR-001?edit="+r.ID.String())
		assert.Empty(t, rec.ids, "rejection must not push a condo notification")
	})

	t.Run("approved reports are terminal", func(t *testing.T) {
		svc, _, _ := newTestService(t, "review_terminal")
		r := submit(t, svc, techSession())
		_, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusApproved})
		require.NoError(t, err)

		_, err = svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusRejected, Comment: "cambio de opinión"})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("rejected reports can be re-reviewed", func(t *testing.T) {
		svc, _, _ := newTestService(t, "review_rereview")
		r := submit(t, svc, techSession())
		_, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusRejected, Comment: "incompleto"})
		require.NoError(t, err)

		res, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusApproved})
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, res.Report.Status)
		assert.Empty(t, res.Report.AdminComment, "approval clears the old rejection comment")
	})

	t.Run("re-approved special report stays hidden without an explicit flag", func(t *testing.T) {
		svc, _, _ := newTestService(t, "review_special_reapprove")
		visible := true
		r, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-001", Type: model.TypeSpecial, Data: specialData(), ShowInCondo: &visible})
		require.NoError(t, err)
		_, err = svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusRejected, Comment: "incompleto"})
		require.NoError(t, err)

		res, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusApproved})
		require.NoError(t, err)
		assert.False(t, res.Report.EffectiveVisibility(), "the rejection's hidden flag persists until the owner opts back in")
	})

	t.Run("re-approval with an explicit flag restores visibility", func(t *testing.T) {
		svc, _, _ := newTestService(t, "review_special_reshow")
		visible := true
		r, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-001", Type: model.TypeSpecial, Data: specialData(), ShowInCondo: &visible})
		require.NoError(t, err)
		_, err = svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusRejected, Comment: "incompleto"})
		require.NoError(t, err)

		res, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusApproved, ShowInCondo: &visible})
		require.NoError(t, err)
		assert.True(t, res.Report.EffectiveVisibility())
	})

	t.Run("owner only", func(t *testing.T) {
		svc, _, _ := newTestService(t, "review_role")
		r := submit(t, svc, techSession())
		_, err := svc.Review(ctx, techSession(), r.ID, ReviewInput{Status: model.StatusApproved})
		assert.ErrorIs(t, err, ErrPermission)
	})

	t.Run("invalid target status", func(t *testing.T) {
		svc, _, _ := newTestService(t, "review_status")
		r := submit(t, svc, techSession())
		_, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusPending})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("approving a hidden special report stays silent", func(t *testing.T) {
		svc, _, rec := newTestService(t, "review_hidden_special")
		hidden := false
		r, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-001", Type: model.TypeSpecial, Data: specialData(), ShowInCondo: &hidden})
		require.NoError(t, err)

		res, err := svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusApproved})
		require.NoError(t, err)
		assert.False(t, res.Report.EffectiveVisibility())
		assert.Nil(t, res.CondoContact)
		assert.Empty(t, res.CondoMessage)
		assert.Empty(t, rec.ids, "hidden reports never reach subscribers")
	})
}

func TestResubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected report returns to pending under the same id", func(t *testing.T) {
		svc, _, _ := newTestService(t, "resubmit_pending")
		tech := techSession()
		r, err := svc.Submit(ctx, tech, SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		require.NoError(t, err)
		_, err = svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusRejected, Comment: "pH ilegible"})
		require.NoError(t, err)

		corrected := weeklyData()
		corrected[0].Value = model.NumberAnswer(7.6)
		updated, err := svc.Resubmit(ctx, tech, r.ID, corrected)
		require.NoError(t, err)
		assert.Equal(t, r.ID, updated.ID)
		assert.Equal(t, model.StatusPending, updated.Status)
		assert.Equal(t, "pH ilegible", updated.AdminComment, "the reviewer's note survives until the next review")
		v, _ := updated.Value(checklist.ItemPH)
		assert.Equal(t, model.NumberAnswer(7.6), v.Value)
	})

	t.Run("resubmission is validated like a submission", func(t *testing.T) {
		svc, _, _ := newTestService(t, "resubmit_invalid")
		tech := techSession()
		r, err := svc.Submit(ctx, tech, SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		require.NoError(t, err)

		_, err = svc.Resubmit(ctx, tech, r.ID, weeklyData()[:3])
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("approved reports cannot be resubmitted", func(t *testing.T) {
		svc, s, _ := newTestService(t, "resubmit_approved")
		tech := techSession()
		r, err := svc.Submit(ctx, tech, SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		require.NoError(t, err)
		_, err = svc.Review(ctx, ownerSession(), r.ID, ReviewInput{Status: model.StatusApproved})
		require.NoError(t, err)

		tampered := weeklyData()
		tampered[0].Value = model.NumberAnswer(1.0)
		_, err = svc.Resubmit(ctx, tech, r.ID, tampered)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)

		stored, err := s.GetReportByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, stored.Status)
		v, _ := stored.Value(checklist.ItemPH)
		assert.Equal(t, model.NumberAnswer(7.2), v.Value, "the approved data must stay untouched")
	})

	t.Run("technician only", func(t *testing.T) {
		svc, _, _ := newTestService(t, "resubmit_role")
		_, err := svc.Resubmit(ctx, ownerSession(), uuid.New(), weeklyData())
		assert.ErrorIs(t, err, ErrPermission)
	})

	t.Run("unknown report", func(t *testing.T) {
		svc, _, _ := newTestService(t, "resubmit_missing")
		_, err := svc.Resubmit(ctx, techSession(), uuid.New(), weeklyData())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestCondoContact(t *testing.T) {
	ctx := context.Background()

	t.Run("direct assignment wins", func(t *testing.T) {
		svc, s, _ := newTestService(t, "contact_direct")
		direct := &model.User{Username: "torre-norte", Name: "Marta", Role: model.RoleCondoAdmin, AssignedMachineID: "QR-001", PasswordHash: "x"}
		require.NoError(t, s.CreateUser(ctx, direct))

		fallback := &model.User{Username: "torre-sur", Name: "Pedro", Role: model.RoleCondoAdmin, PasswordHash: "x"}
		require.NoError(t, s.CreateUser(ctx, fallback))
		m, err := s.GetMachineByID(ctx, "QR-001")
		require.NoError(t, err)
		m.AssignedToUserID = &fallback.ID
		require.NoError(t, s.SaveMachine(ctx, m))

		contact, err := svc.CondoContact(ctx, "QR-001")
		require.NoError(t, err)
		require.NotNil(t, contact)
		assert.Equal(t, direct.ID, contact.ID)
	})

	t.Run("machine assignment is the fallback", func(t *testing.T) {
		svc, s, _ := newTestService(t, "contact_fallback")
		condo := &model.User{Username: "torre-sur", Name: "Pedro", Role: model.RoleCondoAdmin, PasswordHash: "x"}
		require.NoError(t, s.CreateUser(ctx, condo))
		m, err := s.GetMachineByID(ctx, "QR-001")
		require.NoError(t, err)
		m.AssignedToUserID = &condo.ID
		require.NoError(t, s.SaveMachine(ctx, m))

		contact, err := svc.CondoContact(ctx, "QR-001")
		require.NoError(t, err)
		require.NotNil(t, contact)
		assert.Equal(t, condo.ID, contact.ID)
	})

	t.Run("non-condo assignee does not count", func(t *testing.T) {
		svc, s, _ := newTestService(t, "contact_wrong_role")
		tech := &model.User{Email: "tech@agua24.app", Name: "Luis", Role: model.RoleTechnician, PasswordHash: "x"}
		require.NoError(t, s.CreateUser(ctx, tech))
		m, err := s.GetMachineByID(ctx, "QR-001")
		require.NoError(t, err)
		m.AssignedToUserID = &tech.ID
		require.NoError(t, s.SaveMachine(ctx, m))

		contact, err := svc.CondoContact(ctx, "QR-001")
		require.NoError(t, err)
		assert.Nil(t, contact)
	})

	t.Run("no contact at all is not an error", func(t *testing.T) {
		svc, _, _ := newTestService(t, "contact_none")
		contact, err := svc.CondoContact(ctx, "QR-001")
		require.NoError(t, err)
		assert.Nil(t, contact)
	})
}

func TestCondoHistory(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc *Service) {
		tech := techSession()
		owner := ownerSession()

		approved, err := svc.Submit(ctx, tech, SubmitInput{MachineID: "QR-001", Type: model.TypeMonthly, Data: append(weeklyData()[:4],
			model.ChecklistValue{ItemID: "sediment_filter", Value: model.BoolAnswer(true)},
			model.ChecklistValue{ItemID: "carbon_filter", Value: model.BoolAnswer(true)},
			model.ChecklistValue{ItemID: "uv_lamp", Value: model.BoolAnswer(true)},
			model.ChecklistValue{ItemID: checklist.ItemCashBox, Value: model.NumberAnswer(1250)},
		)})
		require.NoError(t, err)
		_, err = svc.Review(ctx, owner, approved.ID, ReviewInput{Status: model.StatusApproved})
		require.NoError(t, err)

		_, err = svc.Submit(ctx, tech, SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		require.NoError(t, err) // stays pending

		rejected, err := svc.Submit(ctx, tech, SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		require.NoError(t, err)
		_, err = svc.Review(ctx, owner, rejected.ID, ReviewInput{Status: model.StatusRejected, Comment: "incompleto"})
		require.NoError(t, err)

		hidden := false
		special, err := svc.Submit(ctx, tech, SubmitInput{MachineID: "QR-001", Type: model.TypeSpecial, Data: specialData(), ShowInCondo: &hidden})
		require.NoError(t, err)
		_, err = svc.Review(ctx, owner, special.ID, ReviewInput{Status: model.StatusApproved})
		require.NoError(t, err)
	}

	t.Run("only approved visible reports, private items stripped", func(t *testing.T) {
		svc, _, _ := newTestService(t, "history_filter")
		seed(t, svc)
		condo := &auth.Session{UserID: uuid.New(), Role: model.RoleCondoAdmin, MachineID: "QR-001"}

		reports, err := svc.CondoHistory(ctx, condo, "QR-001", 0)
		require.NoError(t, err)
		require.Len(t, reports, 1, "pending, rejected and hidden reports stay out")
		assert.Equal(t, model.TypeMonthly, reports[0].Type)
		_, hasCash := reports[0].Value(checklist.ItemCashBox)
		assert.False(t, hasCash, "collected cash must not reach the condo")
	})

	t.Run("condo admins cannot read another machine", func(t *testing.T) {
		svc, _, _ := newTestService(t, "history_scope")
		condo := &auth.Session{UserID: uuid.New(), Role: model.RoleCondoAdmin, MachineID: "QR-002"}
		_, err := svc.CondoHistory(ctx, condo, "QR-001", 0)
		assert.ErrorIs(t, err, ErrPermission)
	})

	t.Run("owners read any machine's condo view", func(t *testing.T) {
		svc, _, _ := newTestService(t, "history_owner")
		seed(t, svc)
		reports, err := svc.CondoHistory(ctx, ownerSession(), "QR-001", 0)
		require.NoError(t, err)
		assert.Len(t, reports, 1)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner hard delete", func(t *testing.T) {
		svc, s, _ := newTestService(t, "delete_ok")
		r, err := svc.Submit(ctx, techSession(), SubmitInput{MachineID: "QR-001", Type: model.TypeWeekly, Data: weeklyData()})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, ownerSession(), r.ID))
		_, err = s.GetReportByID(ctx, r.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("owner only", func(t *testing.T) {
		svc, _, _ := newTestService(t, "delete_role")
		assert.ErrorIs(t, svc.Delete(ctx, techSession(), uuid.New()), ErrPermission)
	})

	t.Run("missing report", func(t *testing.T) {
		svc, _, _ := newTestService(t, "delete_missing")
		assert.ErrorIs(t, svc.Delete(ctx, ownerSession(), uuid.New()), store.ErrNotFound)
	})
}
