// Package report implements the report lifecycle: submission, review
// (approve/reject), resubmission after rejection, deletion, and the
// condo-facing visibility rules.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"agua24-backend/internal/auth"
	"agua24-backend/internal/checklist"
	"agua24-backend/internal/model"
	"agua24-backend/internal/store"
	"agua24-backend/internal/walink"
)

// ErrPermission is returned when the caller's role does not allow the
// operation.
var ErrPermission = errors.New("operation not allowed for this role")

// ValidationError blocks a write before it reaches the store.
type ValidationError struct {
	Reason  string
	Missing []string // required checklist item ids, when applicable
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

// Notifier receives lifecycle events that fan out asynchronously as push
// notifications. Implementations must not block.
type Notifier interface {
	ReportApproved(reportID uuid.UUID)
}

// Service coordinates report lifecycle operations against the store.
type Service struct {
	store    store.Store
	links    *walink.Builder
	notifier Notifier // may be nil
}

// NewService creates a report service. notifier may be nil when push
// delivery is not configured.
func NewService(s store.Store, links *walink.Builder, notifier Notifier) *Service {
	return &Service{store: s, links: links, notifier: notifier}
}

// SubmitInput is a new checklist submission.
type SubmitInput struct {
	MachineID   string
	Type        model.ReportType
	Data        model.ChecklistValues
	ShowInCondo *bool // honored for special reports only
}

// Submit validates and stores a new report with status PENDING.
func (s *Service) Submit(ctx context.Context, sess *auth.Session, in SubmitInput) (*model.Report, error) {
	if !sess.IsTechnician() {
		return nil, ErrPermission
	}
	def, ok := checklist.For(in.Type)
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown report type %q", in.Type)}
	}
	if _, err := s.store.GetMachineByID(ctx, in.MachineID); err != nil {
		return nil, fmt.Errorf("machine %s: %w", in.MachineID, err)
	}
	if missing := def.MissingRequired(in.Data); len(missing) > 0 {
		return nil, &ValidationError{Reason: "required checklist items are missing", Missing: missing}
	}

	showInCondo := in.ShowInCondo
	if in.Type != model.TypeSpecial {
		showInCondo = nil // the flag only exists on special reports
	}
	r := &model.Report{
		MachineID:      in.MachineID,
		TechnicianID:   sess.UserID,
		TechnicianName: sess.Name,
		Status:         model.StatusPending,
		Type:           in.Type,
		Data:           in.Data,
		ShowInCondo:    showInCondo,
	}
	if err := s.store.CreateReport(ctx, r); err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}
	return r, nil
}

// Resubmit overwrites a report's checklist data in place, keeping its id.
// A rejected report returns to PENDING so the owner sees it needs re-review;
// the rejection comment is kept for context until the next review. Approved
// reports are terminal and cannot be resubmitted.
func (s *Service) Resubmit(ctx context.Context, sess *auth.Session, id uuid.UUID, data model.ChecklistValues) (*model.Report, error) {
	if !sess.IsTechnician() {
		return nil, ErrPermission
	}
	r, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", id, err)
	}
	if r.Status == model.StatusApproved {
		return nil, &ValidationError{Reason: "report is already approved"}
	}
	def, ok := checklist.For(r.Type)
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown report type %q", r.Type)}
	}
	if missing := def.MissingRequired(data); len(missing) > 0 {
		return nil, &ValidationError{Reason: "required checklist items are missing", Missing: missing}
	}

	r.Data = data
	r.TechnicianID = sess.UserID
	r.TechnicianName = sess.Name
	if r.Status == model.StatusRejected {
		r.Status = model.StatusPending
	}
	if err := s.store.SaveReport(ctx, r); err != nil {
		return nil, fmt.Errorf("resubmit report: %w", err)
	}
	return r, nil
}

// ReviewInput is an owner's decision on a pending report.
type ReviewInput struct {
	Status      model.ReportStatus // StatusApproved or StatusRejected
	Comment     string             // required for rejection
	ShowInCondo *bool              // honored for special reports on approval
}

// ReviewResult carries the updated report plus the prepared notification
// payloads. Sending is the caller's concern; links are wa.me deep links and
// are empty when no phone number is known.
type ReviewResult struct {
	Report            *model.Report
	TechnicianMessage string
	TechnicianLink    string
	CondoContact      *model.User // nil when no contact resolves
	CondoMessage      string
	CondoLink         string
}

// Review is the sole status-transition entry point. Approval forces
// visibility for weekly/monthly reports and honors the caller's flag for
// special reports; rejection requires a non-empty reason and hides the
// report from the condo. A special report re-approved after a rejection
// stays hidden unless the owner passes ShowInCondo explicitly. Approved
// reports are terminal except for deletion.
func (s *Service) Review(ctx context.Context, sess *auth.Session, id uuid.UUID, in ReviewInput) (*ReviewResult, error) {
	if !sess.IsOwner() {
		return nil, ErrPermission
	}
	r, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", id, err)
	}
	if r.Status == model.StatusApproved {
		return nil, &ValidationError{Reason: "report is already approved"}
	}

	switch in.Status {
	case model.StatusApproved:
		r.Status = model.StatusApproved
		r.AdminComment = ""
		if r.Type == model.TypeSpecial {
			if in.ShowInCondo != nil {
				r.ShowInCondo = in.ShowInCondo
			}
		} else {
			visible := true
			r.ShowInCondo = &visible
		}
	case model.StatusRejected:
		if strings.TrimSpace(in.Comment) == "" {
			return nil, &ValidationError{Reason: "rejection requires a non-empty reason"}
		}
		hidden := false
		r.Status = model.StatusRejected
		r.AdminComment = in.Comment
		r.ShowInCondo = &hidden
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid review status %q", in.Status)}
	}

	if err := s.store.SaveReport(ctx, r); err != nil {
		return nil, fmt.Errorf("review report: %w", err)
	}

	res := &ReviewResult{Report: r}
	machineLabel := r.MachineID
	if m, err := s.store.GetMachineByID(ctx, r.MachineID); err == nil && m.Location != "" {
		machineLabel = fmt.Sprintf("%s (%s)", m.ID, m.Location)
	}

	var techPhone string
	if tech, err := s.store.GetUserByID(ctx, r.TechnicianID); err == nil {
		techPhone = tech.Phone
	}

	if r.Status == model.StatusApproved {
		res.TechnicianMessage = s.links.ApprovalMessage(r, machineLabel)
		if r.EffectiveVisibility() {
			contact, err := s.CondoContact(ctx, r.MachineID)
			if err != nil {
				return nil, err
			}
			if contact != nil {
				res.CondoContact = contact
				res.CondoMessage = s.links.CondoMessage(r, machineLabel)
				if contact.Phone != "" {
					res.CondoLink = walink.Link(contact.Phone, res.CondoMessage)
				}
			}
			if s.notifier != nil {
				s.notifier.ReportApproved(r.ID)
			}
		}
	} else {
		res.TechnicianMessage = s.links.RejectionMessage(r, machineLabel, in.Comment)
	}
	if techPhone != "" {
		res.TechnicianLink = walink.Link(techPhone, res.TechnicianMessage)
	}
	return res, nil
}

// Delete removes a report permanently. There is no soft delete or undo;
// confirmation is a UI concern.
func (s *Service) Delete(ctx context.Context, sess *auth.Session, id uuid.UUID) error {
	if !sess.IsOwner() {
		return ErrPermission
	}
	if err := s.store.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	return nil
}

// CondoContact resolves the condo admin to notify for a machine. The direct
// assignment (a CONDO_ADMIN whose assigned machine matches) is checked
// first; the machine's own assigned user is the fallback and only counts if
// that user is also a CONDO_ADMIN. First match wins; both links existing and
// disagreeing resolves to the direct assignment on purpose. No match is not
// an error: the result is simply nil.
func (s *Service) CondoContact(ctx context.Context, machineID string) (*model.User, error) {
	users, err := s.store.GetUsersByAssignedMachine(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("resolve condo contact: %w", err)
	}
	for i := range users {
		if users[i].Role == model.RoleCondoAdmin {
			return &users[i], nil
		}
	}

	m, err := s.store.GetMachineByID(ctx, machineID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve condo contact: %w", err)
	}
	if m.AssignedToUserID == nil {
		return nil, nil
	}
	u, err := s.store.GetUserByID(ctx, *m.AssignedToUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve condo contact: %w", err)
	}
	if u.Role != model.RoleCondoAdmin {
		return nil, nil
	}
	return u, nil
}

// CondoHistory returns the reports a condo resident may see for a machine:
// approved reports whose effective visibility is true, newest first, with
// private checklist items stripped. Condo admins are restricted to their own
// machine.
func (s *Service) CondoHistory(ctx context.Context, sess *auth.Session, machineID string, limit int) ([]model.Report, error) {
	if sess.IsCondoAdmin() && sess.MachineID != machineID {
		return nil, ErrPermission
	}
	reports, err := s.store.GetReportsByMachine(ctx, machineID, 0)
	if err != nil {
		return nil, fmt.Errorf("condo history for %s: %w", machineID, err)
	}
	out := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if r.Status != model.StatusApproved || !r.EffectiveVisibility() {
			continue
		}
		r.Data = stripPrivate(r.Type, r.Data)
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func stripPrivate(t model.ReportType, values model.ChecklistValues) model.ChecklistValues {
	def, ok := checklist.For(t)
	if !ok {
		return values
	}
	out := make(model.ChecklistValues, 0, len(values))
	for _, v := range values {
		if it, ok := def.Item(v.ItemID); ok && it.Private {
			continue
		}
		out = append(out, v)
	}
	return out
}
