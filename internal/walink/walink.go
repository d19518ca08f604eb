// Package walink builds WhatsApp deep links and the portal links embedded in
// outbound messages. It never sends anything; the UI opens the URLs.
package walink

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"agua24-backend/internal/model"
	"agua24-backend/internal/parse"
)

// Link builds a wa.me deep link for the given phone number and message. The
// phone is normalized to digits; the message is URL-encoded.
func Link(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", parse.Phone(phone), url.QueryEscape(message))
}

// Builder renders portal deep links and the fixed message templates.
type Builder struct {
	baseURL string
}

// NewBuilder creates a link builder rooted at the portal base URL.
func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// ReviewLink points an owner at the review screen for a report.
func (b *Builder) ReviewLink(reportID uuid.UUID) string {
	return fmt.Sprintf("%s/review/%s", b.baseURL, reportID)
}

// CorrectionLink points a technician at the submission form pre-filled with
// the rejected report, so resubmission overwrites the same report.
func (b *Builder) CorrectionLink(reportID uuid.UUID, machineID string) string {
	return fmt.Sprintf("%s/checklist/%s?edit=%s", b.baseURL, url.PathEscape(machineID), reportID)
}

// ApprovalMessage is the technician confirmation sent after approval.
func (b *Builder) ApprovalMessage(r *model.Report, machineLabel string) string {
	return fmt.Sprintf(
		"✅ Agua/24: tu reporte %s de la máquina %s fue aprobado. ¡Gracias, %s!",
		r.Type, machineLabel, r.TechnicianName,
	)
}

// RejectionMessage is the technician notification sent after rejection. It
// carries the reason and the correction deep link.
func (b *Builder) RejectionMessage(r *model.Report, machineLabel, reason string) string {
	return fmt.Sprintf(
		"❌ Agua/24: tu reporte %s de la máquina %s fue rechazado.\nMotivo: %s\nCorrígelo aquí: %s",
		r.Type, machineLabel, reason, b.CorrectionLink(r.ID, r.MachineID),
	)
}

// CondoMessage notifies the condo contact that a new approved report is
// available for their machine.
func (b *Builder) CondoMessage(r *model.Report, machineLabel string) string {
	return fmt.Sprintf(
		"💧 Agua/24: hay un nuevo reporte de mantenimiento aprobado para la máquina %s (%s). Ya puedes consultarlo en el portal: %s",
		machineLabel, r.CreatedAt.Format("02/01/2006"), b.baseURL,
	)
}

// PendingReviewMessage notifies an owner that a report awaits review.
func (b *Builder) PendingReviewMessage(r *model.Report, machineLabel string) string {
	return fmt.Sprintf(
		"📋 Agua/24: %s envió un reporte %s de la máquina %s. Revísalo aquí: %s",
		r.TechnicianName, r.Type, machineLabel, b.ReviewLink(r.ID),
	)
}
