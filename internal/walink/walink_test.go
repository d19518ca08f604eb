package walink

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"agua24-backend/internal/model"
)

func TestLink(t *testing.T) {
	t.Run("phone is normalized to digits", func(t *testing.T) {
		link := Link("+52 (55) 1234-5678", "hola")
		assert.Equal(t, "https://wa.me/525512345678?text=hola", link)
	})

	t.Run("message is URL encoded", func(t *testing.T) {
		link := Link("5512345678", "Reporte aprobado: máquina #1")
		assert.True(t, strings.HasPrefix(link, "https://wa.me/5512345678?text="))
		assert.NotContains(t, link, " ")
		assert.NotContains(t, link, "#")
	})
}

func TestBuilderLinks(t *testing.T) {
	b := NewBuilder("https://agua24.app/")
	id := uuid.MustParse("7b5f3a9e-0c4d-4a2e-9f1b-2d3c4e5f6a7b")

	assert.Equal(t, "https://agua24.app/review/"+id.String(), b.ReviewLink(id))

	t.Run("correction link escapes the machine id", func(t *testing.T) {
		link := b.CorrectionLink(id, "TORRE A/3")
		assert.Equal(t, "https://agua24.app/checklist/TORRE%20A%2F3?edit="+id.String(), link)
	})
}

func TestMessageTemplates(t *testing.T) {
	b := NewBuilder("https://agua24.app")
	r := &model.Report{
		ID:             uuid.New(),
		MachineID:      "QR-001",
		TechnicianName: "Luis",
		Type:           model.TypeWeekly,
	}

	t.Run("approval mentions the machine and technician", func(t *testing.T) {
		msg := b.ApprovalMessage(r, "QR-001 (Torre Norte)")
		assert.Contains(t, msg, "aprobado")
		assert.Contains(t, msg, "QR-001 (Torre Norte)")
		assert.Contains(t, msg, "Luis")
	})

	t.Run("rejection carries the reason and correction link", func(t *testing.T) {
		msg := b.RejectionMessage(r, "QR-001", "Falta la foto del filtro")
		assert.Contains(t, msg, "rechazado")
		assert.Contains(t, msg, "Falta la foto del filtro")
		assert.Contains(t, msg, b.CorrectionLink(r.ID, r.MachineID))
	})

	t.Run("condo message links the portal", func(t *testing.T) {
		msg := b.CondoMessage(r, "QR-001")
		assert.Contains(t, msg, "https://agua24.app")
	})

	t.Run("pending review links the review screen", func(t *testing.T) {
		msg := b.PendingReviewMessage(r, "QR-001")
		assert.Contains(t, msg, b.ReviewLink(r.ID))
	})
}
