package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agua24-backend/internal/checklist"
	"agua24-backend/internal/model"
)

func monthlyReport() *model.Report {
	return &model.Report{
		MachineID:      "QR-001",
		TechnicianName: "Luis",
		Status:         model.StatusApproved,
		Type:           model.TypeMonthly,
		CreatedAt:      time.Date(2026, 8, 3, 10, 30, 0, 0, time.UTC),
		Data: model.ChecklistValues{
			{ItemID: checklist.ItemPH, Value: model.NumberAnswer(7.2)},
			{ItemID: checklist.ItemTDS, Value: model.NumberAnswer(180), Comment: "estable"},
			{ItemID: "uv_lamp", Value: model.BoolAnswer(true), Photos: []string{"p1", "p2"}},
			{ItemID: checklist.ItemCashBox, Value: model.NumberAnswer(1250)},
		},
	}
}

func sheetText(t *testing.T, r *model.Report, m *model.Machine, includePrivate bool) string {
	t.Helper()
	f, err := ReportWorkbook(r, m, includePrivate)
	require.NoError(t, err)
	rows, err := f.GetRows("Reporte")
	require.NoError(t, err)
	var all string
	for _, row := range rows {
		for _, cell := range row {
			all += cell + "\n"
		}
	}
	return all
}

func TestReportWorkbook(t *testing.T) {
	m := &model.Machine{ID: "QR-001", Location: "Torre Norte"}

	t.Run("owner copy carries the full checklist", func(t *testing.T) {
		text := sheetText(t, monthlyReport(), m, true)
		assert.Contains(t, text, "QR-001")
		assert.Contains(t, text, "Torre Norte")
		assert.Contains(t, text, "Luis")
		assert.Contains(t, text, "Nivel de pH")
		assert.Contains(t, text, "7.2")
		assert.Contains(t, text, "estable")
		assert.Contains(t, text, "Efectivo recolectado")
		assert.Contains(t, text, "1250")
		assert.Contains(t, text, "Sí")
	})

	t.Run("condo copy hides private items", func(t *testing.T) {
		text := sheetText(t, monthlyReport(), m, false)
		assert.NotContains(t, text, "Efectivo recolectado")
		assert.NotContains(t, text, "1250")
		assert.Contains(t, text, "Nivel de pH")
	})

	t.Run("rejection comment is rendered", func(t *testing.T) {
		r := monthlyReport()
		r.Status = model.StatusRejected
		r.AdminComment = "Falta la foto del filtro"
		text := sheetText(t, r, m, true)
		assert.Contains(t, text, "Falta la foto del filtro")
	})

	t.Run("nil machine is tolerated", func(t *testing.T) {
		text := sheetText(t, monthlyReport(), nil, true)
		assert.Contains(t, text, "QR-001")
	})

	t.Run("unknown type errors", func(t *testing.T) {
		r := monthlyReport()
		r.Type = "quarterly"
		_, err := ReportWorkbook(r, m, true)
		assert.Error(t, err)
	})

	t.Run("unanswered items render a placeholder", func(t *testing.T) {
		r := monthlyReport()
		r.Data = r.Data[:1]
		text := sheetText(t, r, m, true)
		assert.Contains(t, text, "—")
	})
}
