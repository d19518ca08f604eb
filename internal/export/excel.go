// Package export renders the downloadable document of a report: the
// checklist results, reference ranges and evidence summary as a workbook.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"agua24-backend/internal/checklist"
	"agua24-backend/internal/model"
)

const sheet = "Reporte"

// ReportWorkbook builds the printable record of a report. Private checklist
// items (cash counts) are included only when includePrivate is set, so the
// same builder serves both the owner download and the condo-facing copy.
func ReportWorkbook(r *model.Report, m *model.Machine, includePrivate bool) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	location := ""
	if m != nil {
		location = m.Location
	}
	header := [][2]string{
		{"Reporte Agua/24", ""},
		{"Máquina", r.MachineID},
		{"Ubicación", location},
		{"Técnico", r.TechnicianName},
		{"Tipo", string(r.Type)},
		{"Estado", string(r.Status)},
		{"Fecha", r.CreatedAt.Format("02/01/2006 15:04")},
	}
	row := 1
	for _, h := range header {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), h[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), h[1])
		row++
	}
	if r.AdminComment != "" {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Comentario del administrador")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.AdminComment)
		row++
	}
	f.SetCellStyle(sheet, "A1", fmt.Sprintf("A%d", row-1), bold)

	row++
	cols := []string{"Sección", "Ítem", "Valor", "Unidad", "Rango de referencia", "Comentario", "Fotos"}
	for i, name := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, name)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(cols), row)
	f.SetCellStyle(sheet, first, last, bold)
	row++

	def, ok := checklist.For(r.Type)
	if !ok {
		return nil, fmt.Errorf("unknown report type %q", r.Type)
	}
	for _, item := range def.Items {
		if item.Private && !includePrivate {
			continue
		}
		v, answered := r.Value(item.ID)
		values := []any{
			item.Section,
			item.Label,
			displayValue(v.Value, answered),
			item.Unit,
			item.RefRange,
			v.Comment,
			len(v.Photos),
		}
		for i, val := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, val)
		}
		row++
	}

	f.SetColWidth(sheet, "A", "B", 28)
	f.SetColWidth(sheet, "C", "G", 18)
	return f, nil
}

func displayValue(v model.AnswerValue, answered bool) string {
	if !answered || v.IsEmpty() {
		return "—"
	}
	switch v.Kind {
	case model.AnswerBool:
		if v.Bool {
			return "Sí"
		}
		return "No"
	case model.AnswerNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}
