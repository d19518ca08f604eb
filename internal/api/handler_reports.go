package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agua24-backend/internal/export"
	"agua24-backend/internal/model"
	"agua24-backend/internal/mw"
	"agua24-backend/internal/report"
)

type submitReportRequest struct {
	MachineID   string                `json:"machineId" binding:"required"`
	Type        model.ReportType      `json:"type" binding:"required"`
	Data        model.ChecklistValues `json:"data" binding:"required"`
	ShowInCondo *bool                 `json:"showInCondo"`
}

// SubmitReport handles POST /api/reports.
func (h *Handler) SubmitReport(c *gin.Context) {
	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.reports.Submit(c.Request.Context(), mw.Session(c), report.SubmitInput{
		MachineID:   req.MachineID,
		Type:        req.Type,
		Data:        req.Data,
		ShowInCondo: req.ShowInCondo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

type resubmitReportRequest struct {
	Data model.ChecklistValues `json:"data" binding:"required"`
}

// ResubmitReport handles PUT /api/reports/:id: a correction of a rejected
// (or still pending) report, overwriting the same report id.
func (h *Handler) ResubmitReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	var req resubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.reports.Resubmit(c.Request.Context(), mw.Session(c), id, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListReports handles GET /api/reports. Owners see everything; technicians
// see their own submissions.
func (h *Handler) ListReports(c *gin.Context) {
	sess := mw.Session(c)
	if sess.IsCondoAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "use the machine history endpoint"})
		return
	}
	reports, err := h.store.GetAllReports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if sess.IsTechnician() {
		own := make([]model.Report, 0, len(reports))
		for _, r := range reports {
			if r.TechnicianID == sess.UserID {
				own = append(own, r)
			}
		}
		reports = own
	}
	c.JSON(http.StatusOK, reports)
}

// GetReport handles GET /api/reports/:id.
func (h *Handler) GetReport(c *gin.Context) {
	sess := mw.Session(c)
	if sess.IsCondoAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "use the machine history endpoint"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	r, err := h.store.GetReportByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type reviewReportRequest struct {
	Status      model.ReportStatus `json:"status" binding:"required"`
	Comment     string             `json:"comment"`
	ShowInCondo *bool              `json:"showInCondo"`
}

// ReviewReport handles POST /api/reports/:id/review, the sole status
// transition entry point. The response carries the prepared notification
// payloads so the UI can open the WhatsApp links.
func (h *Handler) ReviewReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	var req reviewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.reports.Review(c.Request.Context(), mw.Session(c), id, report.ReviewInput{
		Status:      req.Status,
		Comment:     req.Comment,
		ShowInCondo: req.ShowInCondo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":            res.Report,
		"technicianMessage": res.TechnicianMessage,
		"technicianLink":    res.TechnicianLink,
		"condoContact":      res.CondoContact,
		"condoMessage":      res.CondoMessage,
		"condoLink":         res.CondoLink,
	})
}

// DeleteReport handles DELETE /api/reports/:id. Hard delete, no undo.
func (h *Handler) DeleteReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	if err := h.reports.Delete(c.Request.Context(), mw.Session(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCondoHistory handles GET /api/machines/:id/reports: the condo-facing
// history of approved, visible reports.
func (h *Handler) GetCondoHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	reports, err := h.reports.CondoHistory(c.Request.Context(), mw.Session(c), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetReportDocument handles GET /api/reports/:id/document: the printable
// workbook of a report. Condo admins get the copy without private items and
// only for approved, visible reports of their machine.
func (h *Handler) GetReportDocument(c *gin.Context) {
	sess := mw.Session(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	r, err := h.store.GetReportByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	includePrivate := !sess.IsCondoAdmin()
	if sess.IsCondoAdmin() {
		if r.MachineID != sess.MachineID || r.Status != model.StatusApproved || !r.EffectiveVisibility() {
			c.JSON(http.StatusForbidden, gin.H{"error": "report out of scope"})
			return
		}
	}

	var machine *model.Machine
	if m, err := h.store.GetMachineByID(c.Request.Context(), r.MachineID); err == nil {
		machine = m
	}

	wb, err := export.ReportWorkbook(r, machine, includePrivate)
	if err != nil {
		respondError(c, err)
		return
	}
	buf, err := wb.WriteToBuffer()
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("reporte-%s-%s.xlsx", r.MachineID, r.CreatedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
