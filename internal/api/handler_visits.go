package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agua24-backend/internal/model"
	"agua24-backend/internal/mw"
	"agua24-backend/internal/visit"
)

// ListVisits handles GET /api/visits. Owners may filter by machine or
// technician; technicians and condo admins are forced onto their own scope.
func (h *Handler) ListVisits(c *gin.Context) {
	sess := mw.Session(c)
	ctx := c.Request.Context()

	var (
		visits []model.Visit
		err    error
	)
	switch {
	case sess.IsTechnician():
		visits, err = h.store.GetVisitsByTechnician(ctx, sess.UserID)
	case sess.IsCondoAdmin():
		visits, err = h.store.GetVisitsByMachine(ctx, sess.MachineID)
	case c.Query("machine") != "":
		visits, err = h.store.GetVisitsByMachine(ctx, c.Query("machine"))
	case c.Query("technician") != "":
		var techID uuid.UUID
		techID, err = uuid.Parse(c.Query("technician"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician id"})
			return
		}
		visits, err = h.store.GetVisitsByTechnician(ctx, techID)
	default:
		visits, err = h.store.GetVisits(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("upcoming") == "true" {
		visits = visit.Upcoming(visits, time.Now())
	}
	c.JSON(http.StatusOK, visits)
}

type createVisitRequest struct {
	MachineID    string          `json:"machineId" binding:"required"`
	TechnicianID string          `json:"technicianId" binding:"required"`
	Date         string          `json:"date" binding:"required"` // 2006-01-02
	Type         model.VisitType `json:"type" binding:"required"`
}

// CreateVisit handles POST /api/visits.
func (h *Handler) CreateVisit(c *gin.Context) {
	var req createVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	techID, err := uuid.Parse(req.TechnicianID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician id"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	tech, err := h.store.GetUserByID(c.Request.Context(), techID)
	if err != nil {
		respondError(c, err)
		return
	}

	v, err := h.visits.Create(c.Request.Context(), mw.Session(c), visit.CreateInput{
		MachineID:      req.MachineID,
		TechnicianID:   tech.ID,
		TechnicianName: tech.Name,
		Date:           date,
		Type:           req.Type,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

type generateVisitsRequest struct {
	MachineID string `json:"machineId" binding:"required"`
	// 0 = Sunday .. 6 = Saturday. A pointer so Sunday survives the
	// required-field check.
	Weekday      *int   `json:"weekday"`
	TechnicianID string `json:"technicianId" binding:"required"`
}

// GenerateVisits handles POST /api/visits/generate: bulk creation of weekly
// visits for every matching weekday of the current month.
func (h *Handler) GenerateVisits(c *gin.Context) {
	var req generateVisitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Weekday == nil || *req.Weekday < 0 || *req.Weekday > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be 0-6"})
		return
	}
	techID, err := uuid.Parse(req.TechnicianID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician id"})
		return
	}
	tech, err := h.store.GetUserByID(c.Request.Context(), techID)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.visits.GenerateMonth(c.Request.Context(), mw.Session(c),
		req.MachineID, time.Weekday(*req.Weekday), tech.ID, tech.Name, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

// DeleteVisit handles DELETE /api/visits/:id.
func (h *Handler) DeleteVisit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visit id"})
		return
	}
	if err := h.visits.Delete(c.Request.Context(), mw.Session(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetNextVisit handles GET /api/machines/:id/next-visit: the earliest
// upcoming visit for the machine, or 204 when none is scheduled.
func (h *Handler) GetNextVisit(c *gin.Context) {
	visits, err := h.store.GetVisitsByMachine(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	next := visit.Next(visits, time.Now())
	if next == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, next)
}
