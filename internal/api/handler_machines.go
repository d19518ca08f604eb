package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agua24-backend/internal/model"
	"agua24-backend/internal/mw"
)

type machinePayload struct {
	ID               string `json:"id"`
	Location         string `json:"location" binding:"required"`
	LastMaintenance  string `json:"lastMaintenance"`
	AssignedToUserID string `json:"assignedToUserId"`
}

// ListMachines handles GET /api/machines. Condo admins only see their own
// machine.
func (h *Handler) ListMachines(c *gin.Context) {
	sess := mw.Session(c)
	if sess.IsCondoAdmin() {
		m, err := h.store.GetMachineByID(c.Request.Context(), sess.MachineID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, []model.Machine{*m})
		return
	}
	machines, err := h.store.GetMachines(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachine handles GET /api/machines/:id.
func (h *Handler) GetMachine(c *gin.Context) {
	m, err := h.store.GetMachineByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// CreateMachine handles POST /api/machines. The machine id is the QR code
// payload and cannot be changed afterwards.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req machinePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "machine id is required"})
		return
	}

	m := &model.Machine{
		ID:              req.ID,
		Location:        req.Location,
		LastMaintenance: req.LastMaintenance,
	}
	if req.AssignedToUserID != "" {
		uid, err := uuid.Parse(req.AssignedToUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned user id"})
			return
		}
		m.AssignedToUserID = &uid
	}
	if err := h.store.CreateMachine(c.Request.Context(), m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// UpdateMachine handles PUT /api/machines/:id.
func (h *Handler) UpdateMachine(c *gin.Context) {
	m, err := h.store.GetMachineByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req machinePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m.Location = req.Location
	m.LastMaintenance = req.LastMaintenance
	m.AssignedToUserID = nil
	if req.AssignedToUserID != "" {
		uid, err := uuid.Parse(req.AssignedToUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned user id"})
			return
		}
		m.AssignedToUserID = &uid
	}
	if err := h.store.SaveMachine(c.Request.Context(), m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMachine handles DELETE /api/machines/:id. Historical reports for
// the machine are kept.
func (h *Handler) DeleteMachine(c *gin.Context) {
	if err := h.store.DeleteMachine(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
