package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agua24-backend/internal/auth"
	"agua24-backend/internal/model"
)

type userPayload struct {
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	Password          string     `json:"password"`
	Name              string     `json:"name" binding:"required"`
	Role              model.Role `json:"role" binding:"required"`
	AssignedMachineID string     `json:"assignedMachineId"`
	Phone             string     `json:"phone"`
}

// validate enforces the role/identifier invariants: condo admins log in with
// a username (no "@") and must be scoped to a machine; every other role logs
// in with an email.
func (p *userPayload) validate() error {
	switch p.Role {
	case model.RoleCondoAdmin:
		if p.Username == "" {
			return fmt.Errorf("condo admin requires a username")
		}
		if strings.Contains(p.Username, "@") {
			return fmt.Errorf("condo username must not contain \"@\"")
		}
		if p.AssignedMachineID == "" {
			return fmt.Errorf("condo admin requires an assigned machine")
		}
	case model.RoleTechnician, model.RoleOwner:
		if !strings.Contains(p.Email, "@") {
			return fmt.Errorf("role %s requires a valid email", p.Role)
		}
	default:
		return fmt.Errorf("invalid role %q", p.Role)
	}
	return nil
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.GetUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req userPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	if req.AssignedMachineID != "" {
		if _, err := h.store.GetMachineByID(c.Request.Context(), req.AssignedMachineID); err != nil {
			respondError(c, err)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	u := &model.User{
		Email:             req.Email,
		Username:          req.Username,
		PasswordHash:      hash,
		Name:              req.Name,
		Role:              req.Role,
		AssignedMachineID: req.AssignedMachineID,
		Phone:             req.Phone,
	}
	if err := h.store.CreateUser(c.Request.Context(), u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// UpdateUser handles PUT /api/users/:id.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	u, err := h.store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var req userPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u.Email = req.Email
	u.Username = req.Username
	u.Name = req.Name
	u.Role = req.Role
	u.AssignedMachineID = req.AssignedMachineID
	u.Phone = req.Phone
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		u.PasswordHash = hash
	}
	if err := h.store.SaveUser(c.Request.Context(), u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /api/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
