package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agua24-backend/internal/auth"
	"agua24-backend/internal/report"
	"agua24-backend/internal/store"
	"agua24-backend/internal/visit"
	"agua24-backend/internal/walink"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store          store.Store
	reports        *report.Service
	visits         *visit.Service
	auth           *auth.Manager
	links          *walink.Builder
	vapidPublicKey string
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, reports *report.Service, visits *visit.Service, authMgr *auth.Manager, links *walink.Builder, vapidPublicKey string) *Handler {
	return &Handler{
		store:          s,
		reports:        reports,
		visits:         visits,
		auth:           authMgr,
		links:          links,
		vapidPublicKey: vapidPublicKey,
	}
}

// respondError maps service errors onto HTTP statuses. Schema mismatches
// keep their remediation text; everything else unexpected becomes a generic
// failure.
func respondError(c *gin.Context, err error) {
	var reportVal *report.ValidationError
	var visitVal *visit.ValidationError
	var schemaErr *store.SchemaError
	switch {
	case errors.Is(err, report.ErrPermission) || errors.Is(err, visit.ErrPermission):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operation not allowed for this role"})
	case errors.As(err, &reportVal):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": reportVal.Error(), "missing": reportVal.Missing})
	case errors.As(err, &visitVal):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": visitVal.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &schemaErr):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": schemaErr.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
