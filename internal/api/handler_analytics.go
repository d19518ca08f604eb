package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agua24-backend/internal/analytics"
	"agua24-backend/internal/checklist"
	"agua24-backend/internal/model"
	"agua24-backend/internal/mw"
)

// GetAnalytics handles GET /api/machines/:id/analytics?window=3m. Series
// cover the four chemical parameters; the earnings aggregate is owner-only;
// condo admins only see approved, visible history.
func (h *Handler) GetAnalytics(c *gin.Context) {
	sess := mw.Session(c)
	machineID := c.Param("id")

	window := analytics.WindowLatest
	if raw := c.Query("window"); raw != "" {
		w, ok := analytics.ParseWindow(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window, use latest, 1m, 3m or 6m"})
			return
		}
		window = w
	}

	reports, err := h.store.GetReportsByMachine(c.Request.Context(), machineID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	if sess.IsCondoAdmin() {
		visible := make([]model.Report, 0, len(reports))
		for _, r := range reports {
			if r.Status == model.StatusApproved && r.EffectiveVisibility() {
				visible = append(visible, r)
			}
		}
		reports = visible
	}

	// Charts plot the recurring checklists; special reports carry no
	// measurements.
	recurring := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if r.Type != model.TypeSpecial {
			recurring = append(recurring, r)
		}
	}

	windowed := analytics.FilterWindow(recurring, window, time.Now())

	resp := gin.H{
		"window": window,
		"series": gin.H{
			"ph":       analytics.Series(windowed, checklist.ItemPH),
			"tds":      analytics.Series(windowed, checklist.ItemTDS),
			"chlorine": analytics.Series(windowed, checklist.ItemChlorine),
			"hardness": analytics.Series(windowed, checklist.ItemHardness),
		},
		"compliance": analytics.ComplianceCounts(windowed),
	}
	if sess.IsOwner() {
		resp["earnings"] = analytics.Earnings(windowed)
	}
	c.JSON(http.StatusOK, resp)
}
