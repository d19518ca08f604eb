package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"agua24-backend/config"
	"agua24-backend/internal/auth"
	"agua24-backend/internal/model"
	"agua24-backend/internal/mw"
	"agua24-backend/internal/report"
	"agua24-backend/internal/store"
	"agua24-backend/internal/visit"
	"agua24-backend/internal/walink"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, reports *report.Service, visits *visit.Service, authMgr *auth.Manager, links *walink.Builder) *gin.Engine {
	r := gin.Default()

	h := NewHandler(s, reports, visits, authMgr, links, cfg.Push.PublicKey)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", h.Login)

		// Push subscription management is browser-facing and unauthenticated,
		// keyed by the subscription endpoint itself.
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)

		authed := api.Group("")
		authed.Use(mw.Auth(authMgr))
		{
			authed.GET("/machines", h.ListMachines)
			authed.GET("/machines/:id", condoScope, h.GetMachine)
			authed.GET("/machines/:id/reports", condoScope, caching, h.GetCondoHistory)
			authed.GET("/machines/:id/analytics", condoScope, h.GetAnalytics)
			authed.GET("/machines/:id/next-visit", condoScope, h.GetNextVisit)

			authed.GET("/reports", h.ListReports)
			authed.GET("/reports/:id", h.GetReport)
			authed.GET("/reports/:id/document", h.GetReportDocument)

			authed.GET("/visits", h.ListVisits)

			tech := authed.Group("")
			tech.Use(mw.RequireRole(model.RoleTechnician))
			{
				tech.POST("/reports", h.SubmitReport)
				tech.PUT("/reports/:id", h.ResubmitReport)
			}

			owner := authed.Group("")
			owner.Use(mw.RequireRole(model.RoleOwner))
			{
				owner.GET("/users", h.ListUsers)
				owner.POST("/users", h.CreateUser)
				owner.PUT("/users/:id", h.UpdateUser)
				owner.DELETE("/users/:id", h.DeleteUser)

				owner.POST("/machines", h.CreateMachine)
				owner.PUT("/machines/:id", h.UpdateMachine)
				owner.DELETE("/machines/:id", h.DeleteMachine)

				owner.POST("/reports/:id/review", h.ReviewReport)
				owner.DELETE("/reports/:id", h.DeleteReport)

				owner.POST("/visits", h.CreateVisit)
				owner.POST("/visits/generate", h.GenerateVisits)
				owner.DELETE("/visits/:id", h.DeleteVisit)
			}
		}
	}

	return r
}

// condoScope rejects condo admins reaching for a machine other than their
// own. It runs before the cache middleware so a cached body is never served
// to an out-of-scope caller.
func condoScope(c *gin.Context) {
	sess := mw.Session(c)
	if sess != nil && sess.IsCondoAdmin() && sess.MachineID != c.Param("id") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "machine out of scope"})
		return
	}
	c.Next()
}
