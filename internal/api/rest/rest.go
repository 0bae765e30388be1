package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/vinylfunders/vf-presale-engine/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Campaign inspection endpoints (public read access)
		v1.GET("/campaigns/:id/threshold", handler.GetCampaignThreshold)
		v1.GET("/campaigns/:id/attempts", handler.ListCampaignAttempts)

		// Reconciliation control (requires admin authentication)
		v1.POST("/reconciliation/:action", middleware.Auth(authCfg), handler.ControlReconciliation)
	}
}
