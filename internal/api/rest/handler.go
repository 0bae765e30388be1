package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vinylfunders/vf-presale-engine/internal/domain"
	"github.com/vinylfunders/vf-presale-engine/internal/logger"
	"github.com/vinylfunders/vf-presale-engine/internal/reconciler"
	"github.com/vinylfunders/vf-presale-engine/internal/scheduler"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetCampaignThreshold retrieves a campaign's presale threshold state
	// GET /api/v1/campaigns/:id/threshold
	GetCampaignThreshold(c *gin.Context)

	// ListCampaignAttempts retrieves a campaign's capture attempt history
	// GET /api/v1/campaigns/:id/attempts
	ListCampaignAttempts(c *gin.Context)

	// ControlReconciliation starts, stops, or triggers the reconciliation
	// scheduler (requires admin authentication)
	// POST /api/v1/reconciliation/:action
	ControlReconciliation(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	engine    reconciler.Engine
	scheduler scheduler.Scheduler
}

// NewHandler creates a new REST API handler
func NewHandler(engine reconciler.Engine, sched scheduler.Scheduler) Handler {
	return &handler{
		engine:    engine,
		scheduler: sched,
	}
}

// GetCampaignThreshold retrieves a campaign's presale threshold state
func (h *handler) GetCampaignThreshold(c *gin.Context) {
	campaignID, ok := parseCampaignID(c)
	if !ok {
		return
	}

	inspection, err := h.engine.InspectCampaign(c.Request.Context(), campaignID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCampaignNotFound):
			respondNotFound(c, "Campaign not found")
		case errors.Is(err, domain.ErrThresholdNotFound):
			respondNotFound(c, "Campaign has no presale threshold")
		default:
			respondInternalError(c, err, "Failed to inspect campaign",
				zap.String("campaign_id", campaignID.String()))
		}
		return
	}

	c.JSON(http.StatusOK, inspection)
}

// ListCampaignAttempts retrieves a campaign's capture attempt history
func (h *handler) ListCampaignAttempts(c *gin.Context) {
	campaignID, ok := parseCampaignID(c)
	if !ok {
		return
	}

	inspection, err := h.engine.InspectCampaign(c.Request.Context(), campaignID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCampaignNotFound):
			respondNotFound(c, "Campaign not found")
		case errors.Is(err, domain.ErrThresholdNotFound):
			respondNotFound(c, "Campaign has no presale threshold")
		default:
			respondInternalError(c, err, "Failed to list capture attempts",
				zap.String("campaign_id", campaignID.String()))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign_id": campaignID,
		"attempts":    inspection.Attempts,
	})
}

// ControlReconciliation starts, stops, or triggers the reconciliation scheduler
func (h *handler) ControlReconciliation(c *gin.Context) {
	action := c.Param("action")

	switch action {
	case "start":
		if h.scheduler.Running() {
			respondConflict(c, "Scheduler is already running")
			return
		}
		go func() {
			if err := h.scheduler.Start(context.Background()); err != nil {
				logger.Error(fmt.Errorf("scheduler exited: %w", err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"status": "starting"})

	case "stop":
		if err := h.scheduler.Stop(c.Request.Context()); err != nil {
			respondInternalError(c, err, "Failed to stop scheduler")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "stopped"})

	case "trigger":
		summary, err := h.scheduler.TriggerNow(c.Request.Context())
		if err != nil {
			respondInternalError(c, err, "Reconciliation pass failed")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "completed",
			"summary": summary,
		})

	default:
		respondBadRequest(c, "Unknown action", "action must be one of start, stop, trigger")
	}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"scheduler_running": h.scheduler.Running(),
	})
}

// parseCampaignID parses the :id path parameter, responding with 400 on
// failure
func parseCampaignID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	if raw == "" {
		respondBadRequest(c, "Campaign ID is required")
		return uuid.Nil, false
	}

	campaignID, err := uuid.Parse(raw)
	if err != nil {
		respondBadRequest(c, "Invalid campaign ID", err.Error())
		return uuid.Nil, false
	}

	return campaignID, true
}
