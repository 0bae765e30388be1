package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vinylfunders/vf-presale-engine/internal/adapter"
	"github.com/vinylfunders/vf-presale-engine/internal/domain"
	"github.com/vinylfunders/vf-presale-engine/internal/gateway"
	"github.com/vinylfunders/vf-presale-engine/internal/logger"
	"github.com/vinylfunders/vf-presale-engine/internal/messaging"
	"github.com/vinylfunders/vf-presale-engine/internal/notifier"
	"github.com/vinylfunders/vf-presale-engine/internal/store"
	"github.com/vinylfunders/vf-presale-engine/internal/store/schema"
)

// Config holds reconciliation engine configuration
type Config struct {
	// WorkerPoolSize bounds concurrent per-order gateway calls
	WorkerPoolSize int
	// CaptureTimeout bounds each individual gateway call
	CaptureTimeout time.Duration
	// Policy bounds the capture retry loop
	Policy domain.RetryPolicy
	// AdminEmail receives partial-fulfillment notifications
	AdminEmail string
}

// RunSummary reports what one reconciliation pass did. Captured counts
// campaigns that settled; Claimed counts campaigns whose first batch ran
// but left orders uncaptured, so they stay in processing for the retry
// pass. Released counts orders refunded or cancelled by wind-down
// retries.
type RunSummary struct {
	Evaluated int `json:"evaluated"`
	Captured  int `json:"captured"`
	Claimed   int `json:"claimed"`
	Failed    int `json:"failed"`
	Retried   int `json:"retried"`
	Released  int `json:"released"`
	Skipped   int `json:"skipped"`
	Errored   int `json:"errored"`
}

// Merge adds another summary's counts into this one
func (s *RunSummary) Merge(other *RunSummary) {
	s.Evaluated += other.Evaluated
	s.Captured += other.Captured
	s.Claimed += other.Claimed
	s.Failed += other.Failed
	s.Retried += other.Retried
	s.Released += other.Released
	s.Skipped += other.Skipped
	s.Errored += other.Errored
}

// ThresholdInspection is the admin view of one campaign's presale state
type ThresholdInspection struct {
	CampaignID      uuid.UUID                `json:"campaign_id"`
	Status          schema.ThresholdStatus   `json:"status"`
	CurrentOrders   int                      `json:"current_orders"`
	TargetOrders    int                      `json:"target_orders"`
	EndDate         time.Time                `json:"end_date"`
	CaptureEligible bool                     `json:"capture_eligible"`
	Attempts        []schema.CaptureAttempt  `json:"attempts"`
}

// Engine drives the presale threshold lifecycle: it decides per campaign
// whether the threshold was reached, failed, or is still pending, and
// performs the corresponding side effects exactly once per transition.
// Correctness under concurrent passes relies on the stored status field
// (conditional updates), never on in-process locks.
//
//go:generate mockgen -source=engine.go -destination=../mocks/engine.go -package=mocks -mock_names=Engine=MockEngine
type Engine interface {
	// EvaluateThresholds scans every active threshold and drives capture or
	// failure for those whose state is decided
	EvaluateThresholds(ctx context.Context) (*RunSummary, error)

	// EvaluateReachedThresholds is the cheap fast-pass variant: it only
	// captures thresholds whose target is already met, skipping the
	// deadline scan
	EvaluateReachedThresholds(ctx context.Context) (*RunSummary, error)

	// RetryPendingCaptures re-runs capture for campaigns stuck in
	// processing, honoring the cooldown and the retry budget
	RetryPendingCaptures(ctx context.Context) (*RunSummary, error)

	// RetryPendingReleases re-runs refund or cancel for orders a failed
	// campaign's wind-down could not release at the gateway
	RetryPendingReleases(ctx context.Context) (*RunSummary, error)

	// InspectCampaign returns the admin view of one campaign's presale state
	InspectCampaign(ctx context.Context, campaignID uuid.UUID) (*ThresholdInspection, error)
}

type engine struct {
	config    Config
	store     store.Store
	gateway   gateway.PaymentGateway
	notifier  notifier.Notifier
	publisher messaging.Publisher
	clock     adapter.Clock
}

// New creates a new reconciliation engine
func New(
	cfg Config,
	st store.Store,
	gw gateway.PaymentGateway,
	nt notifier.Notifier,
	pub messaging.Publisher,
	clock adapter.Clock,
) Engine {
	return &engine{
		config:    cfg,
		store:     st,
		gateway:   gw,
		notifier:  nt,
		publisher: pub,
		clock:     clock,
	}
}

// EvaluateThresholds scans every active threshold
func (e *engine) EvaluateThresholds(ctx context.Context) (*RunSummary, error) {
	return e.evaluateActive(ctx, true)
}

// EvaluateReachedThresholds only captures thresholds whose target is met
func (e *engine) EvaluateReachedThresholds(ctx context.Context) (*RunSummary, error) {
	return e.evaluateActive(ctx, false)
}

// evaluateActive walks the active thresholds. Only a store-level scan
// failure aborts the pass; anything that goes wrong with a single campaign
// is recorded and the loop continues.
func (e *engine) evaluateActive(ctx context.Context, includeDeadlines bool) (*RunSummary, error) {
	thresholds, err := e.store.ListThresholdsByStatus(ctx, schema.ThresholdStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to scan active thresholds: %w", err)
	}

	summary := &RunSummary{}
	now := e.clock.Now()

	for _, threshold := range thresholds {
		summary.Evaluated++

		outcome, err := e.evaluateOne(ctx, &threshold, now, includeDeadlines)
		if err != nil {
			summary.Errored++
			logger.ErrorCtx(ctx, err, zap.String("campaign_id", threshold.CampaignID.String()))
			continue
		}

		switch outcome {
		case outcomeCaptured:
			summary.Captured++
		case outcomeClaimed:
			summary.Claimed++
		case outcomeFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}

	logger.InfoCtx(ctx, "Threshold evaluation pass completed",
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("captured", summary.Captured),
		zap.Int("claimed", summary.Claimed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errored", summary.Errored),
	)

	return summary, nil
}

type evalOutcome int

const (
	outcomeSkipped evalOutcome = iota
	outcomeCaptured
	outcomeClaimed
	outcomeFailed
)

// evaluateOne decides one active threshold's fate
func (e *engine) evaluateOne(ctx context.Context, threshold *schema.PresaleThreshold, now time.Time, includeDeadlines bool) (evalOutcome, error) {
	campaign, err := e.store.GetCampaignByID(ctx, threshold.CampaignID)
	if err != nil {
		return outcomeSkipped, err
	}
	if campaign == nil {
		return outcomeSkipped, fmt.Errorf("%w: threshold %d references missing campaign %s",
			domain.ErrDataInconsistency, threshold.ID, threshold.CampaignID)
	}
	if campaign.Deleted {
		return outcomeSkipped, nil
	}
	if threshold.TargetOrders <= 0 || threshold.CurrentOrders < 0 {
		return outcomeSkipped, fmt.Errorf("%w: campaign %s has corrupt counts (%d/%d)",
			domain.ErrDataInconsistency, campaign.ID, threshold.CurrentOrders, threshold.TargetOrders)
	}

	switch {
	case threshold.CurrentOrders >= threshold.TargetOrders:
		settled, err := e.captureCampaign(ctx, campaign)
		if err != nil {
			if errors.Is(err, domain.ErrThresholdNotActive) {
				// A concurrent pass got here first; nothing left to do
				return outcomeSkipped, nil
			}
			return outcomeSkipped, err
		}
		if !settled {
			// First batch left orders uncaptured; the retry pass owns it
			// from here
			return outcomeClaimed, nil
		}
		return outcomeCaptured, nil

	case includeDeadlines && campaign.EndDate.Before(now):
		if err := e.failCampaign(ctx, campaign); err != nil {
			if errors.Is(err, domain.ErrThresholdNotActive) {
				return outcomeSkipped, nil
			}
			return outcomeSkipped, err
		}
		return outcomeFailed, nil

	default:
		return outcomeSkipped, nil
	}
}

// RetryPendingCaptures re-runs capture for campaigns stuck in processing
func (e *engine) RetryPendingCaptures(ctx context.Context) (*RunSummary, error) {
	thresholds, err := e.store.ListThresholdsByStatus(ctx, schema.ThresholdStatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("failed to scan processing thresholds: %w", err)
	}

	summary := &RunSummary{}
	now := e.clock.Now()

	for _, threshold := range thresholds {
		summary.Evaluated++

		campaign, err := e.store.GetCampaignByID(ctx, threshold.CampaignID)
		if err != nil {
			summary.Errored++
			logger.ErrorCtx(ctx, err, zap.String("campaign_id", threshold.CampaignID.String()))
			continue
		}
		if campaign == nil {
			summary.Errored++
			logger.ErrorCtx(ctx, fmt.Errorf("%w: threshold %d references missing campaign %s",
				domain.ErrDataInconsistency, threshold.ID, threshold.CampaignID))
			continue
		}

		attempts, err := e.store.ListCaptureAttempts(ctx, campaign.ID)
		if err != nil {
			summary.Errored++
			logger.ErrorCtx(ctx, err, zap.String("campaign_id", campaign.ID.String()))
			continue
		}

		if len(attempts) > 0 {
			last := attempts[len(attempts)-1]
			if e.config.Policy.Exhausted(len(attempts), attempts[0].CreatedAt, now) {
				if err := e.finalizePartial(ctx, campaign, len(attempts)); err != nil {
					summary.Errored++
					logger.ErrorCtx(ctx, err, zap.String("campaign_id", campaign.ID.String()))
					continue
				}
				summary.Captured++
				continue
			}
			if !e.config.Policy.CooledDown(last.CreatedAt, now) {
				summary.Skipped++
				continue
			}
		}

		settled, err := e.runCaptureBatch(ctx, campaign)
		if err != nil {
			summary.Errored++
			logger.ErrorCtx(ctx, err, zap.String("campaign_id", campaign.ID.String()))
			continue
		}
		summary.Retried++
		if settled {
			summary.Captured++
		}
	}

	logger.InfoCtx(ctx, "Capture retry pass completed",
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("retried", summary.Retried),
		zap.Int("settled", summary.Captured),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errored", summary.Errored),
	)

	return summary, nil
}

// InspectCampaign returns the admin view of one campaign's presale state
func (e *engine) InspectCampaign(ctx context.Context, campaignID uuid.UUID) (*ThresholdInspection, error) {
	campaign, err := e.store.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, domain.ErrCampaignNotFound
	}

	threshold, err := e.store.GetThresholdByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if threshold == nil {
		return nil, domain.ErrThresholdNotFound
	}

	attempts, err := e.store.ListCaptureAttempts(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	return &ThresholdInspection{
		CampaignID:    campaignID,
		Status:        threshold.Status,
		CurrentOrders: threshold.CurrentOrders,
		TargetOrders:  threshold.TargetOrders,
		EndDate:       campaign.EndDate,
		CaptureEligible: threshold.Status == schema.ThresholdStatusActive &&
			threshold.CurrentOrders >= threshold.TargetOrders,
		Attempts: attempts,
	}, nil
}
