package reconciler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vinylfunders/vf-presale-engine/internal/domain"
	"github.com/vinylfunders/vf-presale-engine/internal/logger"
	"github.com/vinylfunders/vf-presale-engine/internal/messaging"
	"github.com/vinylfunders/vf-presale-engine/internal/notifier"
	"github.com/vinylfunders/vf-presale-engine/internal/store/schema"
)

// failCampaign winds a campaign down after its deadline passed short of
// the target: authorizations are released, anything that slipped through
// to capture is refunded, and everyone involved is told. The conditional
// active -> failed update makes the wind-down run once no matter how
// many passes observe the expired deadline.
func (e *engine) failCampaign(ctx context.Context, campaign *schema.Campaign) error {
	claimed, err := e.store.TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusActive, schema.ThresholdStatusFailed)
	if err != nil {
		return fmt.Errorf("failed to mark threshold failed: %w", err)
	}
	if !claimed {
		return domain.ErrThresholdNotActive
	}

	logger.InfoCtx(ctx, "Campaign deadline passed below threshold, winding down",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("title", campaign.Title),
	)

	orders, err := e.store.ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing, schema.PaymentStatusCaptured)
	if err != nil {
		return fmt.Errorf("failed to list orders for wind-down: %w", err)
	}

	var released, refunded, errored int
	for i := range orders {
		order := orders[i]
		if err := e.releaseOrder(ctx, &order, campaign); err != nil {
			errored++
			logger.ErrorCtx(ctx, err,
				zap.String("campaign_id", campaign.ID.String()),
				zap.String("order_id", order.ID.String()),
			)
			continue
		}
		if order.PaymentStatus == schema.PaymentStatusCaptured {
			refunded++
		} else {
			released++
		}
	}

	logger.InfoCtx(ctx, "Campaign wind-down completed",
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int("released", released),
		zap.Int("refunded", refunded),
		zap.Int("errored", errored),
	)

	e.notify(ctx, campaign.ArtistEmail, notifier.TemplateFailedCreator, map[string]string{
		"campaign_title": campaign.Title,
		"final_orders":   fmt.Sprintf("%d", campaign.CurrentOrders),
		"target_orders":  fmt.Sprintf("%d", campaign.TargetOrders),
	})

	e.publish(ctx, &messaging.CampaignEvent{
		EventType:  messaging.EventCampaignFailed,
		CampaignID: campaign.ID,
	})

	return nil
}

// RetryPendingReleases rescans failed campaigns for orders a wind-down
// left behind, retrying their refund or cancel. A gateway blip during
// the wind-down rolls the order back to its prior status while the
// threshold is already terminally failed, so nothing else ever looks at
// it again. The full-pass cadence is the backoff between retries.
func (e *engine) RetryPendingReleases(ctx context.Context) (*RunSummary, error) {
	thresholds, err := e.store.ListThresholdsByStatus(ctx, schema.ThresholdStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to scan failed thresholds: %w", err)
	}

	summary := &RunSummary{}

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

		orders, err := e.store.ListPresaleOrders(ctx, campaign.ID,
			schema.PaymentStatusPending, schema.PaymentStatusProcessing, schema.PaymentStatusCaptured)
		if err != nil {
			summary.Errored++
			logger.ErrorCtx(ctx, err, zap.String("campaign_id", campaign.ID.String()))
			continue
		}
		if len(orders) == 0 {
			summary.Skipped++
			continue
		}

		logger.InfoCtx(ctx, "Retrying wind-down releases for failed campaign",
			zap.String("campaign_id", campaign.ID.String()),
			zap.Int("stranded_orders", len(orders)),
		)

		var errored bool
		for i := range orders {
			order := orders[i]
			if err := e.releaseOrder(ctx, &order, campaign); err != nil {
				errored = true
				logger.ErrorCtx(ctx, err,
					zap.String("campaign_id", campaign.ID.String()),
					zap.String("order_id", order.ID.String()),
				)
				continue
			}
			summary.Released++
		}
		if errored {
			summary.Errored++
		} else {
			summary.Retried++
		}
	}

	logger.InfoCtx(ctx, "Wind-down retry pass completed",
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("released", summary.Released),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errored", summary.Errored),
	)

	return summary, nil
}

// releaseOrder undoes one order during wind-down. An order that reached
// captured state gets a refund; anything earlier gets its authorization
// cancelled. The conditional status update before the gateway call keeps
// a second wind-down worker from touching the same order.
func (e *engine) releaseOrder(ctx context.Context, order *schema.Order, campaign *schema.Campaign) error {
	from := order.PaymentStatus

	var to schema.PaymentStatus
	switch from {
	case schema.PaymentStatusCaptured:
		to = schema.PaymentStatusRefunded
	case schema.PaymentStatusPending, schema.PaymentStatusProcessing:
		to = schema.PaymentStatusCancelled
	default:
		return nil
	}

	claimed, err := e.store.TransitionOrderPaymentStatus(ctx, order.ID, from, to, nil)
	if err != nil {
		return fmt.Errorf("failed to transition order for release: %w", err)
	}
	if !claimed {
		return nil
	}

	releaseCtx, cancel := context.WithTimeout(ctx, e.config.CaptureTimeout)
	defer cancel()

	if from == schema.PaymentStatusCaptured {
		err = e.gateway.Refund(releaseCtx, order.PaymentIntentRef)
	} else {
		err = e.gateway.Cancel(releaseCtx, order.PaymentIntentRef)
	}
	if err != nil {
		// The row already moved; put it back so the wind-down retry pass
		// can find the order
		if _, rbErr := e.store.TransitionOrderPaymentStatus(ctx, order.ID, to, from, nil); rbErr != nil {
			logger.ErrorCtx(ctx, rbErr, zap.String("order_id", order.ID.String()))
		}
		return fmt.Errorf("gateway release failed for intent %s: %w", order.PaymentIntentRef, err)
	}

	e.notify(ctx, order.BuyerEmail, notifier.TemplateFailedBuyer, map[string]string{
		"campaign_title": campaign.Title,
		"refund":         order.TotalPrice.StringFixed(2),
	})

	return nil
}
