package reconciler

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/vinylfunders/vf-presale-engine/internal/domain"
	"github.com/vinylfunders/vf-presale-engine/internal/logger"
	"github.com/vinylfunders/vf-presale-engine/internal/messaging"
	"github.com/vinylfunders/vf-presale-engine/internal/notifier"
	"github.com/vinylfunders/vf-presale-engine/internal/store/schema"
)

// captureCampaign claims an active threshold and runs the first capture
// batch for it, reporting whether the campaign settled. The conditional
// active -> processing update is the only admission gate: of any number
// of concurrent passes, exactly one gets through and the rest see
// ErrThresholdNotActive.
func (e *engine) captureCampaign(ctx context.Context, campaign *schema.Campaign) (bool, error) {
	claimed, err := e.store.TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusActive, schema.ThresholdStatusProcessing)
	if err != nil {
		return false, fmt.Errorf("failed to claim threshold for capture: %w", err)
	}
	if !claimed {
		return false, domain.ErrThresholdNotActive
	}

	logger.InfoCtx(ctx, "Threshold reached, starting payment capture",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("title", campaign.Title),
	)

	return e.runCaptureBatch(ctx, campaign)
}

// batchResult accumulates per-order outcomes across the worker pool
type batchResult struct {
	mu       sync.Mutex
	captured int
	failed   int
	firstErr error
}

func (r *batchResult) recordSuccess() {
	r.mu.Lock()
	r.captured++
	r.mu.Unlock()
}

func (r *batchResult) recordFailure(err error) {
	r.mu.Lock()
	r.failed++
	if r.firstErr == nil {
		r.firstErr = err
	}
	r.mu.Unlock()
}

// runCaptureBatch fans capture out over every order still awaiting it,
// records the attempt, and settles the campaign if the batch is clean or
// the retry budget has run out, reporting whether it settled. The
// campaign must already be in processing state.
func (e *engine) runCaptureBatch(ctx context.Context, campaign *schema.Campaign) (bool, error) {
	orders, err := e.store.ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing)
	if err != nil {
		return false, fmt.Errorf("failed to list capturable orders: %w", err)
	}

	result := &batchResult{}

	if len(orders) > 0 {
		pool := pond.NewPool(e.config.WorkerPoolSize, pond.WithContext(ctx))
		for i := range orders {
			order := orders[i]
			pool.Submit(func() {
				if err := e.captureOrder(ctx, &order); err != nil {
					result.recordFailure(err)
					logger.WarnCtx(ctx, "Order capture failed",
						zap.String("campaign_id", campaign.ID.String()),
						zap.String("order_id", order.ID.String()),
						zap.Error(err),
					)
					return
				}
				result.recordSuccess()
			})
		}
		pool.StopAndWait()
	}

	var errDetail *string
	if result.firstErr != nil {
		detail := result.firstErr.Error()
		errDetail = &detail
	}

	attempt := &schema.CaptureAttempt{
		CampaignID:    campaign.ID,
		CapturedCount: result.captured,
		FailedCount:   result.failed,
		ErrorDetail:   errDetail,
	}
	if err := e.store.AppendCaptureAttempt(ctx, attempt); err != nil {
		return false, fmt.Errorf("failed to record capture attempt: %w", err)
	}

	logger.InfoCtx(ctx, "Capture batch completed",
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int("attempt", attempt.AttemptNumber),
		zap.Int("captured", result.captured),
		zap.Int("failed", result.failed),
	)

	if result.failed == 0 {
		return true, e.finalizeReached(ctx, campaign)
	}

	attempts, err := e.store.ListCaptureAttempts(ctx, campaign.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list capture attempts: %w", err)
	}
	if len(attempts) > 0 && e.config.Policy.Exhausted(len(attempts), attempts[0].CreatedAt, e.clock.Now()) {
		return true, e.finalizePartial(ctx, campaign, len(attempts))
	}

	// Leave the campaign in processing; the retry pass picks it up after
	// the cooldown
	return false, nil
}

// captureOrder performs one capture against the gateway. The conditional
// pending -> processing update makes sure only one worker attempts a
// given order; an order already in processing is a crash leftover and is
// retried directly, relying on the gateway's idempotency on the intent
// reference.
func (e *engine) captureOrder(ctx context.Context, order *schema.Order) error {
	if order.PaymentStatus == schema.PaymentStatusPending {
		claimed, err := e.store.TransitionOrderPaymentStatus(ctx, order.ID,
			schema.PaymentStatusPending, schema.PaymentStatusProcessing, nil)
		if err != nil {
			return fmt.Errorf("failed to claim order for capture: %w", err)
		}
		if !claimed {
			// Another worker owns this order
			return nil
		}
	}

	captureCtx, cancel := context.WithTimeout(ctx, e.config.CaptureTimeout)
	defer cancel()

	capture, err := e.gateway.Capture(captureCtx, order.PaymentIntentRef)
	if err != nil {
		// Put the order back so the next attempt can pick it up. If this
		// update fails too, the order stays in processing and the crash
		// recovery path above handles it.
		if _, rbErr := e.store.TransitionOrderPaymentStatus(ctx, order.ID,
			schema.PaymentStatusProcessing, schema.PaymentStatusPending, nil); rbErr != nil {
			logger.ErrorCtx(ctx, rbErr, zap.String("order_id", order.ID.String()))
		}
		return fmt.Errorf("gateway capture failed for intent %s: %w", order.PaymentIntentRef, err)
	}

	done, err := e.store.TransitionOrderPaymentStatus(ctx, order.ID,
		schema.PaymentStatusProcessing, schema.PaymentStatusCaptured, &capture.TransactionID)
	if err != nil {
		return fmt.Errorf("failed to mark order captured: %w", err)
	}
	if !done {
		// The money moved but the row did not. Surface loudly; this needs
		// an operator.
		err := fmt.Errorf("%w: order %s captured at gateway (tx %s) but status update was rejected",
			domain.ErrDataInconsistency, order.ID, capture.TransactionID)
		logger.ErrorCtx(ctx, err)
		return err
	}

	return nil
}

// finalizeReached settles a fully captured campaign
func (e *engine) finalizeReached(ctx context.Context, campaign *schema.Campaign) error {
	settled, err := e.store.TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusProcessing, schema.ThresholdStatusReached)
	if err != nil {
		return fmt.Errorf("failed to settle threshold: %w", err)
	}
	if !settled {
		return domain.ErrThresholdNotActive
	}

	captured, err := e.store.ListPresaleOrders(ctx, campaign.ID, schema.PaymentStatusCaptured)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("campaign_id", campaign.ID.String()))
	}

	logger.InfoCtx(ctx, "Campaign reached its threshold, pressing can proceed",
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int("captured_orders", len(captured)),
	)

	e.notify(ctx, campaign.ArtistEmail, notifier.TemplateCaptureSuccess, map[string]string{
		"campaign_title":  campaign.Title,
		"captured_orders": strconv.Itoa(len(captured)),
	})

	e.publish(ctx, &messaging.CampaignEvent{
		EventType:      messaging.EventCampaignReached,
		CampaignID:     campaign.ID,
		CapturedOrders: len(captured),
	})

	return nil
}

// finalizePartial settles a campaign whose retry budget ran out: orders
// that never captured are abandoned and the campaign proceeds with
// whatever was collected.
func (e *engine) finalizePartial(ctx context.Context, campaign *schema.Campaign, attempts int) error {
	abandoned, err := e.store.AbandonUncapturedOrders(ctx, campaign.ID)
	if err != nil {
		return fmt.Errorf("failed to abandon uncaptured orders: %w", err)
	}

	settled, err := e.store.TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusProcessing, schema.ThresholdStatusReached)
	if err != nil {
		return fmt.Errorf("failed to settle threshold: %w", err)
	}
	if !settled {
		return domain.ErrThresholdNotActive
	}

	captured, err := e.store.ListPresaleOrders(ctx, campaign.ID, schema.PaymentStatusCaptured)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("campaign_id", campaign.ID.String()))
	}

	logger.WarnCtx(ctx, "Capture retry budget exhausted, settling campaign with partial fulfillment",
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int("attempts", attempts),
		zap.Int("captured_orders", len(captured)),
		zap.Int64("abandoned_orders", abandoned),
	)

	params := map[string]string{
		"campaign_title":   campaign.Title,
		"captured_orders":  strconv.Itoa(len(captured)),
		"abandoned_orders": strconv.FormatInt(abandoned, 10),
		"attempts":         strconv.Itoa(attempts),
	}
	e.notify(ctx, campaign.ArtistEmail, notifier.TemplateCapturePartial, params)
	if e.config.AdminEmail != "" {
		e.notify(ctx, e.config.AdminEmail, notifier.TemplateCapturePartial, params)
	}

	e.publish(ctx, &messaging.CampaignEvent{
		EventType:       messaging.EventCampaignReachedPartial,
		CampaignID:      campaign.ID,
		CapturedOrders:  len(captured),
		AbandonedOrders: int(abandoned),
	})

	return nil
}

// notify sends a notification best-effort; delivery failures never block
// the state machine
func (e *engine) notify(ctx context.Context, recipient string, template notifier.TemplateKey, params map[string]string) {
	if err := e.notifier.Send(ctx, recipient, template, params); err != nil {
		logger.WarnCtx(ctx, "Notification delivery failed",
			zap.String("recipient", recipient),
			zap.String("template", string(template)),
			zap.Error(err),
		)
	}
}

// publish emits a campaign lifecycle event best-effort
func (e *engine) publish(ctx context.Context, event *messaging.CampaignEvent) {
	if e.publisher == nil {
		return
	}
	// ULID event IDs are unique and time-sortable
	event.EventID = ulid.MustNewDefault(e.clock.Now()).String()
	event.Timestamp = e.clock.Now()
	if err := e.publisher.PublishCampaignEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Event publication failed",
			zap.String("campaign_id", event.CampaignID.String()),
			zap.String("event_type", string(event.EventType)),
			zap.Error(err),
		)
	}
}
