package reconciler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinylfunders/vf-presale-engine/internal/domain"
	"github.com/vinylfunders/vf-presale-engine/internal/gateway"
	"github.com/vinylfunders/vf-presale-engine/internal/logger"
	"github.com/vinylfunders/vf-presale-engine/internal/messaging"
	"github.com/vinylfunders/vf-presale-engine/internal/mocks"
	"github.com/vinylfunders/vf-presale-engine/internal/notifier"
	"github.com/vinylfunders/vf-presale-engine/internal/reconciler"
	"github.com/vinylfunders/vf-presale-engine/internal/store/schema"
)

// testEngineMocks contains all the mocks needed for testing the engine
type testEngineMocks struct {
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	gateway   *mocks.MockPaymentGateway
	notifier  *mocks.MockNotifier
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
	engine    reconciler.Engine
	now       time.Time
}

// setupTestEngine creates all the mocks and the engine for testing
func setupTestEngine(t *testing.T) *testEngineMocks {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)

	tm := &testEngineMocks{
		ctrl:      ctrl,
		store:     mocks.NewMockStore(ctrl),
		gateway:   mocks.NewMockPaymentGateway(ctrl),
		notifier:  mocks.NewMockNotifier(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
		now:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	tm.clock.EXPECT().Now().Return(tm.now).AnyTimes()

	tm.engine = reconciler.New(
		reconciler.Config{
			WorkerPoolSize: 2,
			CaptureTimeout: 5 * time.Second,
			Policy:         domain.DefaultRetryPolicy(),
			AdminEmail:     "ops@vinylfunders.test",
		},
		tm.store,
		tm.gateway,
		tm.notifier,
		tm.publisher,
		tm.clock,
	)

	return tm
}

// tearDownTestEngine cleans up the test mocks
func tearDownTestEngine(tm *testEngineMocks) {
	tm.ctrl.Finish()
}

// testCampaign builds a campaign fixture with a matching active threshold
func testCampaign(target, current int, endDate time.Time) (*schema.Campaign, schema.PresaleThreshold) {
	campaignID := uuid.New()
	campaign := &schema.Campaign{
		ID:            campaignID,
		ArtistID:      uuid.New(),
		Title:         "Midnight Pressing",
		ArtistEmail:   "artist@example.com",
		TargetOrders:  target,
		CurrentOrders: current,
		EndDate:       endDate,
	}
	threshold := schema.PresaleThreshold{
		ID:            1,
		CampaignID:    campaignID,
		TargetOrders:  target,
		CurrentOrders: current,
		Status:        schema.ThresholdStatusActive,
	}
	return campaign, threshold
}

func testOrder(campaignID uuid.UUID, status schema.PaymentStatus, intentRef string) schema.Order {
	return schema.Order{
		ID:               uuid.New(),
		CampaignID:       campaignID,
		BuyerEmail:       "buyer@example.com",
		Quantity:         1,
		TotalPrice:       decimal.RequireFromString("24.99"),
		Presale:          true,
		PaymentStatus:    status,
		PaymentIntentRef: intentRef,
	}
}

func TestEvaluateThresholds_FullCapture(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(2, 2, tm.now.Add(24*time.Hour))
	orders := []schema.Order{
		testOrder(campaign.ID, schema.PaymentStatusPending, "pi_001"),
		testOrder(campaign.ID, schema.PaymentStatusPending, "pi_002"),
	}

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusActive).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)

	// Claim the threshold for capture
	tm.store.EXPECT().TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusActive, schema.ThresholdStatusProcessing).Return(true, nil)

	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing).Return(orders, nil)

	// Each order is claimed, captured at the gateway, and marked captured
	for _, order := range orders {
		tm.store.EXPECT().TransitionOrderPaymentStatus(gomock.Any(), order.ID,
			schema.PaymentStatusPending, schema.PaymentStatusProcessing, nil).Return(true, nil)
		tm.gateway.EXPECT().Capture(gomock.Any(), order.PaymentIntentRef).
			Return(&gateway.CaptureResult{TransactionID: "tx_" + order.PaymentIntentRef}, nil)
		txID := "tx_" + order.PaymentIntentRef
		tm.store.EXPECT().TransitionOrderPaymentStatus(gomock.Any(), order.ID,
			schema.PaymentStatusProcessing, schema.PaymentStatusCaptured, &txID).Return(true, nil)
	}

	tm.store.EXPECT().AppendCaptureAttempt(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, attempt *schema.CaptureAttempt) error {
			assert.Equal(t, campaign.ID, attempt.CampaignID)
			assert.Equal(t, 2, attempt.CapturedCount)
			assert.Equal(t, 0, attempt.FailedCount)
			assert.Nil(t, attempt.ErrorDetail)
			attempt.AttemptNumber = 1
			return nil
		})

	// Clean batch settles the campaign
	tm.store.EXPECT().TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusProcessing, schema.ThresholdStatusReached).Return(true, nil)
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID, schema.PaymentStatusCaptured).
		Return(orders, nil)

	tm.notifier.EXPECT().Send(ctx, campaign.ArtistEmail, notifier.TemplateCaptureSuccess, gomock.Any()).
		Return(nil)
	tm.publisher.EXPECT().PublishCampaignEvent(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event *messaging.CampaignEvent) error {
			assert.Equal(t, messaging.EventCampaignReached, event.EventType)
			assert.Equal(t, campaign.ID, event.CampaignID)
			assert.Equal(t, 2, event.CapturedOrders)
			assert.NotEmpty(t, event.EventID)
			return nil
		})

	summary, err := tm.engine.EvaluateThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Evaluated)
	assert.Equal(t, 1, summary.Captured)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Errored)
}

func TestEvaluateThresholds_ConcurrentClaimLost(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(5, 5, tm.now.Add(24*time.Hour))

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusActive).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)

	// Another pass won the claim; no orders are touched and no gateway
	// calls happen
	tm.store.EXPECT().TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusActive, schema.ThresholdStatusProcessing).Return(false, nil)

	summary, err := tm.engine.EvaluateThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Evaluated)
	assert.Equal(t, 0, summary.Captured)
	assert.Equal(t, 1, summary.Skipped)
}

func TestEvaluateThresholds_DeadlineFailure(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(100, 40, tm.now.Add(-time.Hour))
	pendingOrder := testOrder(campaign.ID, schema.PaymentStatusPending, "pi_101")
	capturedOrder := testOrder(campaign.ID, schema.PaymentStatusCaptured, "pi_102")

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusActive).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)

	tm.store.EXPECT().TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusActive, schema.ThresholdStatusFailed).Return(true, nil)
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing, schema.PaymentStatusCaptured).
		Return([]schema.Order{pendingOrder, capturedOrder}, nil)

	// Pending authorization is cancelled
	tm.store.EXPECT().TransitionOrderPaymentStatus(ctx, pendingOrder.ID,
		schema.PaymentStatusPending, schema.PaymentStatusCancelled, nil).Return(true, nil)
	tm.gateway.EXPECT().Cancel(gomock.Any(), pendingOrder.PaymentIntentRef).Return(nil)

	// Captured payment is refunded
	tm.store.EXPECT().TransitionOrderPaymentStatus(ctx, capturedOrder.ID,
		schema.PaymentStatusCaptured, schema.PaymentStatusRefunded, nil).Return(true, nil)
	tm.gateway.EXPECT().Refund(gomock.Any(), capturedOrder.PaymentIntentRef).Return(nil)

	// Each buyer and the creator are told
	tm.notifier.EXPECT().Send(ctx, pendingOrder.BuyerEmail, notifier.TemplateFailedBuyer, gomock.Any()).
		Return(nil)
	tm.notifier.EXPECT().Send(ctx, capturedOrder.BuyerEmail, notifier.TemplateFailedBuyer, gomock.Any()).
		Return(nil)
	tm.notifier.EXPECT().Send(ctx, campaign.ArtistEmail, notifier.TemplateFailedCreator, gomock.Any()).
		Return(nil)

	tm.publisher.EXPECT().PublishCampaignEvent(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event *messaging.CampaignEvent) error {
			assert.Equal(t, messaging.EventCampaignFailed, event.EventType)
			return nil
		})

	summary, err := tm.engine.EvaluateThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
}

func TestFailCampaign_ReleaseErrorRollsOrderBack(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(100, 40, tm.now.Add(-time.Hour))
	capturedOrder := testOrder(campaign.ID, schema.PaymentStatusCaptured, "pi_501")

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusActive).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)
	tm.store.EXPECT().TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusActive, schema.ThresholdStatusFailed).Return(true, nil)
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing, schema.PaymentStatusCaptured).
		Return([]schema.Order{capturedOrder}, nil)

	// The refund blows up at the gateway after the row moved; the order
	// goes back to captured so the wind-down retry pass can find it
	tm.store.EXPECT().TransitionOrderPaymentStatus(ctx, capturedOrder.ID,
		schema.PaymentStatusCaptured, schema.PaymentStatusRefunded, nil).Return(true, nil)
	tm.gateway.EXPECT().Refund(gomock.Any(), capturedOrder.PaymentIntentRef).
		Return(errors.New("gateway timeout"))
	tm.store.EXPECT().TransitionOrderPaymentStatus(ctx, capturedOrder.ID,
		schema.PaymentStatusRefunded, schema.PaymentStatusCaptured, nil).Return(true, nil)

	// The buyer is not told about a refund that did not happen; the
	// creator still hears the campaign failed
	tm.notifier.EXPECT().Send(ctx, campaign.ArtistEmail, notifier.TemplateFailedCreator, gomock.Any()).
		Return(nil)
	tm.publisher.EXPECT().PublishCampaignEvent(ctx, gomock.Any()).Return(nil)

	summary, err := tm.engine.EvaluateThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
}

func TestRetryPendingReleases_RefundsStrandedOrder(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(100, 40, tm.now.Add(-48*time.Hour))
	threshold.Status = schema.ThresholdStatusFailed
	strandedOrder := testOrder(campaign.ID, schema.PaymentStatusCaptured, "pi_601")

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusFailed).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing, schema.PaymentStatusCaptured).
		Return([]schema.Order{strandedOrder}, nil)

	// The refund goes through this time
	tm.store.EXPECT().TransitionOrderPaymentStatus(ctx, strandedOrder.ID,
		schema.PaymentStatusCaptured, schema.PaymentStatusRefunded, nil).Return(true, nil)
	tm.gateway.EXPECT().Refund(gomock.Any(), strandedOrder.PaymentIntentRef).Return(nil)
	tm.notifier.EXPECT().Send(ctx, strandedOrder.BuyerEmail, notifier.TemplateFailedBuyer, gomock.Any()).
		Return(nil)

	summary, err := tm.engine.RetryPendingReleases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Evaluated)
	assert.Equal(t, 1, summary.Released)
	assert.Equal(t, 1, summary.Retried)
	assert.Equal(t, 0, summary.Errored)
}

func TestRetryPendingReleases_SettledCampaignSkips(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(100, 40, tm.now.Add(-48*time.Hour))
	threshold.Status = schema.ThresholdStatusFailed

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusFailed).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)

	// Everything was released by the original wind-down; no gateway calls
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing, schema.PaymentStatusCaptured).
		Return(nil, nil)

	summary, err := tm.engine.RetryPendingReleases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Released)
}

func TestEvaluateThresholds_PartialBatchStaysProcessing(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(2, 2, tm.now.Add(24*time.Hour))
	goodOrder := testOrder(campaign.ID, schema.PaymentStatusPending, "pi_201")
	badOrder := testOrder(campaign.ID, schema.PaymentStatusPending, "pi_202")

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusActive).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)
	tm.store.EXPECT().TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusActive, schema.ThresholdStatusProcessing).Return(true, nil)
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing).
		Return([]schema.Order{goodOrder, badOrder}, nil)

	// The good order captures
	tm.store.EXPECT().TransitionOrderPaymentStatus(gomock.Any(), goodOrder.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing, nil).Return(true, nil)
	tm.gateway.EXPECT().Capture(gomock.Any(), goodOrder.PaymentIntentRef).
		Return(&gateway.CaptureResult{TransactionID: "tx_201"}, nil)
	txID := "tx_201"
	tm.store.EXPECT().TransitionOrderPaymentStatus(gomock.Any(), goodOrder.ID,
		schema.PaymentStatusProcessing, schema.PaymentStatusCaptured, &txID).Return(true, nil)

	// The bad order is declined and rolled back to pending for retry
	tm.store.EXPECT().TransitionOrderPaymentStatus(gomock.Any(), badOrder.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing, nil).Return(true, nil)
	tm.gateway.EXPECT().Capture(gomock.Any(), badOrder.PaymentIntentRef).
		Return(nil, &gateway.Error{Code: "card_declined", Message: "card was declined"})
	tm.store.EXPECT().TransitionOrderPaymentStatus(gomock.Any(), badOrder.ID,
		schema.PaymentStatusProcessing, schema.PaymentStatusPending, nil).Return(true, nil)

	tm.store.EXPECT().AppendCaptureAttempt(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, attempt *schema.CaptureAttempt) error {
			assert.Equal(t, 1, attempt.CapturedCount)
			assert.Equal(t, 1, attempt.FailedCount)
			require.NotNil(t, attempt.ErrorDetail)
			attempt.AttemptNumber = 1
			return nil
		})

	// One fresh attempt leaves the budget intact, so the campaign stays in
	// processing for the retry pass. No settle, no notify, no event.
	tm.store.EXPECT().ListCaptureAttempts(ctx, campaign.ID).
		Return([]schema.CaptureAttempt{{
			CampaignID:    campaign.ID,
			AttemptNumber: 1,
			CapturedCount: 1,
			FailedCount:   1,
			CreatedAt:     tm.now,
		}}, nil)

	summary, err := tm.engine.EvaluateThresholds(ctx)
	require.NoError(t, err)
	// The campaign is claimed but not settled, so it must not count as
	// captured
	assert.Equal(t, 0, summary.Captured)
	assert.Equal(t, 1, summary.Claimed)
}

func TestRetryPendingCaptures_CooldownSkips(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(2, 2, tm.now.Add(24*time.Hour))
	threshold.Status = schema.ThresholdStatusProcessing

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusProcessing).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)

	// Last attempt was an hour ago, well inside the 12h cooldown
	tm.store.EXPECT().ListCaptureAttempts(ctx, campaign.ID).
		Return([]schema.CaptureAttempt{{
			CampaignID:    campaign.ID,
			AttemptNumber: 1,
			CreatedAt:     tm.now.Add(-time.Hour),
		}}, nil)

	summary, err := tm.engine.RetryPendingCaptures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Evaluated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Retried)
}

func TestRetryPendingCaptures_CooledDownRetries(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(2, 2, tm.now.Add(24*time.Hour))
	threshold.Status = schema.ThresholdStatusProcessing
	order := testOrder(campaign.ID, schema.PaymentStatusPending, "pi_301")

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusProcessing).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)
	tm.store.EXPECT().ListCaptureAttempts(ctx, campaign.ID).
		Return([]schema.CaptureAttempt{{
			CampaignID:    campaign.ID,
			AttemptNumber: 1,
			CreatedAt:     tm.now.Add(-13 * time.Hour),
		}}, nil)

	// The retry batch captures the remaining order
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing).
		Return([]schema.Order{order}, nil)
	tm.store.EXPECT().TransitionOrderPaymentStatus(gomock.Any(), order.ID,
		schema.PaymentStatusPending, schema.PaymentStatusProcessing, nil).Return(true, nil)
	tm.gateway.EXPECT().Capture(gomock.Any(), order.PaymentIntentRef).
		Return(&gateway.CaptureResult{TransactionID: "tx_301"}, nil)
	txID := "tx_301"
	tm.store.EXPECT().TransitionOrderPaymentStatus(gomock.Any(), order.ID,
		schema.PaymentStatusProcessing, schema.PaymentStatusCaptured, &txID).Return(true, nil)

	tm.store.EXPECT().AppendCaptureAttempt(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, attempt *schema.CaptureAttempt) error {
			attempt.AttemptNumber = 2
			return nil
		})

	tm.store.EXPECT().TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusProcessing, schema.ThresholdStatusReached).Return(true, nil)
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID, schema.PaymentStatusCaptured).
		Return([]schema.Order{order}, nil)
	tm.notifier.EXPECT().Send(ctx, campaign.ArtistEmail, notifier.TemplateCaptureSuccess, gomock.Any()).
		Return(nil)
	tm.publisher.EXPECT().PublishCampaignEvent(ctx, gomock.Any()).Return(nil)

	summary, err := tm.engine.RetryPendingCaptures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Retried)
	assert.Equal(t, 1, summary.Captured)
}

func TestRetryPendingCaptures_BudgetExhaustedFinalizesPartial(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(3, 3, tm.now.Add(24*time.Hour))
	threshold.Status = schema.ThresholdStatusProcessing
	captured := testOrder(campaign.ID, schema.PaymentStatusCaptured, "pi_401")

	attempts := make([]schema.CaptureAttempt, 5)
	for i := range attempts {
		attempts[i] = schema.CaptureAttempt{
			CampaignID:    campaign.ID,
			AttemptNumber: i + 1,
			CreatedAt:     tm.now.Add(-time.Duration(60-12*i) * time.Hour),
		}
	}

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusProcessing).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)
	tm.store.EXPECT().ListCaptureAttempts(ctx, campaign.ID).Return(attempts, nil)

	// Budget is exhausted: abandon the stragglers and settle
	tm.store.EXPECT().AbandonUncapturedOrders(ctx, campaign.ID).Return(int64(2), nil)
	tm.store.EXPECT().TransitionThresholdStatus(ctx, campaign.ID,
		schema.ThresholdStatusProcessing, schema.ThresholdStatusReached).Return(true, nil)
	tm.store.EXPECT().ListPresaleOrders(ctx, campaign.ID, schema.PaymentStatusCaptured).
		Return([]schema.Order{captured}, nil)

	// Creator and admin both hear about the partial fulfillment
	tm.notifier.EXPECT().Send(ctx, campaign.ArtistEmail, notifier.TemplateCapturePartial, gomock.Any()).
		Return(nil)
	tm.notifier.EXPECT().Send(ctx, "ops@vinylfunders.test", notifier.TemplateCapturePartial, gomock.Any()).
		Return(nil)

	tm.publisher.EXPECT().PublishCampaignEvent(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event *messaging.CampaignEvent) error {
			assert.Equal(t, messaging.EventCampaignReachedPartial, event.EventType)
			assert.Equal(t, 1, event.CapturedOrders)
			assert.Equal(t, 2, event.AbandonedOrders)
			return nil
		})

	summary, err := tm.engine.RetryPendingCaptures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Captured)
}

func TestEvaluateThresholds_CampaignErrorIsIsolated(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	brokenCampaign, brokenThreshold := testCampaign(2, 2, tm.now.Add(24*time.Hour))
	healthyCampaign, healthyThreshold := testCampaign(10, 3, tm.now.Add(24*time.Hour))

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusActive).
		Return([]schema.PresaleThreshold{brokenThreshold, healthyThreshold}, nil)

	// First campaign's lookup blows up; the pass keeps going
	tm.store.EXPECT().GetCampaignByID(ctx, brokenCampaign.ID).
		Return(nil, errors.New("connection reset"))
	tm.store.EXPECT().GetCampaignByID(ctx, healthyCampaign.ID).
		Return(healthyCampaign, nil)

	summary, err := tm.engine.EvaluateThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Evaluated)
	assert.Equal(t, 1, summary.Errored)
	assert.Equal(t, 1, summary.Skipped)
}

func TestEvaluateThresholds_MissingCampaignIsAnomaly(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	_, threshold := testCampaign(2, 2, tm.now.Add(24*time.Hour))

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusActive).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, threshold.CampaignID).Return(nil, nil)

	summary, err := tm.engine.EvaluateThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errored)
}

func TestEvaluateReachedThresholds_SkipsDeadlines(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	// Past its deadline and below target, but the fast pass only captures
	campaign, threshold := testCampaign(100, 10, tm.now.Add(-time.Hour))

	tm.store.EXPECT().ListThresholdsByStatus(ctx, schema.ThresholdStatusActive).
		Return([]schema.PresaleThreshold{threshold}, nil)
	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)

	summary, err := tm.engine.EvaluateReachedThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
}

func TestInspectCampaign(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaign, threshold := testCampaign(5, 5, tm.now.Add(24*time.Hour))
	attempts := []schema.CaptureAttempt{
		{CampaignID: campaign.ID, AttemptNumber: 1, CapturedCount: 3, FailedCount: 2},
	}

	tm.store.EXPECT().GetCampaignByID(ctx, campaign.ID).Return(campaign, nil)
	tm.store.EXPECT().GetThresholdByCampaignID(ctx, campaign.ID).Return(&threshold, nil)
	tm.store.EXPECT().ListCaptureAttempts(ctx, campaign.ID).Return(attempts, nil)

	inspection, err := tm.engine.InspectCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.ThresholdStatusActive, inspection.Status)
	assert.True(t, inspection.CaptureEligible)
	assert.Len(t, inspection.Attempts, 1)
}

func TestInspectCampaign_NotFound(t *testing.T) {
	tm := setupTestEngine(t)
	defer tearDownTestEngine(tm)

	ctx := context.Background()
	campaignID := uuid.New()

	tm.store.EXPECT().GetCampaignByID(ctx, campaignID).Return(nil, nil)

	_, err := tm.engine.InspectCampaign(ctx, campaignID)
	assert.ErrorIs(t, err, domain.ErrCampaignNotFound)
}
