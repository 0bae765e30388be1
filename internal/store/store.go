package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/vinylfunders/vf-presale-engine/internal/store/schema"
)

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetCampaignByID retrieves a campaign by its identifier
	GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (*schema.Campaign, error)

	// CreateCampaign persists a campaign mirrored from the marketplace
	CreateCampaign(ctx context.Context, campaign *schema.Campaign) error

	// CreatePresaleThreshold creates the threshold row for a presale-eligible
	// campaign, copying its target count
	CreatePresaleThreshold(ctx context.Context, campaignID uuid.UUID) (*schema.PresaleThreshold, error)

	// GetThresholdByCampaignID retrieves the threshold for a campaign
	GetThresholdByCampaignID(ctx context.Context, campaignID uuid.UUID) (*schema.PresaleThreshold, error)

	// ListThresholdsByStatus retrieves all thresholds in the given status
	ListThresholdsByStatus(ctx context.Context, status schema.ThresholdStatus) ([]schema.PresaleThreshold, error)

	// TransitionThresholdStatus conditionally moves a threshold from one
	// status to another. Returns false when the row was not in the expected
	// status, meaning a concurrent pass won the race.
	TransitionThresholdStatus(ctx context.Context, campaignID uuid.UUID, from, to schema.ThresholdStatus) (bool, error)

	// RecordPresaleOrder creates an order and increments the cached order
	// counters on the campaign and its threshold in one transaction
	RecordPresaleOrder(ctx context.Context, order *schema.Order) error

	// ListPresaleOrders retrieves a campaign's presale orders in any of the
	// given payment statuses
	ListPresaleOrders(ctx context.Context, campaignID uuid.UUID, statuses ...schema.PaymentStatus) ([]schema.Order, error)

	// TransitionOrderPaymentStatus conditionally moves an order's payment
	// status, optionally recording the captured transaction id. Returns
	// false when the order was not in the expected status.
	TransitionOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, from, to schema.PaymentStatus, capturedTxID *string) (bool, error)

	// AbandonUncapturedOrders marks a campaign's still-pending presale orders
	// as failed after the retry budget is exhausted, returning how many rows
	// changed
	AbandonUncapturedOrders(ctx context.Context, campaignID uuid.UUID) (int64, error)

	// AppendCaptureAttempt appends an attempt log entry, assigning the next
	// attempt number for the campaign
	AppendCaptureAttempt(ctx context.Context, attempt *schema.CaptureAttempt) error

	// ListCaptureAttempts retrieves a campaign's attempt log ordered by
	// attempt number ascending
	ListCaptureAttempts(ctx context.Context, campaignID uuid.UUID) ([]schema.CaptureAttempt, error)
}
