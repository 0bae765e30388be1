package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CampaignEventType identifies a threshold lifecycle transition
type CampaignEventType string

const (
	// EventCampaignReached fires when every eligible order captured
	EventCampaignReached CampaignEventType = "reached"
	// EventCampaignReachedPartial fires when the threshold finalized with
	// abandoned orders after the retry budget ran out
	EventCampaignReachedPartial CampaignEventType = "reached_partial"
	// EventCampaignFailed fires when the deadline passed below target
	EventCampaignFailed CampaignEventType = "failed"
)

// CampaignEvent is published on each terminal threshold transition for
// downstream consumers (dashboards, social posting, the marketplace itself)
type CampaignEvent struct {
	// EventID is a ULID, unique and time-sortable
	EventID    string            `json:"event_id"`
	EventType  CampaignEventType `json:"event_type"`
	CampaignID uuid.UUID         `json:"campaign_id"`
	// CapturedOrders and AbandonedOrders describe the final tally
	CapturedOrders  int       `json:"captured_orders"`
	AbandonedOrders int       `json:"abandoned_orders"`
	Timestamp       time.Time `json:"timestamp"`
}

// Publisher defines the interface for publishing campaign events to the
// message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishCampaignEvent publishes a threshold transition event
	PublishCampaignEvent(ctx context.Context, event *CampaignEvent) error
	// Close closes the connection
	Close()
}
