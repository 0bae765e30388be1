package schema

import (
	"time"

	"github.com/google/uuid"
)

// ThresholdStatus represents the lifecycle state of a presale threshold
type ThresholdStatus string

const (
	// ThresholdStatusActive indicates the presale is still collecting orders
	ThresholdStatusActive ThresholdStatus = "active"
	// ThresholdStatusProcessing indicates the target was met and capture is in progress
	ThresholdStatusProcessing ThresholdStatus = "processing"
	// ThresholdStatusReached indicates capture finished; terminal
	ThresholdStatusReached ThresholdStatus = "reached"
	// ThresholdStatusFailed indicates the deadline passed below target; terminal
	ThresholdStatusFailed ThresholdStatus = "failed"
)

// String returns the string representation of the threshold status
func (s ThresholdStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transitions may leave this status
func (s ThresholdStatus) Terminal() bool {
	return s == ThresholdStatusReached || s == ThresholdStatusFailed
}

// PresaleThreshold represents the presale_thresholds table. Exactly one row
// exists per presale-eligible campaign; rows are transitioned, never deleted.
// Status moves only forward (active -> processing -> reached, or
// active -> failed) and every transition is a conditional update on the
// current status, so concurrent reconciliation passes cannot double-process
// a campaign.
type PresaleThreshold struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CampaignID references the owning campaign; unique enforces the 1:1
	CampaignID uuid.UUID `gorm:"column:campaign_id;not null;uniqueIndex;type:uuid"`
	// TargetOrders is copied from the campaign at threshold creation
	TargetOrders int `gorm:"column:target_orders;not null"`
	// CurrentOrders is the cached order count, incremented at checkout
	CurrentOrders int `gorm:"column:current_orders;not null;default:0"`
	// Status is the lifecycle state
	Status ThresholdStatus `gorm:"column:status;not null;type:text;default:active;index"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PresaleThreshold model
func (PresaleThreshold) TableName() string {
	return "presale_thresholds"
}
