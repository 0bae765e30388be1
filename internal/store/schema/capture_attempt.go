package schema

import (
	"time"

	"github.com/google/uuid"
)

// CaptureAttempt represents the capture_attempts table - an append-only log
// of each batch capture pass against one campaign. The retry policy computes
// the remaining budget from these rows alone; nothing else counts attempts.
type CaptureAttempt struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CampaignID references the campaign this attempt ran against
	CampaignID uuid.UUID `gorm:"column:campaign_id;not null;type:uuid;uniqueIndex:idx_capture_attempts_campaign_number,priority:1"`
	// AttemptNumber increases monotonically per campaign, starting at 1
	AttemptNumber int `gorm:"column:attempt_number;not null;uniqueIndex:idx_capture_attempts_campaign_number,priority:2"`
	// CapturedCount is how many orders captured successfully in this pass
	CapturedCount int `gorm:"column:captured_count;not null"`
	// FailedCount is how many orders failed capture in this pass
	FailedCount int `gorm:"column:failed_count;not null"`
	// ErrorDetail summarizes the failures (nil when all captures succeeded)
	ErrorDetail *string `gorm:"column:error_detail;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CaptureAttempt model
func (CaptureAttempt) TableName() string {
	return "capture_attempts"
}
