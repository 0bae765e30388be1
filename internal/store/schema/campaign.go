package schema

import (
	"time"

	"github.com/google/uuid"
)

// Campaign represents the campaigns table - one artist release that is
// eligible for a vinyl presale. The wider release record (artwork, tracks,
// pricing tiers) lives in the marketplace database; this service only keeps
// the fields the reconciliation engine needs.
type Campaign struct {
	// ID is the campaign identifier shared with the marketplace
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid"`
	// ArtistID references the artist who owns the release
	ArtistID uuid.UUID `gorm:"column:artist_id;not null;type:uuid;index"`
	// Title is the release title, used in notifications
	Title string `gorm:"column:title;not null;type:text"`
	// ArtistEmail receives creator-facing notifications
	ArtistEmail string `gorm:"column:artist_email;not null;type:text"`
	// TargetOrders is the minimum order count for the pressing to go ahead
	TargetOrders int `gorm:"column:target_orders;not null"`
	// CurrentOrders is a cached counter maintained by the order-placement path
	CurrentOrders int `gorm:"column:current_orders;not null;default:0"`
	// EndDate is the presale deadline
	EndDate time.Time `gorm:"column:end_date;not null;type:timestamptz"`
	// Deleted marks campaigns removed by the artist; never evaluated
	Deleted bool `gorm:"column:deleted;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Threshold       *PresaleThreshold `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	Orders          []Order           `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	CaptureAttempts []CaptureAttempt  `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}
