package schema

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment state of one order
type PaymentStatus string

const (
	// PaymentStatusPending indicates the hold is authorized but not captured
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusProcessing indicates a capture call is in flight
	PaymentStatusProcessing PaymentStatus = "processing"
	// PaymentStatusCaptured indicates the buyer has been charged
	PaymentStatusCaptured PaymentStatus = "captured"
	// PaymentStatusRefunded indicates a captured payment was returned
	PaymentStatusRefunded PaymentStatus = "refunded"
	// PaymentStatusCancelled indicates the hold was released uncharged
	PaymentStatusCancelled PaymentStatus = "cancelled"
	// PaymentStatusFailed indicates capture was abandoned after the retry budget
	PaymentStatusFailed PaymentStatus = "failed"
)

// String returns the string representation of the payment status
func (s PaymentStatus) String() string {
	return string(s)
}

// Order represents the orders table - one buyer's pledge against a campaign.
// Rows are created at checkout with an authorized-not-captured payment intent;
// the reconciliation engine owns all later payment status transitions.
type Order struct {
	// ID is the order identifier shared with the marketplace
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid"`
	// CampaignID references the campaign this pledge belongs to
	CampaignID uuid.UUID `gorm:"column:campaign_id;not null;type:uuid;index:idx_orders_campaign_payment,priority:1"`
	// BuyerEmail receives buyer-facing notifications (account or guest checkout)
	BuyerEmail string `gorm:"column:buyer_email;not null;type:text"`
	// Quantity is the number of copies pledged
	Quantity int `gorm:"column:quantity;not null;default:1"`
	// TotalPrice is the pledge amount in the campaign currency
	TotalPrice decimal.Decimal `gorm:"column:total_price;not null;type:numeric(12,2)"`
	// Presale marks orders that participate in threshold accounting
	Presale bool `gorm:"column:presale;not null;default:false"`
	// PaymentStatus is the current payment state
	PaymentStatus PaymentStatus `gorm:"column:payment_status;not null;type:text;default:pending;index:idx_orders_campaign_payment,priority:2"`
	// PaymentIntentRef is the gateway handle for the authorized hold
	PaymentIntentRef string `gorm:"column:payment_intent_ref;not null;uniqueIndex;type:text"`
	// CapturedTxID is the gateway transaction id once captured
	CapturedTxID *string `gorm:"column:captured_tx_id;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
