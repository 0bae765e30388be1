package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vinylfunders/vf-presale-engine/internal/domain"
	"github.com/vinylfunders/vf-presale-engine/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// GetCampaignByID retrieves a campaign by its identifier
func (s *pgStore) GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (*schema.Campaign, error) {
	var campaign schema.Campaign
	err := s.db.WithContext(ctx).Where("id = ?", campaignID).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &campaign, nil
}

// CreateCampaign persists a campaign mirrored from the marketplace
func (s *pgStore) CreateCampaign(ctx context.Context, campaign *schema.Campaign) error {
	if err := s.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// CreatePresaleThreshold creates the threshold row for a presale-eligible campaign
func (s *pgStore) CreatePresaleThreshold(ctx context.Context, campaignID uuid.UUID) (*schema.PresaleThreshold, error) {
	var threshold schema.PresaleThreshold

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign schema.Campaign
		if err := tx.Where("id = ?", campaignID).First(&campaign).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCampaignNotFound
			}
			return fmt.Errorf("failed to get campaign: %w", err)
		}

		threshold = schema.PresaleThreshold{
			CampaignID:    campaign.ID,
			TargetOrders:  campaign.TargetOrders,
			CurrentOrders: campaign.CurrentOrders,
			Status:        schema.ThresholdStatusActive,
		}

		// ON CONFLICT DO NOTHING keeps the 1:1 invariant under races with a
		// concurrent marketplace sync
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campaign_id"}},
			DoNothing: true,
		}).Create(&threshold).Error; err != nil {
			return fmt.Errorf("failed to create presale threshold: %w", err)
		}

		// If ID is 0 the threshold already existed, so fetch it
		if threshold.ID == 0 {
			if err := tx.Where("campaign_id = ?", campaignID).First(&threshold).Error; err != nil {
				return fmt.Errorf("failed to get existing threshold: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &threshold, nil
}

// GetThresholdByCampaignID retrieves the threshold for a campaign
func (s *pgStore) GetThresholdByCampaignID(ctx context.Context, campaignID uuid.UUID) (*schema.PresaleThreshold, error) {
	var threshold schema.PresaleThreshold
	err := s.db.WithContext(ctx).Where("campaign_id = ?", campaignID).First(&threshold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get presale threshold: %w", err)
	}
	return &threshold, nil
}

// ListThresholdsByStatus retrieves all thresholds in the given status
func (s *pgStore) ListThresholdsByStatus(ctx context.Context, status schema.ThresholdStatus) ([]schema.PresaleThreshold, error) {
	var thresholds []schema.PresaleThreshold
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Find(&thresholds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list thresholds: %w", err)
	}
	return thresholds, nil
}

// TransitionThresholdStatus conditionally moves a threshold between statuses.
// The WHERE clause on the current status makes this a compare-and-swap: of
// two racing passes exactly one observes RowsAffected == 1 and proceeds.
func (s *pgStore) TransitionThresholdStatus(ctx context.Context, campaignID uuid.UUID, from, to schema.ThresholdStatus) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&schema.PresaleThreshold{}).
		Where("campaign_id = ? AND status = ?", campaignID, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition threshold status: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// RecordPresaleOrder creates an order and increments the cached order counters
func (s *pgStore) RecordPresaleOrder(ctx context.Context, order *schema.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if !order.Presale {
			return nil
		}

		if err := tx.Model(&schema.Campaign{}).
			Where("id = ?", order.CampaignID).
			Update("current_orders", gorm.Expr("current_orders + ?", order.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to increment campaign order count: %w", err)
		}

		// Only count orders placed while the presale is still collecting
		if err := tx.Model(&schema.PresaleThreshold{}).
			Where("campaign_id = ? AND status = ?", order.CampaignID, schema.ThresholdStatusActive).
			Update("current_orders", gorm.Expr("current_orders + ?", order.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to increment threshold order count: %w", err)
		}

		return nil
	})
}

// ListPresaleOrders retrieves a campaign's presale orders in the given statuses
func (s *pgStore) ListPresaleOrders(ctx context.Context, campaignID uuid.UUID, statuses ...schema.PaymentStatus) ([]schema.Order, error) {
	query := s.db.WithContext(ctx).
		Where("campaign_id = ? AND presale = ?", campaignID, true)
	if len(statuses) > 0 {
		query = query.Where("payment_status IN ?", statuses)
	}

	var orders []schema.Order
	if err := query.Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list presale orders: %w", err)
	}
	return orders, nil
}

// TransitionOrderPaymentStatus conditionally moves an order's payment status
func (s *pgStore) TransitionOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, from, to schema.PaymentStatus, capturedTxID *string) (bool, error) {
	updates := map[string]interface{}{"payment_status": to}
	if capturedTxID != nil {
		updates["captured_tx_id"] = *capturedTxID
	}

	result := s.db.WithContext(ctx).
		Model(&schema.Order{}).
		Where("id = ? AND payment_status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition order payment status: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// AbandonUncapturedOrders marks still-pending presale orders as failed
func (s *pgStore) AbandonUncapturedOrders(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&schema.Order{}).
		Where("campaign_id = ? AND presale = ? AND payment_status IN ?",
			campaignID, true, []schema.PaymentStatus{schema.PaymentStatusPending, schema.PaymentStatusProcessing}).
		Update("payment_status", schema.PaymentStatusFailed)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to abandon uncaptured orders: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// AppendCaptureAttempt appends an attempt log entry with the next attempt number
func (s *pgStore) AppendCaptureAttempt(ctx context.Context, attempt *schema.CaptureAttempt) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxNumber int64
		err := tx.Model(&schema.CaptureAttempt{}).
			Where("campaign_id = ?", attempt.CampaignID).
			Select("COALESCE(MAX(attempt_number), 0)").
			Scan(&maxNumber).Error
		if err != nil {
			return fmt.Errorf("failed to get max attempt number: %w", err)
		}

		attempt.AttemptNumber = int(maxNumber) + 1

		// The unique (campaign_id, attempt_number) index rejects the loser
		// if two passes ever race to append for the same campaign
		if err := tx.Create(attempt).Error; err != nil {
			return fmt.Errorf("failed to append capture attempt: %w", err)
		}

		return nil
	})
}

// ListCaptureAttempts retrieves a campaign's attempt log
func (s *pgStore) ListCaptureAttempts(ctx context.Context, campaignID uuid.UUID) ([]schema.CaptureAttempt, error) {
	var attempts []schema.CaptureAttempt
	err := s.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list capture attempts: %w", err)
	}
	return attempts, nil
}
