package domain

import "errors"

var (
	// ErrCampaignNotFound is returned when a campaign does not exist
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrThresholdNotFound is returned when a campaign has no presale threshold
	ErrThresholdNotFound = errors.New("presale threshold not found")

	// ErrThresholdNotActive is returned when a conditional status transition
	// loses the race because another pass already moved the threshold on
	ErrThresholdNotActive = errors.New("presale threshold is not active")

	// ErrDataInconsistency is returned when stored counts or references are
	// corrupted; the affected campaign is skipped, not fatal to a scan
	ErrDataInconsistency = errors.New("presale data inconsistency")
)
