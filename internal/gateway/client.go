package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vinylfunders/vf-presale-engine/internal/adapter"
)

// Config holds payment gateway client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// intentResponse is the payments service response for intent operations
type intentResponse struct {
	TransactionID string `json:"transaction_id"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// client implements PaymentGateway against the VinylFunders payments service,
// which fronts the card processor's authorize/capture/cancel/refund API
type client struct {
	httpClient adapter.HTTPClient
	clock      adapter.Clock
	baseURL    string
	apiKey     string
}

// NewClient creates a new payment gateway client
func NewClient(httpClient adapter.HTTPClient, clock adapter.Clock, cfg Config) PaymentGateway {
	return &client{
		httpClient: httpClient,
		clock:      clock,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// Capture charges a previously authorized hold
func (c *client) Capture(ctx context.Context, intentRef string) (*CaptureResult, error) {
	resp, err := c.post(ctx, intentRef, "capture")
	if err != nil {
		return nil, err
	}

	if resp.TransactionID == "" {
		return nil, &Error{Code: "missing_transaction", Message: "capture response has no transaction id", Transient: true}
	}

	return &CaptureResult{TransactionID: resp.TransactionID}, nil
}

// Cancel releases an authorized hold without charging the buyer
func (c *client) Cancel(ctx context.Context, intentRef string) error {
	_, err := c.post(ctx, intentRef, "cancel")
	return err
}

// Refund returns a captured payment to the buyer
func (c *client) Refund(ctx context.Context, intentRef string) error {
	_, err := c.post(ctx, intentRef, "refund")
	return err
}

// post performs one intent operation and classifies the outcome
func (c *client) post(ctx context.Context, intentRef, operation string) (*intentResponse, error) {
	url := fmt.Sprintf("%s/v1/payment-intents/%s/%s", c.baseURL, intentRef, operation)

	// ULID idempotency key; the gateway deduplicates replays of the same
	// logical operation
	headers := map[string]string{
		"Authorization":   "Bearer " + c.apiKey,
		"Idempotency-Key": fmt.Sprintf("%s-%s", operation, ulid.MustNewDefault(c.clock.Now()).String()),
	}

	body, statusCode, err := c.httpClient.PostJSON(ctx, url, headers, struct{}{})
	if err != nil {
		// Network failures and timeouts surface here after client retries
		return nil, &Error{Code: "unreachable", Message: err.Error(), Transient: true}
	}

	var resp intentResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &Error{Code: "bad_response", Message: err.Error(), Transient: true}
		}
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return &resp, nil
	case statusCode == http.StatusPaymentRequired || statusCode == http.StatusConflict:
		// Declined or expired card; clears only if the buyer updates their
		// payment method
		code, message := "declined", "payment declined"
		if resp.Error != nil {
			code, message = resp.Error.Code, resp.Error.Message
		}
		return nil, &Error{Code: code, Message: message, Transient: false}
	case statusCode >= 500:
		return nil, &Error{Code: fmt.Sprintf("processor_%d", statusCode), Message: string(body), Transient: true}
	default:
		return nil, &Error{Code: fmt.Sprintf("http_%d", statusCode), Message: string(body), Transient: false}
	}
}
