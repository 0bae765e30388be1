package gateway

import (
	"context"
	"errors"
	"fmt"
)

// PaymentGateway wraps the payment processor's deferred-capture primitives.
// Every call targets one payment intent and is idempotent on the gateway
// side, so retrying with the same reference is always safe.
//
//go:generate mockgen -source=gateway.go -destination=../mocks/gateway.go -package=mocks -mock_names=PaymentGateway=MockPaymentGateway
type PaymentGateway interface {
	// Capture charges a previously authorized hold
	Capture(ctx context.Context, intentRef string) (*CaptureResult, error)

	// Cancel releases an authorized hold without charging the buyer
	Cancel(ctx context.Context, intentRef string) error

	// Refund returns a captured payment to the buyer
	Refund(ctx context.Context, intentRef string) error
}

// CaptureResult holds the outcome of a successful capture
type CaptureResult struct {
	// TransactionID is the gateway's id for the settled charge
	TransactionID string
}

// Error is a classified gateway failure. Transient errors (network, timeout,
// processor 5xx) will likely succeed on a later attempt without buyer action;
// declines (expired or refused card) only clear if the buyer updates their
// payment method, but remain retryable by policy until the budget runs out.
type Error struct {
	Code      string
	Message   string
	Transient bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %s", e.Code, e.Message)
}

// IsTransient reports whether err is a transient gateway error
func IsTransient(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Transient
}
