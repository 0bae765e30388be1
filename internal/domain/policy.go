package domain

import "time"

// RetryPolicy bounds the capture retry loop for a campaign. A campaign whose
// captures keep partially failing is retried until either MaxAttempts
// attempts have been made or MaxElapsed has passed since the first attempt,
// whichever comes first; the remaining orders are then abandoned and the
// threshold is finalized with the subset that did capture.
type RetryPolicy struct {
	// MaxAttempts is the total capture attempt budget per campaign
	MaxAttempts int
	// MaxElapsed is the time budget measured from the first attempt
	MaxElapsed time.Duration
	// Cooldown is the minimum gap between two attempts for the same campaign
	Cooldown time.Duration
}

// DefaultRetryPolicy returns the production defaults: 5 attempts or 3 days,
// with a 12 hour cooldown between attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		MaxElapsed:  72 * time.Hour,
		Cooldown:    12 * time.Hour,
	}
}

// Exhausted reports whether the retry budget is spent given the number of
// attempts made so far and the time of the first attempt.
func (p RetryPolicy) Exhausted(attempts int, firstAttemptAt time.Time, now time.Time) bool {
	if attempts >= p.MaxAttempts {
		return true
	}
	if attempts > 0 && now.Sub(firstAttemptAt) >= p.MaxElapsed {
		return true
	}
	return false
}

// CooledDown reports whether enough time has passed since the last attempt
// for another attempt to be allowed.
func (p RetryPolicy) CooledDown(lastAttemptAt time.Time, now time.Time) bool {
	return now.Sub(lastAttemptAt) >= p.Cooldown
}
