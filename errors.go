package spendgate

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrConfirmationPending   = errors.New("spendgate: a confirmation is already pending")
	ErrExecutionInFlight     = errors.New("spendgate: an action is executing")
	ErrNoPendingConfirmation = errors.New("spendgate: no pending confirmation")
	ErrQuotaExceeded         = errors.New("spendgate: feature quota exceeded")
	ErrNegativeCost          = errors.New("spendgate: cost must be non-negative")
	ErrNilAction             = errors.New("spendgate: action is required")
	ErrTenantNotFound        = errors.New("spendgate: tenant not found")
)

// GatewayError wraps an error with spend-request context.
type GatewayError struct {
	Err        error
	RequestID  string
	FeatureKey string
	Cost       int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("spendgate: request=%s feature=%s cost=%d: %v",
		e.RequestID, e.FeatureKey, e.Cost, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsBusy returns true if the error means another request holds the gateway.
func IsBusy(err error) bool {
	return errors.Is(err, ErrConfirmationPending) || errors.Is(err, ErrExecutionInFlight)
}

// IsRejected returns true if the request was refused before its action ran,
// so nothing was consumed.
func IsRejected(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrNegativeCost) ||
		errors.Is(err, ErrNilAction) ||
		IsBusy(err)
}
