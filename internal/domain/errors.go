package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across layers. Controllers map these to HTTP status codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrCodeNotFound     = errors.New("verification code not found after maximum attempts")

	// ErrProviderRejected matches every non-success answer from the registration provider.
	ErrProviderRejected     = errors.New("provider rejected request")
	ErrRegistrationRejected = errors.New("registration rejected")
	ErrCodeDispatchFailed   = errors.New("verification code dispatch failed")
	ErrSignInRejected       = errors.New("sign in rejected")
)

// ProviderError is returned by the registration provider for non-2xx responses.
// Body is the remote error body, verbatim.
type ProviderError struct {
	Kind       error
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	var op string
	switch e.Kind {
	case ErrRegistrationRejected:
		op = "registration failed"
	case ErrCodeDispatchFailed:
		op = "failed to send verification code"
	case ErrSignInRejected:
		op = "sign in failed"
	default:
		op = "provider request failed"
	}
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", op, e.Body)
}

// Unwrap exposes the specific rejection kind.
func (e *ProviderError) Unwrap() error { return e.Kind }

// Is lets every ProviderError match ErrProviderRejected.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderRejected
}
