package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the planning pipeline.
var (
	// ErrProvidersUnavailable means every configured flight provider failed
	// with a transport-level error for this request.
	ErrProvidersUnavailable = errors.New("all flight providers unavailable")

	// ErrProviderRateLimited marks a provider rejection caused by rate limiting.
	ErrProviderRateLimited = errors.New("provider rate limited")

	// ErrProviderAuth marks a credential rejection by a provider.
	ErrProviderAuth = errors.New("provider authentication failed")

	// ErrSynthesisFailed means the language model call failed or returned
	// empty text. Flight offers are still usable when this is returned.
	ErrSynthesisFailed = errors.New("itinerary synthesis failed")
)

// ValidationError rejects a malformed trip query before any provider call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trip query: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
