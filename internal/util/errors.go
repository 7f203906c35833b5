// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input provided")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrUnauthorized         = errors.New("credential could not be resolved")
	ErrForbidden            = errors.New("not a participant of this consultation")
	ErrStoreUnavailable     = errors.New("store connection unavailable")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
