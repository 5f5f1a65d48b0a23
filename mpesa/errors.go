package mpesa

import (
	"errors"
	"fmt"
)

// ErrNotYetResolved is returned by QueryStatus while the gateway is still
// processing the push. It marks a valid intermediate state, not a failure.
var ErrNotYetResolved = errors.New("mpesa: transaction not yet resolved")

// ValidationError indicates bad caller input that was rejected before any
// network call was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError indicates the gateway rejected our credentials or the token
// exchange itself failed.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mpesa auth: %s: %v", e.Message, e.Err)
	}
	return "mpesa auth: " + e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// GatewayError indicates a remote call failed or the gateway returned a
// non-success envelope. Code and Message carry the gateway's own error fields
// when present.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("mpesa gateway: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("mpesa gateway: %s (status %d)", e.Message, e.StatusCode)
}
