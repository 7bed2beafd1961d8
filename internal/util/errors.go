// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input provided")
	ErrCredentialsExpired = errors.New("credentials expired")
	ErrMissingColumns     = errors.New("missing required csv columns")
	ErrPartitionInvariant = errors.New("reconciliation partition does not cover input")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	// Add more specific errors as needed
)

// IsError reports whether err wraps target. Thin wrapper kept for call-site
// readability in the service layer.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
