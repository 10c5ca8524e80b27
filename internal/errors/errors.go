// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInstallationClaimed is returned when an installation is already owned by a different user.
	ErrInstallationClaimed = errors.New("installation already claimed by another user")
	// ErrInvalidState is returned when an install state token fails verification.
	ErrInvalidState = errors.New("invalid or expired state token")
	// ErrUnknownUser is returned when a verified token names a user that does not exist locally.
	ErrUnknownUser = errors.New("unknown user")
	// ErrInstallationNotFound is returned when a user asks for an installation they do not own.
	ErrInstallationNotFound = errors.New("installation not found")
)

// ErrInvalidInstallationID is returned when an installation id is not a positive integer.
type ErrInvalidInstallationID struct {
	Value string
}

func (e *ErrInvalidInstallationID) Error() string {
	return fmt.Sprintf("invalid installation id: %q", e.Value)
}

// InvalidKeyMaterialError means the configured app private key is not PEM-wrapped RSA key material.
// It is a configuration error and is never retried.
type InvalidKeyMaterialError struct {
	Reason string
}

func (e *InvalidKeyMaterialError) Error() string {
	return "invalid app private key: " + e.Reason
}

// SigningError is returned when the app key cannot be imported or an assertion cannot be signed.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("failed to sign app assertion: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// UpstreamTokenError is returned when GitHub rejects an installation token exchange.
type UpstreamTokenError struct {
	InstallationID int64
	StatusCode     int
	Body           string
}

func (e *UpstreamTokenError) Error() string {
	return fmt.Sprintf("failed to get installation access token for %d: status %d: %s", e.InstallationID, e.StatusCode, e.Body)
}

// UpstreamFetchError is returned when a GitHub API read fails for any reason other than a timeout.
type UpstreamFetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// UpstreamTimeoutError is returned when a GitHub API call exceeds the configured timeout.
type UpstreamTimeoutError struct {
	Op  string
	Err error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("%s: upstream timeout: %v", e.Op, e.Err)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

// SchemaValidationError is returned when an upstream response does not match the expected shape.
type SchemaValidationError struct {
	Entity string
	Field  string
	Err    error
}

func (e *SchemaValidationError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("invalid %s: field %q: %v", e.Entity, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("invalid %s: missing required field %q", e.Entity, e.Field)
	default:
		return fmt.Sprintf("invalid %s: %v", e.Entity, e.Err)
	}
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// PayloadValidationError is returned when an inbound webhook body is malformed.
type PayloadValidationError struct {
	Field  string
	Reason string
}

func (e *PayloadValidationError) Error() string {
	if e.Field == "" {
		return "invalid webhook payload: " + e.Reason
	}
	return fmt.Sprintf("invalid webhook payload: %s: %s", e.Field, e.Reason)
}

// InternalIngestionError wraps any unexpected failure while processing a webhook delivery.
type InternalIngestionError struct {
	Err error
}

func (e *InternalIngestionError) Error() string {
	return fmt.Sprintf("webhook ingestion failed: %v", e.Err)
}

func (e *InternalIngestionError) Unwrap() error { return e.Err }

// IsRetriable reports whether err is an upstream failure a caller may retry.
func IsRetriable(err error) bool {
	var tokenErr *UpstreamTokenError
	var fetchErr *UpstreamFetchError
	var timeoutErr *UpstreamTimeoutError
	return errors.As(err, &tokenErr) || errors.As(err, &fetchErr) || errors.As(err, &timeoutErr)
}
