// Package apperr defines the error taxonomy shared by the ban engine and its
// callers. Every engine failure is one of four kinds so the web layer can map
// it to a response class without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. Field names the offending field so
// the caller can surface it next to the form control.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Validation creates a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a business-rule collision that is not reducible to
// field validation, e.g. re-deciding a terminal approval or removing the last
// place of a ban.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// Conflict creates a ConflictError.
func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// AuthorizationError reports that the actor's role or scope does not satisfy
// the operation. The message is intentionally generic; which rule blocked the
// action is not leaked to the caller.
type AuthorizationError struct{}

func (e *AuthorizationError) Error() string {
	return "insufficient permission"
}

// Authorization creates an AuthorizationError.
func Authorization() error {
	return &AuthorizationError{}
}

// UnavailableError reports that the persistence layer could not complete an
// atomic operation. No partial state was committed; safe to retry with backoff.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps a storage failure.
func Unavailable(err error) error {
	return &UnavailableError{Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// IsUnavailable reports whether err is an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
