// Package apperror defines the error taxonomy shared by the service layer
// and the HTTP surface. Every collaborator call site maps its failures onto
// one of these kinds; handlers translate kinds to status codes in one place
// and never leak internal store details to the caller.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"exam-service/internal/models"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
	KindDependency
)

type Error struct {
	Kind    Kind
	Message string

	// RequiredTier is set on Forbidden errors so the client can render an
	// upgrade prompt.
	RequiredTier models.Tier

	// RollbackFailures lists asset names whose compensating delete failed
	// after the triggering error. They are reported for reconciliation but
	// never replace the original error.
	RollbackFailures []string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func Forbidden(required models.Tier) *Error {
	return &Error{
		Kind:         KindForbidden,
		Message:      fmt.Sprintf("This content requires a %s plan. Please upgrade to access.", required),
		RequiredTier: required,
	}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Dependency(err error, format string, args ...any) *Error {
	return &Error{Kind: KindDependency, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf classifies any error; wrapping is followed. Errors outside the
// taxonomy count as dependency failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message for an error. Wrapped causes stay
// server-side.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// RequiredTierOf returns the tier attached to a Forbidden error, or empty.
func RequiredTierOf(err error) models.Tier {
	var e *Error
	if errors.As(err, &e) {
		return e.RequiredTier
	}
	return ""
}
