package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryInternal     ErrorCategory = "INTERNAL"
	CategoryExternal     ErrorCategory = "EXTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
	details  []string
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
		details:  e.details,
	}
}

func (e *domainError) Details() []string {
	return e.details
}

// WithDetails attaches per-field detail strings to a catalogue error. The
// copy still matches the original under errors.Is.
func WithDetails(err DomainError, details ...string) DomainError {
	base, ok := err.(*domainError)
	if !ok {
		return err
	}
	copied := *base
	copied.details = details
	return &copied
}

// Details extracts attached detail strings from anywhere in the chain.
func Details(err error) []string {
	var de *domainError
	if errors.As(err, &de) {
		return de.details
	}
	return nil
}

// Is lets errors.Is match a wrapped copy against its catalogue original by
// code, so WithCause does not break sentinel comparisons.
func (e *domainError) Is(target error) bool {
	var de *domainError
	if !errors.As(target, &de) {
		return false
	}
	return e.code == de.code
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrWeakSecret = NewDomainError(
		"WEAK_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"token secret must be at least 32 bytes",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)

	ErrDatabaseError = NewDomainError(
		"DATABASE_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"database operation failed",
	)

	ErrMediaHostError = NewDomainError(
		"MEDIA_HOST_ERROR",
		CategoryExternal,
		http.StatusBadGateway,
		"media host operation failed",
	)

	ErrCircuitOpen = NewDomainError(
		"CIRCUIT_OPEN",
		CategoryExternal,
		http.StatusServiceUnavailable,
		"circuit breaker is open",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrVideoNotFound = NewDomainError(
		"VIDEO_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"video not found",
	)

	ErrTweetNotFound = NewDomainError(
		"TWEET_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"tweet not found",
	)

	ErrNotOwner = NewDomainError(
		"NOT_OWNER",
		CategoryUnauthorized,
		http.StatusForbidden,
		"caller does not own this resource",
	)
)
