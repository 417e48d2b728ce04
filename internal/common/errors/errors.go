// Package errors provides the closed failure taxonomy shared by every I/O boundary of the wizard.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Taxonomy
// ==========================

// Kind is a string-tagged failure classification used for user messaging and assertions.
type Kind string

const (
	KindTimeout            Kind = "timeout"
	KindAPIKeyMissing      Kind = "api_key_missing"
	KindAPIKeyInvalid      Kind = "api_key_invalid"
	KindRateLimit          Kind = "rate_limit"
	KindRateLimitExceeded  Kind = "rate_limit_exceeded"
	KindServerError        Kind = "server_error"
	KindServiceUnavailable Kind = "service_unavailable"
	KindNetworkError       Kind = "network_error"
	KindValidationError    Kind = "validation_error"
	KindUnauthorized       Kind = "unauthorized"
	KindAPIError           Kind = "api_error"
	KindInvalidResponse    Kind = "invalid_response"
	KindUnknownError       Kind = "unknown_error"
)

// Kinds lists every member of the taxonomy.
var Kinds = []Kind{
	KindTimeout,
	KindAPIKeyMissing,
	KindAPIKeyInvalid,
	KindRateLimit,
	KindRateLimitExceeded,
	KindServerError,
	KindServiceUnavailable,
	KindNetworkError,
	KindValidationError,
	KindUnauthorized,
	KindAPIError,
	KindInvalidResponse,
	KindUnknownError,
}

// Error is the single value an I/O collaborator returns when it fails.
type Error struct {
	Kind      Kind      `json:"kind"`
	Status    int       `json:"status,omitempty"`
	Details   string    `json:"details,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

// Tag renders the wire form of the classification, e.g. "rate_limit" or "api_error:418 - teapot".
func (e *Error) Tag() string {
	if e == nil {
		return ""
	}
	if e.Kind != KindAPIError {
		return string(e.Kind)
	}
	tag := fmt.Sprintf("%s:%d", KindAPIError, e.Status)
	if e.Details != "" {
		tag += " - " + e.Details
	}
	return tag
}

func (e *Error) Error() string {
	return e.Tag()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, New(KindTimeout)) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Status == 0 || t.Status == e.Status)
}

// ==========================
// 2. Constructors
// ==========================

// New creates a taxonomy error with no cause.
func New(kind Kind) *Error {
	return &Error{
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap creates a taxonomy error that keeps the underlying cause for logging.
func Wrap(kind Kind, err error) *Error {
	e := New(kind)
	e.Err = err
	return e
}

// NewAPIError creates an api_error for an unexpected HTTP status.
func NewAPIError(status int, details string) *Error {
	e := New(KindAPIError)
	e.Status = status
	e.Details = strings.TrimSpace(details)
	return e
}

// WithProvider records which upstream produced the failure.
func (e *Error) WithProvider(name string) *Error {
	e.Provider = name
	return e
}

// ==========================
// 3. Inspection
// ==========================

// As extracts the taxonomy error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the classification of err, unknown_error for anything outside the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknownError
}

// TagOf returns the wire form of err's classification.
func TagOf(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Tag()
	}
	return string(KindUnknownError)
}

// IsRateLimited reports whether kind is either rate limit flavour.
func IsRateLimited(kind Kind) bool {
	return kind == KindRateLimit || kind == KindRateLimitExceeded
}

// Category groups kinds for metric labels.
func Category(kind Kind) string {
	switch kind {
	case KindAPIKeyMissing, KindAPIKeyInvalid, KindUnauthorized:
		return "CREDENTIALS"
	case KindRateLimit, KindRateLimitExceeded:
		return "THROTTLED"
	case KindServerError, KindServiceUnavailable, KindAPIError, KindInvalidResponse:
		return "UPSTREAM"
	case KindTimeout, KindNetworkError:
		return "TRANSPORT"
	case KindValidationError:
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
