package errors

import (
	"context"
	stderrors "errors"
	"net"
	"net/url"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// Normalize maps a raw transport failure to exactly one taxonomy value. Errors that are already
// classified are returned unchanged.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	if IsTimeout(err) {
		return Wrap(KindTimeout, err)
	}
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return Wrap(KindNetworkError, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return Wrap(KindNetworkError, err)
	}
	return Wrap(KindUnknownError, err)
}

// IsTimeout reports deadline expiry from either the context or the transport.
func IsTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// Report logs a classified failure with the fields every collaborator uses.
func Report(log Logger, msg string, err *Error) {
	if log == nil || err == nil {
		return
	}
	fields := map[string]interface{}{
		"kind":     string(err.Kind),
		"tag":      err.Tag(),
		"category": Category(err.Kind),
	}
	if err.Provider != "" {
		fields["provider"] = err.Provider
	}
	if err.Status != 0 {
		fields["status"] = err.Status
	}
	if err.Err != nil {
		fields["cause"] = err.Err.Error()
	}
	log.Error(msg, fields)
}
