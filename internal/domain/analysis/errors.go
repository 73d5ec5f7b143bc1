package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers never depend on raw error text.
type Kind string

const (
	KindInvalidArgument     Kind = "invalid_argument"
	KindNotFound            Kind = "not_found"
	KindRateLimited         Kind = "rate_limited"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindOfflineUnavailable  Kind = "offline_unavailable"
	KindInternal            Kind = "internal"
)

// Error carries a stable kind plus a human-readable message.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func InvalidArgument(format string, args ...any) *Error {
	return newError(KindInvalidArgument, nil, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, nil, format, args...)
}

func RateLimited(err error, format string, args ...any) *Error {
	return newError(KindRateLimited, err, format, args...)
}

func UpstreamUnavailable(err error, format string, args ...any) *Error {
	return newError(KindUpstreamUnavailable, err, format, args...)
}

func OfflineUnavailable(format string, args ...any) *Error {
	return newError(KindOfflineUnavailable, nil, format, args...)
}

// KindOf extracts the classified kind, defaulting to internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Classify wraps an arbitrary error into a classified one. Unclassified
// errors become internal with a generic message; the cause is kept for logs.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInternal, Message: "analysis failed", Err: err}
}
