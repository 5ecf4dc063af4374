// Package apperr classifies pipeline failures into the small set of kinds
// the HTTP boundary needs to map onto statuses. It is a tagged variant, not
// an error hierarchy: wrap causes with eris as usual and attach a kind at
// the point where the classification is known.
package apperr

import (
	"errors"
	"net/http"
)

// Kind tags an error with how the boundary should treat it.
type Kind int

const (
	// KindUnclassified is any failure the pipeline did not anticipate.
	KindUnclassified Kind = iota
	// KindValidation covers caller-fixable problems: a bad identifier,
	// missing credential configuration, or unparsable model output.
	KindValidation
	// KindUpstreamUnavailable covers the completion service being
	// unreachable or rejecting the request.
	KindUpstreamUnavailable
)

// Error carries a kind, a human-readable message, and an HTTP status hint.
type Error struct {
	Kind       Kind
	Message    string
	StatusHint int
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation creates a caller-fixable error.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg, StatusHint: http.StatusBadRequest}
}

// ValidationWrap creates a caller-fixable error with an underlying cause.
func ValidationWrap(err error, msg string) error {
	return &Error{Kind: KindValidation, Message: msg, StatusHint: http.StatusBadRequest, cause: err}
}

// Upstream creates an upstream-unavailable error with an underlying cause.
func Upstream(err error, msg string) error {
	return &Error{Kind: KindUpstreamUnavailable, Message: msg, StatusHint: http.StatusServiceUnavailable, cause: err}
}

// KindOf walks the wrapped chain and returns the first tagged kind,
// or KindUnclassified when nothing in the chain is tagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// StatusOf returns the HTTP status hint for err, 500 when untagged.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusHint
	}
	return http.StatusInternalServerError
}

// MessageOf returns the tagged message for err, or the empty string when
// untagged. The boundary substitutes its own generic text in that case.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
