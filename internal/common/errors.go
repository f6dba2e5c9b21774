// Package common holds the error taxonomy and logger construction shared by
// the workflow, the pipeline client and the CLI.
package common

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindServer     Kind = "server_error"
	KindMalformed  Kind = "malformed_response"
	KindValidation Kind = "validation"
	KindCancelled  Kind = "cancelled"
)

// Error is the single error type surfaced by a workflow instance.
type Error struct {
	Kind    Kind
	Stage   string // pipeline stage, empty for client-side checks
	Status  int    // HTTP status for KindServer, 0 for transport failures
	Message string
	Err     error
}

func (e *Error) Error() string {
	var prefix string
	switch {
	case e.Stage != "" && e.Kind == KindServer && e.Status != 0:
		prefix = fmt.Sprintf("%s: %s (status %d)", e.Stage, e.Kind, e.Status)
	case e.Stage != "":
		prefix = fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	default:
		prefix = string(e.Kind)
	}
	if e.Message != "" {
		prefix += ": " + e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return prefix
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a client-side invariant violated before dispatch.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Timeout reports a stage call that exceeded its bound.
func Timeout(stage string, err error) error {
	return &Error{Kind: KindTimeout, Stage: stage, Message: "request exceeded stage deadline", Err: err}
}

// Cancelled reports a user- or system-aborted call.
func Cancelled(stage string, err error) error {
	return &Error{Kind: KindCancelled, Stage: stage, Message: "request cancelled", Err: err}
}

// ServerError reports a non-2xx response or a transport failure (status 0).
func ServerError(stage string, status int, err error) error {
	return &Error{Kind: KindServer, Stage: stage, Status: status, Err: err}
}

// Malformed reports an unparseable or unrecognized response body.
func Malformed(stage string, format string, args ...any) error {
	return &Error{Kind: KindMalformed, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRecoverable reports whether the failed call may be re-dispatched with the
// same payload.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindServer, KindMalformed:
		return true
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
