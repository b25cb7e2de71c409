// Package herr defines the HVML runtime's error taxonomy: a closed set of
// error kinds shared by every component (variant, document, vcm, interpreter,
// render) plus a wrapping error type that carries the kind, a message, and an
// optional cause for errors.Is/errors.As interop.
package herr

import "fmt"

// Kind is one of the runtime's closed set of error categories.
type Kind string

const (
	KindOOM                    Kind = "oom"
	KindInvalidValue           Kind = "invalid-value"
	KindDuplicated             Kind = "duplicated"
	KindArgumentMissed         Kind = "argument-missed"
	KindNotSupported           Kind = "not-supported"
	KindNotImplemented         Kind = "not-implemented"
	KindNotExists              Kind = "not-exists"
	KindNoData                 Kind = "no-data"
	KindBadStdCCall            Kind = "bad-stdc-call"
	KindTooSmallBuff           Kind = "too-small-buff"
	KindConnectionAborted      Kind = "connection-aborted"
	KindServerRefused          Kind = "server-refused"
	KindBadMessage             Kind = "bad-message"
	KindBadMsgPayload          Kind = "bad-msg-payload"
	KindAuthFailed             Kind = "auth-failed"
	KindWrongVersion           Kind = "wrong-version"
	KindFailedRead             Kind = "failed-read"
	KindFailedWrite            Kind = "failed-write"
	KindExecutorOOM            Kind = "executor-oom"
	KindExecutorBadArg         Kind = "executor-bad-arg"
	KindExecutorNoKeysSelected Kind = "executor-no-keys-selected"
	KindExecutorNotImplemented Kind = "executor-not-implemented"
)

// Error wraps a Kind with a human-readable message and optional cause.
// It is the only error type the runtime's own code constructs; external
// collaborators (fetcher, transport) may wrap arbitrary errors with it at
// the boundary.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, herr.New(herr.KindNoData, "")) style checks work without
// comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error, otherwise
// returns "" and false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if as(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// as is a tiny local copy of errors.As's unwrap loop, kept here to avoid an
// import cycle concern for callers that only need Kind extraction.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
