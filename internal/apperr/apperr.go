// Package apperr defines the error kinds a conversion can fail with before a
// response is produced.
package apperr

import "errors"

// Kind classifies an internal conversion failure.
type Kind string

const (
	KindDecode        Kind = "DECODE"
	KindMissingSource Kind = "MISSING_SOURCE"
	KindTempFile      Kind = "TEMP_FILE"
	KindSpawn         Kind = "SPAWN"
	KindInterrupted   Kind = "INTERRUPTED"
	KindEmptyOutput   Kind = "EMPTY_OUTPUT"
	KindInvalidRegion Kind = "INVALID_REGION"
	KindUpload        Kind = "UPLOAD"
)

// Error is an internal conversion failure. Its text becomes the single message
// of a non-success response.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error.
func New(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
