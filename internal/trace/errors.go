package trace

import (
	"errors"
	"fmt"
)

// ErrConsumed is returned when a summary that was already handed to
// WriteToFile is written again.
var ErrConsumed = errors.New("summary already consumed by a previous write")

// ErrorCode categorizes summary errors.
type ErrorCode string

const (
	// ErrCodeIO indicates the destination could not be created, written, or read.
	ErrCodeIO ErrorCode = "IO"

	// ErrCodeEncode indicates the in-memory value violates an encoder invariant.
	ErrCodeEncode ErrorCode = "ENCODE"

	// ErrCodeDecode indicates persisted bytes do not match the summary layout.
	ErrCodeDecode ErrorCode = "DECODE"

	// ErrCodeInvalid indicates per-step fields disagree on the step count.
	ErrCodeInvalid ErrorCode = "INVALID"

	// ErrCodeConsumed indicates a second write of the same summary.
	ErrCodeConsumed ErrorCode = "CONSUMED"
)

// Error is the single error type returned by this package.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed ("write", "read", "encode", ...).
	Op string

	// Path is the file involved, if any.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsIOError reports whether err is a filesystem failure.
func IsIOError(err error) bool { return hasCode(err, ErrCodeIO) }

// IsEncodeError reports whether err is an encoding failure.
func IsEncodeError(err error) bool { return hasCode(err, ErrCodeEncode) }

// IsDecodeError reports whether err is a decoding failure.
func IsDecodeError(err error) bool { return hasCode(err, ErrCodeDecode) }

// IsInvalidError reports whether err is a step-count mismatch.
func IsInvalidError(err error) bool { return hasCode(err, ErrCodeInvalid) }

// LengthMismatchError describes a per-step field whose length disagrees with
// the memory trace.
type LengthMismatchError struct {
	Field string
	Got   int
	Want  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s has %d entries, want %d", e.Field, e.Got, e.Want)
}
