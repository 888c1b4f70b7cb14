package probe

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes probe failures.
type ErrorCode string

const (
	ErrCodeUnreadable ErrorCode = "UNREADABLE"
	ErrCodeFFprobe    ErrorCode = "FFPROBE"
	ErrCodeParse      ErrorCode = "PARSE"
)

// Error is returned when a file cannot be inspected. Callers are expected to
// degrade to "no stats" rather than treat it as fatal.
type Error struct {
	Code   ErrorCode
	Path   string
	Stderr string
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] probe %s", e.Code, e.Path)
	if e.Stderr != "" {
		msg += fmt.Sprintf(" (stderr=%q)", truncate(e.Stderr, 200))
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsFailure reports whether err is a probe failure (as opposed to cancellation).
func IsFailure(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
