package errs

import (
	"errors"
)

// Code is a check failure code.
type Code string

const (
	Unreachable      Code = "unreachable"
	ReadinessTimeout Code = "readiness_timeout"
	AssertionFailed  Code = "assertion_failed"
	LookupFailed     Code = "lookup_failed"
	Unavailable      Code = "unavailable"
	Canceled         Code = "canceled"
	InvalidArgument  Code = "invalid_argument"
	Internal         Code = "internal"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitConfig  = 2
	ExitAborted = 130
)

// Error is a coded check error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Code == "" {
			return Internal
		}
		return coded.Code
	}
	return Internal
}

// MessageOf returns the operator-facing message without the cause chain.
func MessageOf(err error) string {
	if err == nil {
		return string(Internal)
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return "internal error"
}

// ExitCode maps an error to a process exit code. A nil error is success.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch CodeOf(err) {
	case InvalidArgument:
		return ExitConfig
	case Canceled:
		return ExitAborted
	default:
		return ExitFailed
	}
}

// CauseOf returns the cause wrapped by the outermost coded error, or nil.
func CauseOf(err error) error {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Err
	}
	return nil
}
