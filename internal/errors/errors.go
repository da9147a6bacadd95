package errors

import (
	stderrors "errors"
	"fmt"

	"bayesview/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap adds context to err. An existing AppError keeps its code; domain
// errors get the code of their kind.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error. A plain error becomes
// the cause of a message-less AppError, so its text is not repeated.
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:  code,
		Cause: err,
	}
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError, or the code matching
// a domain error kind, otherwise INTERNAL_ERROR
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case core.IsStructureError(err):
		return CodeStructureInvalid
	case core.IsDataError(err):
		return CodeDataInvalid
	}
	for _, m := range domainCodes {
		if stderrors.Is(err, m.kind) {
			return m.code
		}
	}
	if err == nil {
		return ""
	}
	return CodeInternalError
}

// ExitCode maps an error to a process exit status for the CLI
func ExitCode(err error) int {
	switch GetCode(err) {
	case "":
		return 0
	case CodeInvalidInput, CodeConfigInvalid:
		return 2
	case CodeStructureInvalid, CodeDataInvalid:
		return 3
	case CodeNotTrained, CodeUnsupportedRank, CodeEmptyLayout:
		return 4
	default:
		return 1
	}
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeStructureInvalid = "STRUCTURE_INVALID"
	CodeDataInvalid      = "DATA_INVALID"
	CodeNotTrained       = "NOT_TRAINED"
	CodeUnsupportedRank  = "UNSUPPORTED_RANK"
	CodeEmptyLayout      = "EMPTY_LAYOUT"
)

var domainCodes = []struct {
	kind error
	code string
}{
	{core.ErrNotTrained, CodeNotTrained},
	{core.ErrUnsupportedRank, CodeUnsupportedRank},
	{core.ErrEmptyLayout, CodeEmptyLayout},
	{core.ErrInvalidInput, CodeInvalidInput},
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: message,
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
