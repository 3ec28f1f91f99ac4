package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors, fatal at startup
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Rule errors
	ErrPatternInvalid ErrorCode = "PATTERN_INVALID"
	ErrRuleInvalid    ErrorCode = "RULE_INVALID"
	ErrProviderLoad   ErrorCode = "PROVIDER_LOAD"

	// Per-file pipeline errors
	ErrPlaceholder   ErrorCode = "PLACEHOLDER"
	ErrActionExecute ErrorCode = "ACTION_EXECUTE"
	ErrValidation    ErrorCode = "VALIDATION"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"

	// External collaborators
	ErrCommand ErrorCode = "COMMAND"
	ErrRemote  ErrorCode = "REMOTE"
)

// HomebinError represents a structured error with code and details
type HomebinError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *HomebinError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *HomebinError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a HomebinError with the same code.
func (e *HomebinError) Is(target error) bool {
	var targetErr *HomebinError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new HomebinError with the given code and message
func New(code ErrorCode, message string) *HomebinError {
	return &HomebinError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new HomebinError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *HomebinError {
	return &HomebinError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a HomebinError. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &HomebinError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message. A nil err yields nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &HomebinError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *HomebinError) WithDetail(key string, value interface{}) *HomebinError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code anywhere in its chain
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var hbErr *HomebinError
		if !errors.As(err, &hbErr) {
			return false
		}
		if hbErr.Code == code {
			return true
		}
		err = hbErr.Wrapped
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if not a HomebinError
func GetErrorCode(err error) ErrorCode {
	var hbErr *HomebinError
	if errors.As(err, &hbErr) {
		return hbErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a HomebinError
func GetErrorDetails(err error) map[string]interface{} {
	var hbErr *HomebinError
	if errors.As(err, &hbErr) {
		return hbErr.Details
	}
	return nil
}
