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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Expansion errors
	ErrBasedirNotDir   ErrorCode = "BASEDIR_NOT_DIR"
	ErrTargetNotDir    ErrorCode = "TARGET_NOT_DIR"
	ErrTargetCreate    ErrorCode = "TARGET_CREATE"
	ErrStagingNotDir   ErrorCode = "STAGING_NOT_DIR"
	ErrStagingCreate   ErrorCode = "STAGING_CREATE"
	ErrHostAmbiguous   ErrorCode = "HOST_AMBIGUOUS"
	ErrPatternInvalid  ErrorCode = "PATTERN_INVALID"
	ErrExpansionAccess ErrorCode = "EXPANSION_ACCESS"

	// Item errors
	ErrOverwriteDenied ErrorCode = "OVERWRITE_DENIED"
	ErrDestinationDir  ErrorCode = "DESTINATION_IS_DIR"
	ErrRender          ErrorCode = "RENDER"
	ErrFileRead        ErrorCode = "FILE_READ"
	ErrFileWrite       ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate   ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate       ErrorCode = "DIR_CREATE"
)

// DtError represents a structured error with code and details
type DtError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DtError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DtError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DtError) Is(target error) bool {
	var targetErr *DtError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DtError with the given code and message
func New(code ErrorCode, message string) *DtError {
	return &DtError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DtError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DtError {
	return &DtError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DtError
func Wrap(err error, code ErrorCode, message string) *DtError {
	if err == nil {
		return nil
	}
	return &DtError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DtError {
	if err == nil {
		return nil
	}
	return &DtError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DtError) WithDetail(key string, value interface{}) *DtError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dtErr *DtError
	if errors.As(err, &dtErr) {
		return dtErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DtError
func GetErrorCode(err error) ErrorCode {
	var dtErr *DtError
	if errors.As(err, &dtErr) {
		return dtErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DtError
func GetErrorDetails(err error) map[string]interface{} {
	var dtErr *DtError
	if errors.As(err, &dtErr) {
		return dtErr.Details
	}
	return nil
}
