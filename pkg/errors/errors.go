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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrPermission     ErrorCode = "PERMISSION"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration store errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"
	ErrConfigSave  ErrorCode = "CONFIG_SAVE"

	// Module registration errors
	ErrModuleNotFound ErrorCode = "MODULE_NOT_FOUND"
	ErrModuleInvalid  ErrorCode = "MODULE_INVALID"

	// Schema errors
	ErrSchemaInvalid ErrorCode = "SCHEMA_INVALID"
	ErrSchemaCompile ErrorCode = "SCHEMA_COMPILE"

	// Environment errors
	ErrEnvNotFound  ErrorCode = "ENV_NOT_FOUND"
	ErrEnvInvalid   ErrorCode = "ENV_INVALID"
	ErrEnvProtected ErrorCode = "ENV_PROTECTED"

	// Backup/restore errors
	ErrBackupCreate   ErrorCode = "BACKUP_CREATE"
	ErrBackupNotFound ErrorCode = "BACKUP_NOT_FOUND"
	ErrRestoreFailed  ErrorCode = "RESTORE_FAILED"

	// Import/export errors
	ErrExportFailed  ErrorCode = "EXPORT_FAILED"
	ErrImportFailed  ErrorCode = "IMPORT_FAILED"
	ErrFormatUnknown ErrorCode = "FORMAT_UNKNOWN"

	// Hot-reload errors
	ErrWatchFailed   ErrorCode = "WATCH_FAILED"
	ErrWatchDisabled ErrorCode = "WATCH_DISABLED"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileCreate   ErrorCode = "FILE_CREATE"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// CoreError represents a structured error with code and details
type CoreError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CoreError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CoreError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CoreError) Is(target error) bool {
	var targetErr *CoreError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CoreError with the given code and message
func New(code ErrorCode, message string) *CoreError {
	return &CoreError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CoreError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CoreError {
	return &CoreError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CoreError
func Wrap(err error, code ErrorCode, message string) *CoreError {
	if err == nil {
		return nil
	}
	return &CoreError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CoreError {
	if err == nil {
		return nil
	}
	return &CoreError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CoreError) WithDetail(key string, value interface{}) *CoreError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *CoreError) WithDetails(details map[string]interface{}) *CoreError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CoreError
func GetErrorCode(err error) ErrorCode {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a CoreError
func GetErrorDetails(err error) map[string]interface{} {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Details
	}
	return nil
}
