package core

import "errors"

// ErrorCode represents a stable, machine-readable failure identifier.
type ErrorCode string

const (
	ErrCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrCodeUnknownMethod    ErrorCode = "UNKNOWN_METHOD"
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrCodeInvalidConfig    ErrorCode = "INVALID_CONFIG"

	// Authentication errors
	ErrCodeNoCredentials ErrorCode = "NO_CREDENTIALS"
	ErrCodeNoAPIKey      ErrorCode = "NO_API_KEY"
	ErrCodeNoSecret      ErrorCode = "NO_SECRET"

	// Transport errors
	ErrCodeRemote  ErrorCode = "REMOTE_ERROR"
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	ErrCodeDecode  ErrorCode = "DECODE_ERROR"
)

// IsErrorCode checks if the error matches the specified error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return ErrorCode(e.Code) == code
	}
	return false
}
