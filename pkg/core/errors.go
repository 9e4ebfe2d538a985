package core

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a failure raised while serving a request.
type ErrorType int

// Error type constants partition every failure a request can produce.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeProtocolParse indicates an input line that is not a JSON object.
	ErrorTypeProtocolParse
	// ErrorTypeUnknownMethod indicates an unrecognized RPC method.
	ErrorTypeUnknownMethod
	// ErrorTypeMissingParameter indicates a required parameter was absent.
	ErrorTypeMissingParameter
	// ErrorTypeMissingCredential indicates a signed call without key or secret.
	ErrorTypeMissingCredential
	// ErrorTypeRemote indicates a non-2xx response from the exchange.
	ErrorTypeRemote
	// ErrorTypeNetwork indicates a transport-level failure.
	ErrorTypeNetwork
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "UNKNOWN"
	}
	return errorTypeNames[t]
}

var errorTypeNames = [...]string{
	"UNKNOWN",
	"PROTOCOL_PARSE",
	"UNKNOWN_METHOD",
	"MISSING_PARAMETER",
	"MISSING_CREDENTIAL",
	"REMOTE",
	"NETWORK",
}

// Sentinel errors for common error conditions.
var (
	// ErrInvalidJSON is returned when an input line is not a JSON object.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrNoCredentials is returned when an authenticated operation has no key pair.
	ErrNoCredentials = errors.New("BINANCE_API_KEY and BINANCE_API_SECRET are required")
	// ErrNoAPIKey is returned when a signed request has no API key.
	ErrNoAPIKey = errors.New("signed request requires BINANCE_API_KEY")
	// ErrNoSecret is returned when signing is attempted without a secret.
	ErrNoSecret = errors.New("signing requires BINANCE_API_SECRET")
	// ErrParamsNotObject is returned when params is present but not an object.
	ErrParamsNotObject = errors.New("params must be an object")
)

// Error is the structured failure returned by every operation.
type Error struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// Code is a stable machine-readable identifier. For remote errors it
	// carries the exchange's own numeric code when the body had one.
	Code string `json:"code,omitempty"`
	// Status is the HTTP status code of a remote error.
	Status int `json:"status,omitempty"`
	// Message is the human-readable description.
	Message string `json:"message"`
	// Payload is the decoded remote error body.
	Payload any `json:"payload,omitempty"`

	err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Type == ErrorTypeRemote {
		return fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// WithCode sets the error code and returns the error for chaining.
func (e *Error) WithCode(code ErrorCode) *Error {
	e.Code = string(code)
	return e
}

// NewError creates an Error of the given type.
func NewError(errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
	}
}

// WrapError creates an Error of the given type that unwraps to cause.
func WrapError(errorType ErrorType, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: cause.Error(),
		err:     cause,
	}
}

// NewMissingParameterError reports required parameters that were absent.
func NewMissingParameterError(message string) *Error {
	return NewError(ErrorTypeMissingParameter, message).WithCode(ErrCodeMissingParameter)
}

// NewMissingCredentialError reports an absent key or secret.
func NewMissingCredentialError(cause error) *Error {
	code := ErrCodeNoCredentials
	switch {
	case errors.Is(cause, ErrNoAPIKey):
		code = ErrCodeNoAPIKey
	case errors.Is(cause, ErrNoSecret):
		code = ErrCodeNoSecret
	}
	return WrapError(ErrorTypeMissingCredential, cause).WithCode(code)
}

// NewUnknownMethodError reports a method outside the supported set.
func NewUnknownMethodError(method string) *Error {
	return NewError(ErrorTypeUnknownMethod, "unknown method: "+method).WithCode(ErrCodeUnknownMethod)
}

// NewRemoteError reports a non-2xx response with its decoded body.
func NewRemoteError(status int, message string, payload any) *Error {
	return &Error{
		Type:    ErrorTypeRemote,
		Code:    string(ErrCodeRemote),
		Status:  status,
		Message: message,
		Payload: payload,
	}
}

// NewNetworkError reports a transport failure.
func NewNetworkError(cause error) *Error {
	return WrapError(ErrorTypeNetwork, cause).WithCode(ErrCodeNetwork)
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRemoteError returns true if the exchange answered with a non-2xx status.
func IsRemoteError(err error) bool {
	return TypeOf(err) == ErrorTypeRemote
}

// IsNetworkError returns true if the error is a transport failure.
func IsNetworkError(err error) bool {
	return TypeOf(err) == ErrorTypeNetwork
}

// IsMissingParameter returns true if a required parameter was absent.
func IsMissingParameter(err error) bool {
	return TypeOf(err) == ErrorTypeMissingParameter
}

// IsMissingCredential returns true if a key or secret was absent.
func IsMissingCredential(err error) bool {
	return TypeOf(err) == ErrorTypeMissingCredential
}
