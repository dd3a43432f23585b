package errors

import (
	"github.com/mezonai/cryptocurrency/jsonx"
)

// NetworkErrorCode represents standardized error codes for the RPC surface
type NetworkErrorCode string

const (
	// General errors
	ErrCodeInternal NetworkErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidRequest   NetworkErrorCode = "invalid_request"
	ErrCodeInvalidPubKey    NetworkErrorCode = "invalid_pub_key"
	ErrCodeInvalidSignature NetworkErrorCode = "invalid_signature"
	ErrCodeInvalidPayload   NetworkErrorCode = "invalid_payload"

	// Business logic errors
	ErrCodeWalletNotFound    NetworkErrorCode = "wallet_not_found"
	ErrCodeExecutionRejected NetworkErrorCode = "execution_rejected"

	// System errors
	ErrCodeQueueFull   NetworkErrorCode = "queue_full"
	ErrCodeUnavailable NetworkErrorCode = "unavailable"
	ErrCodeRateLimited NetworkErrorCode = "rate_limited"
	ErrCodeNotExecuted NetworkErrorCode = "not_executed"
)

// NetworkError represents a standardized network error
type NetworkError struct {
	Code          NetworkErrorCode `json:"code"`
	Message       string           `json:"message"`
	ExecutionCode *ErrorCode       `json:"execution_code,omitempty"`
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	out, _ := jsonx.Marshal(e)
	return string(out)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgInvalidRequest   = "Request format is invalid"
	ErrMsgInvalidPubKey    = "Wallet public key is invalid"
	ErrMsgInvalidSignature = "Operation signature is invalid"
	ErrMsgInvalidPayload   = "Operation payload is invalid"
	ErrMsgWalletNotFound   = "Wallet not found"
	ErrMsgInternal         = "Server error, please try again"
	ErrMsgQueueFull        = "Node is busy, please try again"
	ErrMsgUnavailable      = "Node is shutting down"
	ErrMsgRateLimited      = "Too many requests, please slow down"
	ErrMsgNotExecuted      = "Operation was not executed before the deadline"
)

// NewError creates a new NetworkError and returns it as error interface
func NewError(code NetworkErrorCode, message string) error {
	return &NetworkError{
		Code:    code,
		Message: message,
	}
}

// FromExecution wraps an execution failure for RPC callers, keeping its numeric code.
func FromExecution(e *ExecutionError) *NetworkError {
	code := e.Code
	return &NetworkError{
		Code:          ErrCodeExecutionRejected,
		Message:       e.Message,
		ExecutionCode: &code,
	}
}
