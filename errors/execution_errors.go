package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode is the stable numeric code of an execution failure.
type ErrorCode uint8

const (
	CodeWalletAlreadyExists        ErrorCode = 0
	CodeSenderNotFound             ErrorCode = 1
	CodeReceiverNotFound           ErrorCode = 2
	CodeInsufficientCurrencyAmount ErrorCode = 3
	CodeSenderSameAsReceiver       ErrorCode = 4
)

var codeNames = map[ErrorCode]string{
	CodeWalletAlreadyExists:        "WalletAlreadyExists",
	CodeSenderNotFound:             "SenderNotFound",
	CodeReceiverNotFound:           "ReceiverNotFound",
	CodeInsufficientCurrencyAmount: "InsufficientCurrencyAmount",
	CodeSenderSameAsReceiver:       "SenderSameAsReceiver",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// ExecutionError is a business-rule rejection of an operation. The executor aborts the
// atomic unit before returning one, so it never comes with a state change.
type ExecutionError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed: %s (code %d): %s", e.Code, uint8(e.Code), e.Message)
}

// Is matches any ExecutionError carrying the same code.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	return ok && t.Code == e.Code
}

var (
	ErrWalletAlreadyExists        = &ExecutionError{Code: CodeWalletAlreadyExists, Message: "Wallet already exists"}
	ErrSenderNotFound             = &ExecutionError{Code: CodeSenderNotFound, Message: "Sender doesn't exist"}
	ErrReceiverNotFound           = &ExecutionError{Code: CodeReceiverNotFound, Message: "Receiver doesn't exist"}
	ErrInsufficientCurrencyAmount = &ExecutionError{Code: CodeInsufficientCurrencyAmount, Message: "Insufficient currency amount"}
	ErrSenderSameAsReceiver       = &ExecutionError{Code: CodeSenderSameAsReceiver, Message: "Sender same as receiver"}
)

// ErrWalletNotFound is the read-side miss. It is not an execution failure.
var ErrWalletNotFound = stderrors.New(ErrMsgWalletNotFound)

// NewExecutionError builds a failure for code with its canonical message.
func NewExecutionError(code ErrorCode) *ExecutionError {
	for _, e := range []*ExecutionError{
		ErrWalletAlreadyExists,
		ErrSenderNotFound,
		ErrReceiverNotFound,
		ErrInsufficientCurrencyAmount,
		ErrSenderSameAsReceiver,
	} {
		if e.Code == code {
			return &ExecutionError{Code: code, Message: e.Message}
		}
	}
	return &ExecutionError{Code: code, Message: "Unknown execution failure"}
}

// AsExecutionError finds the execution failure carried anywhere in err's chain.
func AsExecutionError(err error) (*ExecutionError, bool) {
	var execErr *ExecutionError
	if stderrors.As(err, &execErr) {
		return execErr, true
	}
	return nil, false
}

func CodeOf(err error) (ErrorCode, bool) {
	if execErr, ok := AsExecutionError(err); ok {
		return execErr.Code, true
	}
	return 0, false
}

func IsExecutionError(err error) bool {
	_, ok := CodeOf(err)
	return ok
}

func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrWalletNotFound)
}
