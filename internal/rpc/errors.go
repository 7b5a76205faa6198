package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellar/go/support/log"
)

// JSON-RPC error codes surfaced by the dispatcher.
const (
	InvalidRequestCode      = -32600
	InvalidParamsCode       = -32602
	InternalErrorCode       = -32603
	TransactionNotFoundCode = -32001
	BadRequestCode          = -32002
)

// Error is the dispatcher error type: it carries the JSON-RPC code and the
// operator-facing message, and optionally wraps the original error.
type Error struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	// Err is an optional field that can be used to wrap the original error to pass it forward.
	Err error `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReportErrorFunc is a function type used to report unexpected errors.
type ReportErrorFunc func(ctx context.Context, err error, msg string)

var defaultReportErrorFunc ReportErrorFunc = func(ctx context.Context, err error, msg string) {
	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	log.Ctx(ctx).WithStack(err).Errorf("%+v", err)
}

// SetDefaultReportErrorFunc sets a new defaultReportErrorFunc to report unexpected errors.
func SetDefaultReportErrorFunc(fn ReportErrorFunc) {
	defaultReportErrorFunc = fn
}

// InvalidParams flags a business-rule or schema violation.
func InvalidParams(msg string) *Error {
	return &Error{Code: InvalidParamsCode, Message: msg}
}

// InvalidRequest flags an action/status/protocol mismatch.
func InvalidRequest(msg string) *Error {
	return &Error{Code: InvalidRequestCode, Message: msg}
}

// BadRequest flags an amount parsing or precision violation.
func BadRequest(msg string) *Error {
	return &Error{Code: BadRequestCode, Message: msg}
}

// TransactionNotFound flags a lookup miss for the given transaction id.
func TransactionNotFound(transactionID string) *Error {
	return &Error{
		Code:    TransactionNotFoundCode,
		Message: fmt.Sprintf("transaction with id[%s] is not found", transactionID),
	}
}

// InternalError wraps persistence/IO failures. The raw driver error is
// reported through the configured report function and never leaks to the
// operator.
func InternalError(ctx context.Context, msg string, originalErr error) *Error {
	if msg == "" {
		msg = "An internal error occurred while processing this request."
	}
	defaultReportErrorFunc(ctx, originalErr, msg)
	return &Error{Code: InternalErrorCode, Message: msg, Err: originalErr}
}

// AsError converts any error into a dispatcher *Error, defaulting to an
// internal error for unexpected types.
func AsError(ctx context.Context, err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return InternalError(ctx, "", err)
}
