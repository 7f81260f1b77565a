package errors

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Error codes this service can produce. The codes target automated
// handlers so that recovery can occur; everything else on the error is
// for operators.
const (
	EInternal    = "internal error"
	ENotFound    = "not found"
	EInvalid     = "invalid" // validation failed
	EUnavailable = "unavailable"
)

// Error is the platform error carried between the query layer and the
// transport.
//
// Code targets automated handlers. Msg helps the operator diagnose the
// problem. Op and Err chain errors together in a logical stack trace.
// Details carries structured context (the offending field, the missing
// id) that the transport surfaces to clients.
//
// To create a simple error,
//
//	&Error{
//	    Code: ENotFound,
//	}
//
// To show where the error happens, add Op.
//
//	&Error{
//	    Code: ENotFound,
//	    Op:   "threats.FindIndicatorByID",
//	}
//
// To show an error with an unpredictable value, add the value in Msg.
//
//	&Error{
//	    Code: EInvalid,
//	    Msg:  fmt.Sprintf("indicator type %q is not valid", t),
//	}
//
// To show an error wrapped with another error.
//
//	&Error{
//	    Code: EInternal,
//	    Err:  err,
//	}
type Error struct {
	Code    string
	Msg     string
	Op      string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface by writing out the recursive
// messages.
func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		var b strings.Builder
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
		return b.String()
	} else if e.Msg != "" {
		return e.Msg
	} else if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("<%s>", e.Code)
}

// Unwrap exposes the wrapped error to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the root error, if available; otherwise
// returns EInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return EInternal
	}

	if e == nil {
		return ""
	}

	if e.Code != "" {
		return e.Code
	}

	if e.Err != nil {
		return ErrorCode(e.Err)
	}

	return EInternal
}

// ErrorOp returns the op of the error, if available; otherwise returns
// an empty string.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return ""
	}

	if e == nil {
		return ""
	}

	if e.Op != "" {
		return e.Op
	}

	if e.Err != nil {
		return ErrorOp(e.Err)
	}

	return ""
}

// ErrorMessage returns the human-readable message of the error, if
// available. Otherwise returns a generic error message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return "An internal error has occurred."
	}

	if e == nil {
		return ""
	}

	if e.Msg != "" {
		return e.Msg
	}

	if e.Err != nil {
		return ErrorMessage(e.Err)
	}

	return "An internal error has occurred."
}

// ErrorDetails returns the structured details of the outermost error
// carrying any, or nil.
func ErrorDetails(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok || e == nil {
		return nil
	}

	if len(e.Details) > 0 {
		return e.Details
	}

	if e.Err != nil {
		return ErrorDetails(e.Err)
	}

	return nil
}

// HTTPErrorHandler is the interface to handle an http error.
type HTTPErrorHandler interface {
	HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter)
}
