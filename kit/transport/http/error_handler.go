package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/threatdesk/threatdesk/kit/platform/errors"
)

// PlatformErrorCodeHeader carries the platform error code of a failed
// request so automated clients don't need to parse the body.
const PlatformErrorCodeHeader = "X-Platform-Error-Code"

// Wire error codes. These are the machine-readable values in the
// response body, distinct from the internal platform codes.
const (
	WireCodeWrongParameters = "WRONG_PARAMETERS"
	WireCodeNotFound        = "NOT_FOUND"
	WireCodeUnavailable     = "UNAVAILABLE"
	WireCodeInternal        = "INTERNAL_ERROR"
)

// internalErrorMessage is the fixed body message for unclassified
// failures. Internal detail never leaks to clients.
const internalErrorMessage = "an internal error has occurred"

// ErrorHandler is the error handler in http package.
type ErrorHandler int

// ErrorBody is the uniform error response shape.
type ErrorBody struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HandleHTTPError encodes err with the appropriate status code and the
// uniform {error, code, details} body, and sets the
// X-Platform-Error-Code header on the response.
func (h ErrorHandler) HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		return
	}

	code := errors.ErrorCode(err)
	httpCode, ok := statusCodePlatformError[code]
	if !ok {
		httpCode = http.StatusInternalServerError
	}
	w.Header().Set(PlatformErrorCodeHeader, code)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpCode)

	body := ErrorBody{
		Error: errors.ErrorMessage(err),
		Code:  wireCodePlatformError[code],
	}
	if body.Code == "" {
		body.Code = WireCodeInternal
	}
	if body.Code == WireCodeInternal {
		// whatever happened internally stays internal
		body.Error = internalErrorMessage
	} else {
		body.Details = errors.ErrorDetails(err)
	}

	b, _ := json.Marshal(body)
	_, _ = w.Write(b)
}

// statusCodePlatformError maps platform codes to HTTP statuses.
var statusCodePlatformError = map[string]int{
	errors.EInternal:    http.StatusInternalServerError,
	errors.EInvalid:     http.StatusBadRequest,
	errors.ENotFound:    http.StatusNotFound,
	errors.EUnavailable: http.StatusServiceUnavailable,
}

// wireCodePlatformError maps platform codes to the wire codes clients
// branch on.
var wireCodePlatformError = map[string]string{
	errors.EInternal:    WireCodeInternal,
	errors.EInvalid:     WireCodeWrongParameters,
	errors.ENotFound:    WireCodeNotFound,
	errors.EUnavailable: WireCodeUnavailable,
}
