package http

import (
	"encoding/json"
	"net/http"

	"github.com/threatdesk/threatdesk/kit/platform/errors"
	"go.uber.org/zap"
)

// API provides the shared response and error encoding used by every
// HTTP handler in the service.
type API struct {
	logger     *zap.Logger
	errHandler errors.HTTPErrorHandler
}

// APIOptFn configures an API.
type APIOptFn func(*API)

// WithLog sets the logger errors are reported to.
func WithLog(logger *zap.Logger) APIOptFn {
	return func(a *API) {
		a.logger = logger
	}
}

// NewAPI creates an API with the given options.
func NewAPI(opts ...APIOptFn) *API {
	a := &API{
		errHandler: ErrorHandler(0),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Respond writes v as a JSON body with the given status code.
func (a *API) Respond(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	if v == nil {
		w.WriteHeader(code)
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		a.Err(w, r, &errors.Error{
			Code: errors.EInternal,
			Msg:  "failed to encode response body",
			Err:  err,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(b); err != nil && a.logger != nil {
		a.logger.Error("failed to write response body", zap.Error(err))
	}
}

// Err logs the failure and writes it with the configured error handler.
// Validation and not-found outcomes are routine and only logged at
// debug; everything else is an operator problem.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	if a.logger != nil {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}
		switch errors.ErrorCode(err) {
		case errors.EInvalid, errors.ENotFound:
			a.logger.Debug("api error", fields...)
		default:
			a.logger.Error("api error", fields...)
		}
	}

	a.errHandler.HandleHTTPError(r.Context(), err, w)
}
