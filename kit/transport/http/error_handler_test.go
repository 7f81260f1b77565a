package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threatdesk/threatdesk/kit/platform/errors"
)

func TestHandleHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantError   string
		wantDetails map[string]interface{}
	}{
		{
			name: "invalid",
			err: &errors.Error{
				Code:    errors.EInvalid,
				Msg:     "limit must be a positive integer",
				Details: map[string]interface{}{"limit": -1},
			},
			wantStatus:  http.StatusBadRequest,
			wantCode:    WireCodeWrongParameters,
			wantError:   "limit must be a positive integer",
			wantDetails: map[string]interface{}{"limit": float64(-1)},
		},
		{
			name: "not found",
			err: &errors.Error{
				Code:    errors.ENotFound,
				Msg:     `indicator "ind-9" not found`,
				Details: map[string]interface{}{"id": "ind-9"},
			},
			wantStatus:  http.StatusNotFound,
			wantCode:    WireCodeNotFound,
			wantError:   `indicator "ind-9" not found`,
			wantDetails: map[string]interface{}{"id": "ind-9"},
		},
		{
			name:       "unavailable",
			err:        &errors.Error{Code: errors.EUnavailable, Msg: "store is offline"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   WireCodeUnavailable,
			wantError:  "store is offline",
		},
		{
			name:       "internal hides the message",
			err:        &errors.Error{Code: errors.EInternal, Msg: "sqlite file corrupted at page 42"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   WireCodeInternal,
			wantError:  internalErrorMessage,
		},
		{
			name:       "unclassified errors become internal",
			err:        stderrors.New("driver: bad connection"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   WireCodeInternal,
			wantError:  internalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorHandler(0).HandleHTTPError(context.Background(), tt.err, w)

			require.Equal(t, tt.wantStatus, w.Code)
			require.Equal(t, errors.ErrorCode(tt.err), w.Header().Get(PlatformErrorCodeHeader))

			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tt.wantCode, body.Code)
			require.Equal(t, tt.wantError, body.Error)
			require.Equal(t, tt.wantDetails, body.Details)
		})
	}
}

func TestHandleHTTPErrorNilErr(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	ErrorHandler(0).HandleHTTPError(context.Background(), nil, w)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Body.Bytes())
}
