package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentcar/rental-api/internal/api/handler"
	"github.com/rentcar/rental-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantName string
		wantMsg  string
		logged   bool
	}{
		{
			name:     "echo http error",
			err:      echo.NewHTTPError(http.StatusUnauthorized, "token expired"),
			wantCode: http.StatusUnauthorized,
			wantName: "UnauthorizedError",
			wantMsg:  "token expired",
		},
		{
			name:     "router not found",
			err:      echo.ErrNotFound,
			wantCode: http.StatusNotFound,
			wantName: "NotFoundError",
			wantMsg:  "Not Found",
		},
		{
			name:     "domain failure",
			err:      domain.InsufficientAccess(domain.RoleCustomer),
			wantCode: http.StatusForbidden,
			wantName: "InsufficientAccessError",
			wantMsg:  "Access forbidden!",
		},
		{
			name:     "wrapped domain failure",
			err:      errors.Join(errors.New("context"), domain.RecordNotFound("Car")),
			wantCode: http.StatusNotFound,
			wantName: "RecordNotFoundError",
			wantMsg:  "Car not found!",
		},
		{
			name:     "unexpected error",
			err:      errors.New("mongo: no reachable servers"),
			wantCode: http.StatusInternalServerError,
			wantName: "InternalServerError",
			wantMsg:  "internal server error",
			logged:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			e := echo.New()
			e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.New(&logs))

			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/cars", nil), rec)

			e.HTTPErrorHandler(tc.err, c)

			require.Equal(t, tc.wantCode, rec.Code)
			var resp handler.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantName, resp.Error.Name)
			assert.Equal(t, tc.wantMsg, resp.Error.Message)
			assert.NotContains(t, rec.Body.String(), "mongo")
			assert.Equal(t, tc.logged, logs.Len() > 0)
			assert.Equal(t, tc.wantCode, statusOf(tc.err), "metrics status must match the rendered one")
		})
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.String(http.StatusAccepted, "done"))

	e.HTTPErrorHandler(errors.New("late failure"), c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
