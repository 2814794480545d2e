package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_ObservesRouteTemplate(t *testing.T) {
	HTTPRequestDuration.Reset()

	e := echo.New()
	e.Use(Middleware(nil))
	e.GET("/v1/cars/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/v1/cars/1", "/v1/cars/2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.CollectAndCount(HTTPRequestDuration); got != 1 {
		t.Fatalf("expected one series for the route template, got %d", got)
	}
}

func TestMiddleware_RecordsHTTPErrorCode(t *testing.T) {
	HTTPRequestDuration.Reset()

	e := echo.New()
	e.Use(Middleware(nil))
	e.GET("/v1/auth/whoami", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/whoami", nil))

	if got := testutil.CollectAndCount(HTTPRequestDuration); got != 1 {
		t.Fatalf("expected one series, got %d", got)
	}
	if !HTTPRequestDuration.DeleteLabelValues(http.MethodGet, "/v1/auth/whoami", "401") {
		t.Fatal("expected the request to be recorded with code 401")
	}
}

func TestMiddleware_UnrenderedErrorCodes(t *testing.T) {
	errForbidden := errors.New("forbidden")
	statusOf := func(err error) int {
		if errors.Is(err, errForbidden) {
			return http.StatusForbidden
		}
		return DefaultStatusOf(err)
	}

	tests := []struct {
		name     string
		statusOf func(error) int
		err      error
		wantCode string
	}{
		{"unknown error defaults to 500", nil, errors.New("boom"), "500"},
		{"mapped error uses mapper", statusOf, errForbidden, "403"},
		{"mapper falls back for unknown errors", statusOf, errors.New("boom"), "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			HTTPRequestDuration.Reset()

			e := echo.New()
			e.Use(Middleware(tt.statusOf))
			e.GET("/v1/cars", func(c echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cars", nil))

			if !HTTPRequestDuration.DeleteLabelValues(http.MethodGet, "/v1/cars", tt.wantCode) {
				t.Fatalf("expected the request to be recorded with code %s", tt.wantCode)
			}
		})
	}
}

func TestMiddleware_CommittedResponseKeepsWrittenStatus(t *testing.T) {
	HTTPRequestDuration.Reset()

	e := echo.New()
	e.Use(Middleware(func(error) int { return http.StatusTeapot }))
	e.GET("/v1/cars", func(c echo.Context) error {
		_ = c.NoContent(http.StatusUnprocessableEntity)
		return errors.New("already rendered")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cars", nil))

	if !HTTPRequestDuration.DeleteLabelValues(http.MethodGet, "/v1/cars", "422") {
		t.Fatal("expected the written status 422 to be recorded")
	}
}
