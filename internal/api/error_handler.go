package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rentcar/rental-api/internal/api/handler"
	"github.com/rentcar/rental-api/internal/core/domain"
)

// NewHTTPErrorHandler returns the echo.HTTPErrorHandler that receives every
// error a handler or middleware did not render itself:
//   - echo.HTTPError (bind failures, router 404/405, auth middleware 401)
//     keeps its code and message.
//   - Domain failures (e.g. RBAC's InsufficientAccess) use their mapped status.
//   - Anything else is logged and answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to write error response")
		}
	}
}

// statusOf returns the status NewHTTPErrorHandler answers err with.
func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if de, ok := domain.AsError(err); ok {
		return handler.StatusFor(de.Kind)
	}
	return http.StatusInternalServerError
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.NewStatusErrorResponse(he.Code, fmt.Sprintf("%v", he.Message))
	}

	if de, ok := domain.AsError(err); ok {
		return handler.StatusFor(de.Kind), handler.NewErrorResponse(de)
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError,
		handler.NewStatusErrorResponse(http.StatusInternalServerError, "internal server error")
}
