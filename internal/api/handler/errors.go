package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rentcar/rental-api/internal/core/domain"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the error envelope: {"error": {"name", "message", "details"}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// StatusFor maps a domain failure kind to its HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindEmailNotRegistered, domain.KindRecordNotFound:
		return http.StatusNotFound
	case domain.KindWrongPassword:
		return http.StatusUnauthorized
	case domain.KindEmailAlreadyTaken, domain.KindValidation, domain.KindCarAlreadyRented:
		return http.StatusUnprocessableEntity
	case domain.KindInsufficientAccess:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the envelope for a domain failure.
func NewErrorResponse(de *domain.Error) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Name: de.Name, Message: de.Message, Details: de.Details}}
}

// NewStatusErrorResponse builds the envelope for a plain status, naming the
// error after the status text, e.g. 401 -> "UnauthorizedError" and
// 500 -> "InternalServerError".
func NewStatusErrorResponse(code int, message string) ErrorResponse {
	name := strings.ReplaceAll(http.StatusText(code), " ", "")
	if !strings.HasSuffix(name, "Error") {
		name += "Error"
	}
	return ErrorResponse{Error: ErrorBody{Name: name, Message: message}}
}

func respondDomainError(c echo.Context, de *domain.Error) error {
	return c.JSON(StatusFor(de.Kind), NewErrorResponse(de))
}

func respondBadPayload(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, NewStatusErrorResponse(http.StatusBadRequest, "invalid payload"))
}
