package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rentcar/rental-api/internal/api/metrics"
	"github.com/rentcar/rental-api/internal/api/middleware"
	"github.com/rentcar/rental-api/internal/core/domain"
	"github.com/rentcar/rental-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// bcrypt rejects inputs longer than this many bytes. Validator's max counts runes.
const maxPasswordBytes = 72

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Name     string  `json:"name"`
	Image    *string `json:"image" validate:"omitempty,url"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Login authenticates a user and returns a signed access token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest   true  "Login credentials"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return respondBadPayload(c)
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return respondDomainError(c, domain.ValidationError(err.Error()))
	}

	result, err := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		de, ok := domain.AsError(err)
		if !ok {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
			return err
		}
		switch de.Kind {
		case domain.KindEmailNotRegistered:
			metrics.LoginAttemptsTotal.WithLabelValues("email_not_registered").Inc()
		case domain.KindWrongPassword:
			metrics.LoginAttemptsTotal.WithLabelValues("wrong_password").Inc()
		default:
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return respondDomainError(c, de)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, tokenResponse{AccessToken: result.AccessToken})
}

// Register creates a CUSTOMER account and returns a signed access token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  tokenResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return respondBadPayload(c)
	}
	if err := c.Validate(&req); err != nil {
		return respondDomainError(c, domain.ValidationError(err.Error()))
	}
	if len(req.Password) > maxPasswordBytes {
		return respondDomainError(c, domain.ValidationError(
			fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)))
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Image:    req.Image,
	})
	if err != nil {
		if de, ok := domain.AsError(err); ok {
			return respondDomainError(c, de)
		}
		return err
	}

	metrics.UsersRegisteredTotal.Inc()
	return c.JSON(http.StatusCreated, tokenResponse{AccessToken: result.AccessToken})
}

// WhoAmI returns the authenticated user with its role.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/whoami [get]
func (h *AuthHandler) WhoAmI(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), identity.ID)
	if err != nil {
		if de, ok := domain.AsError(err); ok {
			return respondDomainError(c, de)
		}
		return err
	}

	return c.JSON(http.StatusOK, user)
}
