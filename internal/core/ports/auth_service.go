package ports

import (
	"context"

	"github.com/rentcar/rental-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Image    *string
}

// TokenResult is returned by successful login and registration.
type TokenResult struct {
	AccessToken string
}

type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*TokenResult, error)
	Register(ctx context.Context, input RegisterInput) (*TokenResult, error)
	CurrentUser(ctx context.Context, id uint) (*domain.User, error)
}
