package ports

import (
	"context"

	"github.com/rentcar/rental-api/internal/core/domain"
)

// UserRepository is the user directory. Lookups return (nil, nil) when no
// user matches; errors are reserved for storage faults.
type UserRepository interface {
	// FindByEmail looks a user up by email. With includeRole the user's Role
	// is joined in, limited to its id and name.
	FindByEmail(ctx context.Context, email string, includeRole bool) (*domain.User, error)
	FindByPK(ctx context.Context, id uint) (*domain.User, error)
	// Create persists a new user and returns the stored record. A unique
	// email violation is reported as domain.ErrDuplicateKey.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// RoleRepository is the role directory. Lookups return (nil, nil) on a miss.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	FindByPK(ctx context.Context, id uint) (*domain.Role, error)
}
