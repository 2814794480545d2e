package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rentcar/rental-api/internal/core/domain"
	"github.com/rentcar/rental-api/internal/core/ports"
)

// PasswordCost is the bcrypt work factor used for new passwords.
const PasswordCost = 10

// DefaultRole is assigned to every self-registered user.
const DefaultRole = domain.RoleCustomer

// AuthService implements login, registration and current-user lookup.
type AuthService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	logger zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		roles:  roles,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate checks the credentials and returns a signed access token.
// Storage and signing errors are returned unchanged.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*ports.TokenResult, error) {
	user, err := s.users.FindByEmail(ctx, email, true)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.Info().Str("email", email).Msg("login rejected: email not registered")
		return nil, domain.EmailNotRegistered(email)
	}

	if !s.hasher.Verify(password, user.EncryptedPassword) {
		s.logger.Info().Uint("user_id", user.ID).Msg("login rejected: wrong password")
		return nil, domain.WrongPassword()
	}

	// The role join is expected to resolve; a dangling role_id is a data fault.
	if user.Role == nil {
		return nil, fmt.Errorf("user %d: role %d not resolved", user.ID, user.RoleID)
	}

	token, err := s.tokens.Issue(domain.NewIdentity(user, user.Role))
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role.Name).Msg("user logged in")
	return &ports.TokenResult{AccessToken: token}, nil
}

// Register creates a CUSTOMER account and returns a signed access token.
// The existence check and the insert are not atomic; the unique index on
// email settles concurrent sign-ups and its violation maps to EmailAlreadyTaken.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.TokenResult, error) {
	existing, err := s.users.FindByEmail(ctx, input.Email, false)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.EmailAlreadyTaken(input.Email)
	}

	role, err := s.roles.FindByName(ctx, DefaultRole)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("default role %q is not seeded", DefaultRole)
	}

	hash, err := s.hasher.Hash(input.Password, PasswordCost)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		Name:              input.Name,
		Email:             input.Email,
		EncryptedPassword: hash,
		Image:             input.Image,
		RoleID:            role.ID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			s.logger.Warn().Str("email", input.Email).Msg("registration lost race on unique email")
			return nil, domain.EmailAlreadyTaken(input.Email)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(domain.NewIdentity(created, role))
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", created.ID).Msg("user registered")
	return &ports.TokenResult{AccessToken: token}, nil
}

// CurrentUser loads the authenticated user together with its role.
func (s *AuthService) CurrentUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.users.FindByPK(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.RecordNotFound("User")
	}

	role, err := s.roles.FindByPK(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.RecordNotFound("Role")
	}

	user.Role = role
	return user, nil
}
