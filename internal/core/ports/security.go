package ports

import "github.com/rentcar/rental-api/internal/core/domain"

// PasswordHasher hashes and checks plaintext passwords.
type PasswordHasher interface {
	Hash(plaintext string, cost int) (string, error)
	// Verify reports whether plaintext matches digest. A mismatch is false, not an error.
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs identities into session tokens and verifies them back.
type TokenIssuer interface {
	Issue(identity domain.Identity) (string, error)
	// Verify returns domain.ErrInvalidToken or domain.ErrTokenExpired on failure.
	Verify(token string) (*domain.Identity, error)
}
