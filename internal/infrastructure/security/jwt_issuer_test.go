package security

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentcar/rental-api/internal/core/domain"
)

func sampleIdentity() domain.Identity {
	image := "avatar.png"
	return domain.Identity{
		ID:    1,
		Name:  "Test User",
		Email: "test@example.com",
		Image: &image,
		Role:  domain.RoleClaim{ID: 1, Name: domain.RoleCustomer},
	}
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Hour)

	token, err := issuer.Issue(sampleIdentity())
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, sampleIdentity(), *got)
}

func TestJWTIssuer_PayloadShape(t *testing.T) {
	issuer := NewJWTIssuer("secret", 0)

	token, err := issuer.Issue(domain.Identity{
		ID:    7,
		Name:  "Ann",
		Email: "ann@example.com",
		Role:  domain.RoleClaim{ID: 2, Name: domain.RoleAdmin},
	})
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)

	assert.EqualValues(t, 7, claims["id"])
	assert.Equal(t, "Ann", claims["name"])
	assert.Equal(t, "ann@example.com", claims["email"])
	assert.Contains(t, claims, "image")
	assert.Nil(t, claims["image"])
	assert.Equal(t, map[string]any{"id": float64(2), "name": domain.RoleAdmin}, claims["role"])
	assert.NotContains(t, claims, "exp", "no ttl configured")
	assert.NotContains(t, claims, "jti")
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.Issue(sampleIdentity())
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWTIssuer_InvalidTokens(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Hour)
	token, err := issuer.Issue(sampleIdentity())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTIssuer("other", time.Hour).Verify(token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		payload, _ := json.Marshal(map[string]any{"id": 99, "role": map[string]any{"id": 3, "name": domain.RoleSuperAdmin}})
		parts[1] = base64.RawURLEncoding.EncodeToString(payload)
		_, err := issuer.Verify(strings.Join(parts, "."))
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": 1}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Verify(none)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
