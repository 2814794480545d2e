package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentcar/rental-api/internal/api/handler"
	"github.com/rentcar/rental-api/internal/api/metrics"
	"github.com/rentcar/rental-api/internal/core/domain"
	"github.com/rentcar/rental-api/internal/infrastructure/config"
	"github.com/rentcar/rental-api/internal/infrastructure/security"
)

const testSecret = "router-secret"

// newTestRouter builds the full router over clients that never dial; only
// routes rejected before reaching storage are exercised here.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWT:   config.JWTConfig{Secret: testSecret, TTL: time.Hour},
		Redis: config.RedisConfig{CarCacheTTL: time.Minute, RentLockTTL: time.Second},
	}
	return NewRouter(cfg, client.Database("router_test"), rdb, zerolog.Nop())
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := security.NewJWTIssuer(testSecret, time.Hour).Issue(domain.Identity{
		ID:   1,
		Role: domain.RoleClaim{ID: 1, Name: role},
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(h http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error.Name
}

func TestRouter_Liveness(t *testing.T) {
	rec := serve(newTestRouter(t), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_Metrics(t *testing.T) {
	rec := serve(newTestRouter(t), http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_UnknownRoute(t *testing.T) {
	rec := serve(newTestRouter(t), http.MethodGet, "/v1/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFoundError", errorName(t, rec))
}

func TestRouter_WhoAmIRequiresToken(t *testing.T) {
	rec := serve(newTestRouter(t), http.MethodGet, "/v1/auth/whoami", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UnauthorizedError", errorName(t, rec))
}

func TestRouter_LoginValidation(t *testing.T) {
	rec := serve(newTestRouter(t), http.MethodPost, "/v1/auth/login", "", `{"email":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "ValidationError", errorName(t, rec))
}

func TestRouter_RoleChecks(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		route  string
		role   string
		body   string
	}{
		{"customer cannot create cars", http.MethodPost, "/v1/cars", "/v1/cars", domain.RoleCustomer, `{"name":"x","size":"small","image":"x.png"}`},
		{"customer cannot delete cars", http.MethodDelete, "/v1/cars/1", "/v1/cars/:id", domain.RoleCustomer, ""},
		{"admin cannot rent cars", http.MethodPost, "/v1/cars/1/rent", "/v1/cars/:id/rent", domain.RoleAdmin, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h, tc.method, tc.path, bearer(t, tc.role), tc.body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "InsufficientAccessError", errorName(t, rec))
			assert.True(t, metrics.HTTPRequestDuration.DeleteLabelValues(tc.method, tc.route, "403"),
				"request duration should be recorded as 403")
		})
	}
}
