package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoyard/autoyard-backend/internal/users"
	pkgAuth "github.com/autoyard/autoyard-backend/pkg/auth"
	"github.com/autoyard/autoyard-backend/pkg/config"
	"github.com/autoyard/autoyard-backend/pkg/enums"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubUsers struct {
	role enums.UserRole
}

func (s stubUsers) EnsureUser(_ context.Context, ident users.ExternalIdentity) (*users.Actor, error) {
	return &users.Actor{UserID: uuid.New(), ExternalID: ident.ExternalID, Role: s.role}, nil
}

func (stubUsers) ListUsers(context.Context, *users.Actor) ([]users.UserDTO, error) {
	return []users.UserDTO{}, nil
}

func (stubUsers) UpdateRole(context.Context, *users.Actor, string, string) (users.UserDTO, error) {
	return users.UserDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}, MaxUploadBytes: 1 << 20},
		Auth: config.AuthConfig{
			TokenSecret: "secret",
			TokenIssuer: "https://clerk.autoyard.dev",
		},
		RateLimit: config.RateLimitConfig{AIExtractWindow: time.Minute, AIExtractLimit: 5, ImageSearchLimit: 5},
	}
}

func bearer(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintIdentityToken(cfg.Auth, time.Now().UTC(), time.Hour, pkgAuth.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user_2abc"},
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestRouter(role enums.UserRole) (http.Handler, *config.Config) {
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "autoyard_test_total", Help: "test"}))
	return NewRouter(cfg, nil, Infra{DB: stubPinger{}, Redis: stubPinger{}, Gatherer: reg}, Services{Users: stubUsers{role: role}}), cfg
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(enums.UserRoleUser)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equalf(t, http.StatusOK, rec.Code, "path %s", path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	}
}

func TestMetricsRoute(t *testing.T) {
	router, _ := newTestRouter(enums.UserRoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "autoyard_test_total")
}

func TestPublicRoutesAreMounted(t *testing.T) {
	router, _ := newTestRouter(enums.UserRoleUser)

	// Services are nil here, so a mounted route answers 500 rather than 404.
	paths := []string{"/api/v1/cars", "/api/v1/cars/filters", "/api/v1/cars/featured", "/api/v1/cars/" + uuid.NewString()}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equalf(t, http.StatusInternalServerError, rec.Code, "path %s", path)
	}
}

func TestSignedInRoutesRequireToken(t *testing.T) {
	router, cfg := newTestRouter(enums.UserRoleUser)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/saved-cars", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", bearer(t, cfg))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"externalId":"user_2abc"`)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router, cfg := newTestRouter(enums.UserRoleUser)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/users", nil)
	req.Header.Set("Authorization", bearer(t, cfg))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminRouter, cfg := newTestRouter(enums.UserRoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/users", nil)
	req.Header.Set("Authorization", bearer(t, cfg))
	rec = httptest.NewRecorder()
	adminRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(enums.UserRoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
