package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, svc *jwt.JWTService, extra ...func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired(svc))
	for _, mw := range extra {
		r.Use(mw)
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func newService(t *testing.T) *jwt.JWTService {
	t.Helper()
	svc, err := jwt.NewJWTService("middleware-test-secret", "1h", nil)
	require.NoError(t, err)
	return svc
}

func request(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthRequired(t *testing.T) {
	svc := newService(t)
	router := newTestRouter(t, svc)

	access, _, err := svc.GenerateAccessToken(jwt.Claims{EmployeeID: "emp-1", Role: "employee"})
	require.NoError(t, err)
	sseToken, _, err := svc.GenerateSSEToken("emp-1")
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, request(""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("access token passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, request(access))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("sse token is not an access token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, request(sseToken))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, svc.RevokeToken(context.Background(), access, time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, request(access))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "revoked")
	})

	t.Run("revoked token in cookie", func(t *testing.T) {
		require.NoError(t, svc.RevokeToken(context.Background(), access, time.Now().Add(time.Hour)))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: access})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "revoked")
	})
}

func TestAuthRequired_CookieToken(t *testing.T) {
	svc := newService(t)
	router := newTestRouter(t, svc)

	access, _, err := svc.GenerateAccessToken(jwt.Claims{EmployeeID: "emp-1", Role: "employee"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: access})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	svc := newService(t)
	router := newTestRouter(t, svc, RequireAdmin)

	admin, _, err := svc.GenerateAccessToken(jwt.Claims{EmployeeID: "emp-1", Role: "admin"})
	require.NoError(t, err)
	employee, _, err := svc.GenerateAccessToken(jwt.Claims{EmployeeID: "emp-2", Role: "employee"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, request(admin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, request(employee))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimitByEmployee(t *testing.T) {
	svc := newService(t)
	limiter := ratelimit.New(ratelimit.Config{PerMinute: 1, Burst: 2})
	router := newTestRouter(t, svc, RateLimitByEmployee(limiter))

	first, _, err := svc.GenerateAccessToken(jwt.Claims{EmployeeID: "emp-1", Role: "employee"})
	require.NoError(t, err)
	second, _, err := svc.GenerateAccessToken(jwt.Claims{EmployeeID: "emp-2", Role: "employee"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, request(first))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, request(first))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// buckets are per employee
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, request(second))
	assert.Equal(t, http.StatusOK, rec.Code)
}
