package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-dispatch/internal/auth"
	"github.com/ukydev/fleet-dispatch/internal/models"
)

func newAuth(t *testing.T) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(auth.Config{AdminPassword: "admin1234"})
	require.NoError(t, err)
	return svc
}

func tokenFor(t *testing.T, svc *auth.Service, role models.Role) string {
	t.Helper()
	token, _, err := svc.GenerateToken(&models.Operator{Username: "op", Role: role})
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := newAuth(t)
	middleware := NewAuthMiddleware(authService)
	token := tokenFor(t, authService, models.RoleAdmin)

	tests := []struct {
		name       string
		method     string
		target     string
		header     string
		wantCalled bool
		wantCode   int
	}{
		{"valid token", "GET", "/api/vehicles", "Bearer " + token, true, http.StatusOK},
		{"missing header", "GET", "/api/vehicles", "", false, http.StatusUnauthorized},
		{"invalid token", "GET", "/api/vehicles", "Bearer invalid-token", false, http.StatusUnauthorized},
		{"login skipped", "POST", "/api/auth/login", "", true, http.StatusOK},
		{"health skipped", "GET", "/health", "", true, http.StatusOK},
		{"stream query token", "GET", "/api/stream?token=" + token, "", true, http.StatusOK},
		{"query token elsewhere", "GET", "/api/vehicles?token=" + token, "", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(handler).ServeHTTP(w, req)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}

	t.Run("claims in context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/vehicles", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetOperatorFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "op", claims.Username)
			assert.Equal(t, models.RoleAdmin, claims.Role)
		})
		middleware.Authenticate(handler).ServeHTTP(httptest.NewRecorder(), req)
	})
}

func TestAuthMiddleware_RequireMutate(t *testing.T) {
	authService := newAuth(t)
	middleware := NewAuthMiddleware(authService)

	tests := []struct {
		name     string
		role     models.Role
		method   string
		wantCode int
	}{
		{"admin posts", models.RoleAdmin, http.MethodPost, http.StatusOK},
		{"viewer reads", models.RoleViewer, http.MethodGet, http.StatusOK},
		{"viewer posts", models.RoleViewer, http.MethodPost, http.StatusForbidden},
		{"viewer deletes", models.RoleViewer, http.MethodDelete, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/vehicles/v1", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, authService, tt.role))
			w := httptest.NewRecorder()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
			middleware.Authenticate(middleware.RequireMutate(handler)).ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware()
	now := time.Date(2026, 3, 9, 9, 30, 0, 0, time.UTC)
	middleware.now = func() time.Time { return now }

	handler := middleware.RateLimit(2, 60)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serve := func(addr string) int {
		req := httptest.NewRequest("POST", "/api/insights/chat", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("192.168.1.2:12345"))
	assert.Equal(t, http.StatusOK, serve("192.168.1.2:12345"))
	assert.Equal(t, http.StatusTooManyRequests, serve("192.168.1.2:12345"))
	assert.Equal(t, http.StatusOK, serve("192.168.1.3:12345"), "limits are per client")

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, serve("192.168.1.2:12345"), "window slides")
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getClientIP(req))
}

func TestGetOperatorFromContext(t *testing.T) {
	claims := &models.Claims{Username: "testuser", Role: models.RoleAdmin}
	ctx := context.WithValue(context.Background(), OperatorContextKey, claims)

	retrieved, ok := GetOperatorFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, retrieved)

	_, ok = GetOperatorFromContext(context.Background())
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
