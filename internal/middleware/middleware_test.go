package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"megacrm-backend/internal/auth"
	"megacrm-backend/internal/config"
	"megacrm-backend/internal/middleware"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (*middleware.AuthMiddleware, *auth.JWTManager) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "middleware-test"
	cfg.JWT.ExpirationHours = 1
	jm := auth.NewJWTManager(cfg)
	return middleware.NewAuthMiddleware(jm), jm
}

func echoSession(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(s.Actor))
}

func TestAuthenticate(t *testing.T) {
	m, jm := newAuth(t)
	h := m.Authenticate(http.HandlerFunc(echoSession))

	token, err := jm.GenerateToken(models.Session{Actor: "Sana", Role: models.RoleEmployee, Employee: "Sana"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "Sana", rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	m, jm := newAuth(t)
	h := m.Authenticate(m.RequireAdmin(http.HandlerFunc(echoSession)))
	now := timeutil.Now()

	admin, err := jm.GenerateToken(models.Session{
		Actor: "admin", Role: models.RoleAdmin,
		Grants: map[string]time.Time{models.GrantAdmin: now.Add(10 * time.Minute)},
	})
	require.NoError(t, err)
	lapsed, err := jm.GenerateToken(models.Session{Actor: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	employee, err := jm.GenerateToken(models.Session{Actor: "Sana", Role: models.RoleEmployee, Employee: "Sana"})
	require.NoError(t, err)

	for token, want := range map[string]int{admin: http.StatusOK, lapsed: http.StatusForbidden, employee: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/api/payments", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code)
	}
}

func TestRequestLogging_AssignsID(t *testing.T) {
	var seen string
	h := middleware.RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reassign", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestPanicRecovery(t *testing.T) {
	h := middleware.PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
