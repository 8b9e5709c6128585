package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpark/internal/apperr"
	"kpark/internal/db"
)

type staticUsers map[int]*db.User

func (s staticUsers) GetByID(ctx context.Context, id int) (*db.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("User not found.")
	}
	return u, nil
}

func signedToken(t *testing.T, secret []byte, userID int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestProtect(t *testing.T) {
	secret := []byte("test-secret")
	users := staticUsers{
		1: {ID: 1, Name: "asha", Role: RoleEmployee, IsActive: true},
		2: {ID: 2, Name: "gone", Role: RoleEmployee, IsActive: false},
	}
	m := NewMiddleware(users, secret)

	var got *Principal
	handler := m.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signedToken(t, []byte("other"), 1), http.StatusUnauthorized},
		{"unknown user", "Bearer " + signedToken(t, secret, 99), http.StatusUnauthorized},
		{"inactive user", "Bearer " + signedToken(t, secret, 2), http.StatusUnauthorized},
		{"valid", "Bearer " + signedToken(t, secret, 1), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				require.NotNil(t, got)
				assert.Equal(t, 1, got.ID)
				assert.Equal(t, RoleEmployee, got.Role)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RequireRoles(RoleAdmin)(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{ID: 1, Role: RoleEmployee}))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{ID: 1, Role: RoleAdmin}))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No principal at all, for example Protect not run.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessibleCategories(t *testing.T) {
	assert.Equal(t, []string{db.CategoryGeneral}, AccessibleCategories(RoleEmployee))
	assert.ElementsMatch(t, []string{db.CategoryGeneral, db.CategoryManager}, AccessibleCategories(RoleManager))
	assert.ElementsMatch(t, []string{db.CategoryGeneral, db.CategoryManager}, AccessibleCategories(RoleAdmin))

	assert.True(t, CanAccessCategory(RoleEmployee, db.CategoryGeneral))
	assert.False(t, CanAccessCategory(RoleEmployee, db.CategoryManager))
	assert.True(t, CanAccessCategory(RoleAdmin, db.CategoryManager))
}
