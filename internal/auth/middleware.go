package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"kpark/internal/db"
)

// UserSource resolves a token's subject to a live user record.
type UserSource interface {
	GetByID(ctx context.Context, id int) (*db.User, error)
}

// Middleware verifies bearer tokens and attaches a Principal to the request.
type Middleware struct {
	users  UserSource
	secret []byte
}

func NewMiddleware(users UserSource, secret []byte) *Middleware {
	return &Middleware{users: users, secret: secret}
}

// Protect rejects requests without a valid token for an active user.
func (m *Middleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, "Not authenticated. Please log in.")
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			unauthorized(w, "Invalid or expired token.")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(w, "Invalid or expired token.")
			return
		}
		idFloat, ok := claims["user_id"].(float64)
		if !ok {
			unauthorized(w, "Invalid or expired token.")
			return
		}

		user, err := m.users.GetByID(r.Context(), int(idFloat))
		if err != nil || user == nil || !user.IsActive {
			unauthorized(w, "User no longer exists or is inactive.")
			return
		}

		principal := &Principal{
			ID:            user.ID,
			Name:          user.Name,
			Email:         user.Email,
			Role:          user.Role,
			Phone:         user.Phone,
			VehicleNumber: user.VehicleNumber,
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireRoles gates a subrouter to the given roles. Must run after Protect.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				unauthorized(w, "Not authenticated. Please log in.")
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "Access denied. Required role(s): " + strings.Join(roles, ", "),
			})
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
