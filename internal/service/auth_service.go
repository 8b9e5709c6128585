package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"kpark/internal/apperr"
	"kpark/internal/auth"
	"kpark/internal/db"
	"kpark/internal/entities"
)

const tokenTTL = 7 * 24 * time.Hour

// AuthService registers users and issues signed tokens. It is the concrete
// identity provider behind the auth middleware.
type AuthService struct {
	users  UserStore
	secret []byte
}

func NewAuthService(users UserStore, secret []byte) *AuthService {
	return &AuthService{users: users, secret: secret}
}

// Register creates an account. Public registration is capped at employee and
// manager; admins are provisioned directly.
func (s *AuthService) Register(ctx context.Context, req entities.RegisterRequest) (*db.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Phone == "" {
		return nil, apperr.InvalidInput("name, email, password and phone are required.")
	}
	if len(req.Password) < 8 {
		return nil, apperr.InvalidInput("password must be at least 8 characters.")
	}

	role := req.Role
	if role != auth.RoleEmployee && role != auth.RoleManager {
		role = auth.RoleEmployee
	}

	user := &db.User{
		Name:          req.Name,
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         req.Phone,
		Role:          role,
		VehicleNumber: req.VehicleNumber,
	}
	if err := s.users.Create(ctx, user, req.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a signed token with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *db.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.IsActive {
		return "", nil, apperr.Unauthenticated("Invalid credentials.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Unauthenticated("Invalid credentials.")
	}

	token, err := s.signToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) signToken(user *db.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
