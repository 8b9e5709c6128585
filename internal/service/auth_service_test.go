package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpark/internal/apperr"
	"kpark/internal/auth"
	"kpark/internal/entities"
)

func registerReq() entities.RegisterRequest {
	return entities.RegisterRequest{
		Name:          "Asha",
		Email:         "Asha@KPark.test",
		Password:      "parking123",
		Phone:         "9000000000",
		VehicleNumber: "KA-01-AB-1234",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(memUsers{store}, []byte("test-secret"))
	ctx := context.Background()

	user, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	assert.Equal(t, "asha@kpark.test", user.Email)
	assert.Equal(t, auth.RoleEmployee, user.Role)

	token, logged, err := svc.Login(ctx, "asha@kpark.test", "parking123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(user.ID), claims["user_id"])
	assert.Equal(t, auth.RoleEmployee, claims["role"])
}

func TestRegisterCapsRole(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(memUsers{store}, []byte("test-secret"))
	ctx := context.Background()

	req := registerReq()
	req.Role = auth.RoleAdmin
	user, err := svc.Register(ctx, req)
	require.NoError(t, err)
	// Admins are provisioned directly, never via public registration.
	assert.Equal(t, auth.RoleEmployee, user.Role)

	req = registerReq()
	req.Email = "ravi@kpark.test"
	req.Role = auth.RoleManager
	user, err = svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleManager, user.Role)
}

func TestRegisterValidation(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(memUsers{store}, []byte("test-secret"))
	ctx := context.Background()

	short := registerReq()
	short.Password = "short"
	_, err := svc.Register(ctx, short)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.Register(ctx, entities.RegisterRequest{Name: "x"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.Register(ctx, registerReq())
	require.NoError(t, err)
	_, err = svc.Register(ctx, registerReq())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(memUsers{store}, []byte("test-secret"))
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "asha@kpark.test", "wrong-password")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	_, _, err = svc.Login(ctx, "nobody@kpark.test", "parking123")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	// Deactivated accounts cannot log in.
	inactive := false
	_, err = memUsers{store}.Update(ctx, 1, entities.UserUpdate{IsActive: &inactive})
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "asha@kpark.test", "parking123")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}
