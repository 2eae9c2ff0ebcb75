package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) *AuthService {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService([]models.Agent{
		{Username: "Hamza", PasswordHash: string(hash), IsAdmin: true},
		{Username: "amel", PasswordHash: string(hash)},
	}, "test-secret", time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestAuthService_Login(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.Login(context.Background(), "hamza", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "Hamza", result.Session.Username)
	assert.True(t, result.Session.IsAdmin)
	assert.Equal(t, "2025-06-15", result.Session.LedgerDay())
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), result.ExpiresAt)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)
	assert.Equal(t, "Hamza", claims["username"])
	assert.Equal(t, true, claims["is_admin"])
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestAuthService(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown agent", "karim", "s3cret"},
		{"wrong password", "amel", "secret"},
		{"empty password", "amel", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Login(context.Background(), tt.username, tt.password)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, "identifiants invalides", err.Error())
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("caisse2025")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("caisse2025", hash))
	assert.False(t, VerifyPassword("caisse2024", hash))
}
