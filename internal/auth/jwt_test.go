package auth_test

import (
	"os"
	"testing"

	"labelhub/internal/auth"
	"labelhub/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateToken_ValidatesAgainstConfigSecret(t *testing.T) {
	// Arrange: no JWT_SECRET in the environment, both sides fall back
	// to the same default.
	os.Unsetenv("JWT_SECRET")
	cfg := config.Load()
	userID := uuid.New().String()

	// Act
	tokenStr, err := auth.GenerateToken(userID)

	// Assert
	assert.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, userID, claims["user_id"])
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	// Arrange
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")
	userID := uuid.New().String()

	// Act
	tokenStr, err := auth.GenerateToken(userID)
	assert.NoError(t, err)

	parsedID, err := auth.ParseToken(tokenStr)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, userID, parsedID)
}
