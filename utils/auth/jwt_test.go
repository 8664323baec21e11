package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "coursehunt-api",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := testManager()

	token, jti, err := manager.GenerateAccessToken(42, "user@example.com", "student", 3)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "coursehunt-api", claims.Issuer)
}

func TestRefreshTokenType(t *testing.T) {
	manager := testManager()

	token, _, err := manager.GenerateRefreshToken(42, "user@example.com", "student", 0)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := testManager().GenerateAccessToken(1, "user@example.com", "student", 0)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "another-secret", Expiry: time.Minute})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := testManager().ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager := NewJWTManager(JWTConfig{
		Secret: "test-secret",
		Expiry: -time.Minute,
	})
	token, _, err := manager.GenerateAccessToken(1, "user@example.com", "student", 0)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshAccessToken(t *testing.T) {
	manager := testManager()

	refresh, _, err := manager.GenerateRefreshToken(7, "user@example.com", "instructor", 2)
	require.NoError(t, err)

	access, _, err := manager.RefreshAccessToken(refresh, 2)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "instructor", claims.Role)
}

func TestRefreshAccessTokenRejectsAccessToken(t *testing.T) {
	manager := testManager()

	access, _, err := manager.GenerateAccessToken(7, "user@example.com", "student", 0)
	require.NoError(t, err)

	_, _, err = manager.RefreshAccessToken(access, 0)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnverifiedHelpers(t *testing.T) {
	manager := testManager()

	token, jti, err := manager.GenerateAccessToken(1, "user@example.com", "student", 0)
	require.NoError(t, err)

	gotJTI, err := manager.GetJTI(token)
	require.NoError(t, err)
	assert.Equal(t, jti, gotJTI)

	expiry, err := manager.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiry, 5*time.Second)
}
