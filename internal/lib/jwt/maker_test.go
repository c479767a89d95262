package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/pharmacy-management/internal/models"
)

const testSecret = "test_secret_key_1234567890"

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	maker := NewJWTMaker(testSecret, SessionTTL)

	tests := []struct {
		name   string
		userID string
		role   models.Role
	}{
		{name: "admin", userID: "0b8e4f5c-7c1d-4f0a-9a53-0e4b7f2f1a01", role: models.RoleAdmin},
		{name: "manager", userID: "1c9f5a6d-8d2e-4a1b-8b64-1f5c8a3a2b02", role: models.RoleManager},
		{name: "pharmacist", userID: "2d0a6b7e-9e3f-4b2c-9c75-2a6d9b4b3c03", role: models.RolePharmacist},
		{name: "salesman", userID: "3e1b7c8f-0f4a-4c3d-8d86-3b7e0c5c4d04", role: models.RoleSalesman},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(SessionTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(testSecret, SessionTTL)

	validToken, err := maker.GenerateToken("user-1", models.RoleSalesman)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: createExpiredToken(t)},
		{name: "wrong secret key", token: createTokenWithWrongSecret(t)},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "none algorithm", token: createUnsignedToken(t)},
		{name: "hs512 algorithm", token: createTokenWithMethod(t, jwt.SigningMethodHS512)},
		{name: "missing expiry", token: createTokenWithoutExpiry(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	maker := NewJWTMaker(testSecret, SessionTTL).WithClock(func() time.Time { return now })

	token, err := maker.GenerateToken("user-1", models.RolePharmacist)
	require.NoError(t, err)

	now = issuedAt.Add(23*time.Hour + 59*time.Minute)
	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	now = issuedAt.Add(24*time.Hour + time.Minute)
	claims, err = maker.ParseToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestJWTMaker_DefaultTTL(t *testing.T) {
	maker := NewJWTMaker(testSecret, 0)
	assert.Equal(t, SessionTTL, maker.tokenTTL)
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewJWTMaker("first_secret_key", SessionTTL)
	maker2 := NewJWTMaker("different_secret_key", SessionTTL)

	token, err := maker1.GenerateToken("user-1", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := maker2.ParseToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker1.ParseToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func createExpiredToken(t *testing.T) string {
	maker := NewJWTMaker(testSecret, -time.Hour)
	token, err := maker.GenerateToken("user-1", models.RoleSalesman)
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewJWTMaker("wrong_secret_key", SessionTTL)
	token, err := wrongMaker.GenerateToken("user-1", models.RoleSalesman)
	require.NoError(t, err)
	return token
}

func createUnsignedToken(t *testing.T) string {
	claims := CustomClaims{
		UserID: "user-1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func createTokenWithMethod(t *testing.T, method jwt.SigningMethod) string {
	claims := CustomClaims{
		UserID: "user-1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func createTokenWithoutExpiry(t *testing.T) string {
	claims := CustomClaims{UserID: "user-1", Role: models.RoleAdmin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}
