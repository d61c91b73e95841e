package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	manager, err := NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)
	require.NoError(t, err)
	return manager
}

func TestNewJWTManager_Validation(t *testing.T) {
	_, err := NewJWTManager("", "refresh", time.Minute, time.Hour)
	assert.Error(t, err)
	_, err = NewJWTManager("access", "refresh", 0, time.Hour)
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.GenerateAccessJWT("user-1")
	require.NoError(t, err)

	userID, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.GenerateRefreshJWT("user-1")
	require.NoError(t, err)

	userID, err := manager.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokens_AreNotInterchangeable(t *testing.T) {
	manager := newTestJWTManager(t)

	access, err := manager.GenerateAccessJWT("user-1")
	require.NoError(t, err)
	refresh, err := manager.GenerateRefreshJWT("user-1")
	require.NoError(t, err)

	_, err = manager.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
	_, err = manager.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	// same secret for both kinds still keeps them apart through the token_type claim
	shared, err := NewJWTManager("same", "same", time.Minute, time.Hour)
	require.NoError(t, err)
	refresh, err = shared.GenerateRefreshJWT("user-1")
	require.NoError(t, err)
	_, err = shared.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestTokens_AreUniquePerIssue(t *testing.T) {
	manager := newTestJWTManager(t)

	first, err := manager.GenerateRefreshJWT("user-1")
	require.NoError(t, err)
	second, err := manager.GenerateRefreshJWT("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, HashRefreshToken(first), HashRefreshToken(second))
}

func TestValidate_RejectsBadTokens(t *testing.T) {
	manager := newTestJWTManager(t)
	other, err := NewJWTManager("other-access", "other-refresh", time.Minute, time.Hour)
	require.NoError(t, err)

	foreign, err := other.GenerateAccessJWT("user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidJWTToken)
		})
	}
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	manager := newTestJWTManager(t)

	claims := &TokenCustomClaims{
		UserID:    "user-1",
		TokenType: accessTokenType,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestValidate_Expired(t *testing.T) {
	manager := newTestJWTManager(t)

	claims := &TokenCustomClaims{
		UserID:    "user-1",
		TokenType: accessTokenType,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestValidate_RejectsEmptyUserID(t *testing.T) {
	manager := newTestJWTManager(t)
	_, err := manager.GenerateAccessJWT("")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	claims := &TokenCustomClaims{
		TokenType: accessTokenType,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestHashRefreshToken(t *testing.T) {
	assert.Equal(t, HashRefreshToken("abc"), HashRefreshToken("abc"))
	assert.Len(t, HashRefreshToken("abc"), 64)
	assert.NotEqual(t, "abc", HashRefreshToken("abc"))
}
