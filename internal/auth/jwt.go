package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

var (
	ErrInvalidJWTToken = errors.New("JWT token is invalid")
	ErrExpiredJWTToken = errors.New("JWT token is expired")
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

type JWTManagerInterface interface {
	GenerateAccessJWT(userID string) (string, error)
	GenerateRefreshJWT(userID string) (string, error)
	ValidateAccessToken(tokenString string) (string, error)
	ValidateRefreshToken(tokenString string) (string, error)
	AccessTokenExpiry() time.Duration
	RefreshTokenExpiry() time.Duration
}

type TokenCustomClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.StandardClaims
}

type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) (*JWTManager, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessExpiry <= 0 || refreshExpiry <= 0 {
		return nil, errors.New("token expiries must be positive")
	}
	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}, nil
}

func (j *JWTManager) AccessTokenExpiry() time.Duration {
	return j.accessExpiry
}

func (j *JWTManager) RefreshTokenExpiry() time.Duration {
	return j.refreshExpiry
}

func (j *JWTManager) GenerateAccessJWT(userID string) (string, error) {
	return j.sign(userID, accessTokenType, j.accessSecret, j.accessExpiry)
}

func (j *JWTManager) GenerateRefreshJWT(userID string) (string, error) {
	return j.sign(userID, refreshTokenType, j.refreshSecret, j.refreshExpiry)
}

func (j *JWTManager) sign(userID, tokenType string, secret []byte, duration time.Duration) (string, error) {
	if userID == "" {
		return "", ErrInvalidJWTToken
	}
	now := time.Now()
	claims := &TokenCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		StandardClaims: jwt.StandardClaims{
			// unique id, so two tokens issued in the same second still differ
			Id:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("could not sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (j *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	return j.validate(tokenString, accessTokenType, j.accessSecret)
}

func (j *JWTManager) ValidateRefreshToken(tokenString string) (string, error) {
	return j.validate(tokenString, refreshTokenType, j.refreshSecret)
}

func (j *JWTManager) validate(tokenString, tokenType string, secret []byte) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidJWTToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			if validationErr.Errors&(jwt.ValidationErrorExpired) != 0 {
				return "", ErrExpiredJWTToken
			}
		}
		return "", ErrInvalidJWTToken
	}

	claims, ok := token.Claims.(*TokenCustomClaims)
	if !ok || !token.Valid || claims.UserID == "" || claims.TokenType != tokenType {
		return "", ErrInvalidJWTToken
	}

	return claims.UserID, nil
}

// HashRefreshToken returns the digest stored in place of the raw refresh token.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
