package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
	"go.uber.org/zap"
)

var (
	ErrMissingCredentials  = errors.New("email and password are required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found, authorization denied")
	ErrInvalidRefreshToken = errors.New("invalid refresh token, authorization denied")
	ErrInternalError       = errors.New("internal Server Error")
)

// TokenPair is what login and refresh hand to the transport layer as cookies.
type TokenPair struct {
	AccessToken        string
	RefreshToken       string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type Service interface {
	Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error)
	Logout(ctx context.Context, userID string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	tokens      TokenStore
	userService user.Service
	jwtManager  JWTManagerInterface
}

func NewAuthService(tokens TokenStore, userService user.Service, jwtManager JWTManagerInterface) Service {
	return &service{
		tokens:      tokens,
		userService: userService,
		jwtManager:  jwtManager,
	}
}

func (s *service) issueTokens(userID string) (*TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessJWT(userID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:        accessToken,
		RefreshToken:       refreshToken,
		AccessTokenExpiry:  s.jwtManager.AccessTokenExpiry(),
		RefreshTokenExpiry: s.jwtManager.RefreshTokenExpiry(),
	}, nil
}

// Login persists the new refresh token hash, which ends any other session of the user.
func (s *service) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	if email == "" || password == "" {
		return nil, nil, ErrMissingCredentials
	}

	existingUser, err := s.userService.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, ErrInternalError
	}

	tokens, err := s.issueTokens(existingUser.ID)
	if err != nil {
		logger.Get().Error("Failed to generate tokens", zap.String("userID", existingUser.ID), zap.Error(err))
		return nil, nil, ErrInternalError
	}

	if err := s.tokens.SetRefreshTokenHash(ctx, existingUser.ID, HashRefreshToken(tokens.RefreshToken)); err != nil {
		logger.Get().Error("Failed to persist refresh token", zap.String("userID", existingUser.ID), zap.Error(err))
		return nil, nil, ErrInternalError
	}

	logger.Get().Info("User logged in", zap.String("userID", existingUser.ID))
	return existingUser.Sanitized(), tokens, nil
}

func (s *service) Logout(ctx context.Context, userID string) error {
	if _, err := s.userService.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if err := s.tokens.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		logger.Get().Error("Failed to clear refresh token", zap.String("userID", userID), zap.Error(err))
		return ErrInternalError
	}

	logger.Get().Info("User logged out", zap.String("userID", userID))
	return nil
}

// RefreshAccessToken rotates both tokens; the presented refresh token stops working afterwards.
func (s *service) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, ErrInternalError
	}

	presentedHash := HashRefreshToken(refreshToken)
	if existingUser.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(existingUser.RefreshTokenHash), []byte(presentedHash)) != 1 {
		logger.Get().Warn("Superseded refresh token presented", zap.String("userID", userID))
		return nil, ErrInvalidRefreshToken
	}

	tokens, err := s.issueTokens(userID)
	if err != nil {
		logger.Get().Error("Failed to generate tokens", zap.String("userID", userID), zap.Error(err))
		return nil, ErrInternalError
	}

	err = s.tokens.ReplaceRefreshTokenHash(ctx, userID, presentedHash, HashRefreshToken(tokens.RefreshToken))
	if err != nil {
		if errors.Is(err, user.ErrStaleRefreshToken) {
			// a concurrent refresh or login won the swap
			return nil, ErrInvalidRefreshToken
		}
		logger.Get().Error("Failed to rotate refresh token", zap.String("userID", userID), zap.Error(err))
		return nil, ErrInternalError
	}

	return tokens, nil
}
