package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sebuszqo/ExpenseTracker/internal/authctx"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
)

// accessTokenFromRequest prefers the cookie and falls back to a bearer header.
func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if tokenString, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(tokenString)
	}
	return ""
}

// JWTAccessTokenMiddleware rejects requests without a valid access token for an existing user.
// The user is looked up on every request.
func (s *service) JWTAccessTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := accessTokenFromRequest(r)
			if tokenString == "" {
				respondError(w, http.StatusUnauthorized, "No token provided, authorization denied")
				return
			}

			userID, err := s.jwtManager.ValidateAccessToken(tokenString)
			if err != nil {
				if errors.Is(err, ErrExpiredJWTToken) {
					respondError(w, http.StatusUnauthorized, "Access token expired")
					return
				}
				respondError(w, http.StatusUnauthorized, "Invalid access token, authorization denied")
				return
			}

			if _, err := s.userService.GetUserByID(r.Context(), userID); err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
					return
				}
				respondError(w, http.StatusInternalServerError, ErrInternalError.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(authctx.WithUserID(r.Context(), userID)))
		})
	}
}
