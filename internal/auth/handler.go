package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/authctx"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"github.com/sebuszqo/ExpenseTracker/internal/request"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type Handler struct {
	authService  Service
	secureCookie bool
}

func NewHandler(authService Service, secureCookie bool) *Handler {
	return &Handler{
		authService:  authService,
		secureCookie: secureCookie,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Get().Error("JSON encoding error", zap.Error(err))
	}
}

func respondSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func (h *Handler) tokenCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) setTokenCookies(w http.ResponseWriter, tokens *TokenPair) {
	http.SetCookie(w, h.tokenCookie(AccessTokenCookie, tokens.AccessToken, tokens.AccessTokenExpiry))
	http.SetCookie(w, h.tokenCookie(RefreshTokenCookie, tokens.RefreshToken, tokens.RefreshTokenExpiry))
}

func (h *Handler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		cookie := h.tokenCookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	loggedInUser, tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingCredentials):
			respondError(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			respondError(w, http.StatusInternalServerError, "Internal Server Error while logging in user")
		}
		return
	}

	h.setTokenCookies(w, tokens)
	respondSuccess(w, http.StatusOK, "User logged in successfully", loggedInUser)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := authctx.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.clearTokenCookies(w)
			respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal Server Error while logging out user")
		return
	}

	h.clearTokenCookies(w)
	respondSuccess(w, http.StatusOK, "User logged out successfully", nil)
}

func (h *Handler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		respondError(w, http.StatusUnauthorized, "No token provided, authorization denied")
		return
	}

	tokens, err := h.authService.RefreshAccessToken(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			h.clearTokenCookies(w)
			respondError(w, http.StatusUnauthorized, ErrInvalidRefreshToken.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal Server Error while refreshing access token")
		return
	}

	h.setTokenCookies(w, tokens)
	respondSuccess(w, http.StatusOK, "Access token refreshed successfully", nil)
}
