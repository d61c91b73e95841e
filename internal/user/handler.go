package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sebuszqo/ExpenseTracker/internal/authctx"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"github.com/sebuszqo/ExpenseTracker/internal/request"
	"go.uber.org/zap"
)

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
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

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var reqErr *request.Error
	switch {
	case errors.As(err, &reqErr):
		respondError(w, http.StatusBadRequest, reqErr.Msg)
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrMissingPasswords), errors.Is(err, ErrNothingToUpdate),
		errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidGender), errors.Is(err, ErrPasswordTooLong):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidOldPassword):
		respondError(w, http.StatusBadRequest, "Invalid old password")
	case errors.Is(err, ErrEmailAlreadyExists), errors.Is(err, ErrUsernameAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	default:
		logger.Get().Error(fallback, zap.Error(err))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
	Gender   string `json:"gender" validate:"required,oneof=male female other"`
}

type updateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=128"`
	Gender *string `json:"gender" validate:"omitempty,oneof=male female other"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		respondServiceError(w, err, "Could not register user")
		return
	}

	user, err := h.userService.Register(r.Context(), RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
	})
	if err != nil {
		respondServiceError(w, err, "Could not register user")
		return
	}

	respondSuccess(w, http.StatusCreated, "User registered successfully", user)
}

func (h *Handler) HandleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authctx.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Could not fetch user data")
		return
	}

	respondSuccess(w, http.StatusOK, "User details fetched successfully", user.Sanitized())
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authctx.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateProfileRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		respondServiceError(w, err, "Could not update user details")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, UpdateProfileInput{
		Name:   req.Name,
		Gender: req.Gender,
	})
	if err != nil {
		respondServiceError(w, err, "Could not update user details")
		return
	}

	respondSuccess(w, http.StatusOK, "User details updated successfully", user)
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := authctx.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		respondServiceError(w, err, "Could not change password")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(w, err, "Could not change password")
		return
	}

	respondSuccess(w, http.StatusOK, "Password changed successfully", nil)
}
