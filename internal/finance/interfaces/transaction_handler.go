package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sebuszqo/ExpenseTracker/internal/authctx"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/application"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"github.com/sebuszqo/ExpenseTracker/internal/request"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionServiceInterface interface {
	AddTransaction(ctx context.Context, userID string, input application.CreateTransactionInput) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string, page, limit int) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, input application.UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)
	StatsByCategory(ctx context.Context, userID string) ([]domain.GroupTotal, error)
	StatsByPaymentType(ctx context.Context, userID string) ([]domain.GroupTotal, error)
	StatsByMonth(ctx context.Context, userID string) ([]domain.MonthlyTotal, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransactionHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type addTransactionRequest struct {
	Description string          `json:"description" validate:"max=200"`
	PaymentType string          `json:"paymentType"`
	Category    string          `json:"category"`
	Amount      json.RawMessage `json:"amount"`
	Location    *string         `json:"location" validate:"omitempty,max=200"`
	Date        string          `json:"date"`
}

type updateTransactionRequest struct {
	Description *string         `json:"description" validate:"omitempty,max=200"`
	PaymentType *string         `json:"paymentType"`
	Category    *string         `json:"category"`
	Amount      json.RawMessage `json:"amount"`
	Location    *string         `json:"location" validate:"omitempty,max=200"`
	Date        *string         `json:"date"`
}

// parseAmount accepts a JSON number or a numeric string; null and absence both mean no amount.
// Oversized or over-precise values are rejected here, before anything formats them.
func parseAmount(raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil || !domain.AmountWithinBounds(amount) {
		return nil, financeErrors.ErrInvalidAmount
	}
	return &amount, nil
}

func (h *TransactionHandler) respondSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.respondJSON(w, status, map[string]interface{}{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func (h *TransactionHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	var reqErr *request.Error
	var validationErrors *financeErrors.ValidationErrors
	switch {
	case errors.As(err, &reqErr):
		h.respondError(w, http.StatusBadRequest, reqErr.Msg)
	case errors.As(err, &validationErrors):
		h.respondError(w, http.StatusBadRequest, "Validation failed", validationErrors.Messages())
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, financeErrors.ErrTransactionNotFound):
		h.respondError(w, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, financeErrors.ErrOwnerNotFound):
		h.respondError(w, http.StatusNotFound, "User not found")
	default:
		logger.Get().Error(fallback, zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *TransactionHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := authctx.UserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}

func (h *TransactionHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req addTransactionRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		h.handleError(w, err, "Failed to add transaction")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.handleError(w, err, "Failed to add transaction")
		return
	}

	transaction, err := h.service.AddTransaction(r.Context(), userID, application.CreateTransactionInput{
		Description: req.Description,
		PaymentType: req.PaymentType,
		Category:    req.Category,
		Amount:      amount,
		Location:    req.Location,
		Date:        req.Date,
	})
	if err != nil {
		h.handleError(w, err, "Failed to add transaction")
		return
	}

	h.respondSuccess(w, http.StatusCreated, "New transaction added successfully", transaction)
}

func positiveQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, financeErrors.NewValidationError("Invalid " + name + " value")
	}
	return value, nil
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	page, err := positiveQueryInt(r, "page", application.DefaultPage)
	if err != nil {
		h.handleError(w, err, "Failed to fetch transactions")
		return
	}
	limit, err := positiveQueryInt(r, "limit", application.DefaultLimit)
	if err != nil {
		h.handleError(w, err, "Failed to fetch transactions")
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), userID, page, limit)
	if err != nil {
		h.handleError(w, err, "Failed to fetch transactions")
		return
	}

	h.respondSuccess(w, http.StatusOK, "Transactions fetched successfully", transactions)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.handleError(w, err, "Failed to fetch transaction")
		return
	}

	h.respondSuccess(w, http.StatusOK, "Transaction fetched successfully", transaction)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		h.handleError(w, err, "Failed to update transaction")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.handleError(w, err, "Failed to update transaction")
		return
	}

	transaction, err := h.service.UpdateTransaction(r.Context(), userID, r.PathValue("id"), application.UpdateTransactionInput{
		Description: req.Description,
		PaymentType: req.PaymentType,
		Category:    req.Category,
		Amount:      amount,
		Location:    req.Location,
		Date:        req.Date,
	})
	if err != nil {
		h.handleError(w, err, "Failed to update transaction")
		return
	}

	h.respondSuccess(w, http.StatusOK, "Transaction updated successfully", transaction)
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	transaction, err := h.service.DeleteTransaction(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.handleError(w, err, "Failed to delete transaction")
		return
	}

	h.respondSuccess(w, http.StatusOK, "Transaction deleted successfully", transaction)
}

func (h *TransactionHandler) GetStatsByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	totals, err := h.service.StatsByCategory(r.Context(), userID)
	if err != nil {
		h.handleError(w, err, "Failed to fetch category statistics")
		return
	}
	if totals == nil {
		totals = []domain.GroupTotal{}
	}

	h.respondSuccess(w, http.StatusOK, "Category statistics fetched successfully", totals)
}

func (h *TransactionHandler) GetStatsByPaymentType(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	totals, err := h.service.StatsByPaymentType(r.Context(), userID)
	if err != nil {
		h.handleError(w, err, "Failed to fetch payment type statistics")
		return
	}
	if totals == nil {
		totals = []domain.GroupTotal{}
	}

	h.respondSuccess(w, http.StatusOK, "Payment type statistics fetched successfully", totals)
}

func (h *TransactionHandler) GetStatsByMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	months, err := h.service.StatsByMonth(r.Context(), userID)
	if err != nil {
		h.handleError(w, err, "Failed to fetch monthly statistics")
		return
	}
	if months == nil {
		months = []domain.MonthlyTotal{}
	}

	h.respondSuccess(w, http.StatusOK, "Monthly statistics fetched successfully", months)
}
