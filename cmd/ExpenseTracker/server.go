package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/interfaces"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
	"go.uber.org/zap"
)

type Response struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Get().Error("JSON encoding error", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusNotFound, Response{Message: "Path not found"})
}

type Server struct {
	router             http.Handler
	db                 *database.DBService
	authHandler        *auth.Handler
	userHandler        *user.Handler
	authService        auth.Service
	transactionHandler *interfaces.TransactionHandler
	categoryHandler    *interfaces.CategoryHandler
	paymentHandler     *interfaces.PaymentHandler
	corsOrigin         string
}

func NewServer(
	db *database.DBService,
	authHandler *auth.Handler,
	authService auth.Service,
	userHandler *user.Handler,
	transactionHandler *interfaces.TransactionHandler,
	corsOrigin string,
) *Server {
	return &Server{
		db:                 db,
		authHandler:        authHandler,
		authService:        authService,
		userHandler:        userHandler,
		transactionHandler: transactionHandler,
		categoryHandler:    interfaces.NewCategoryHandler(respondJSON),
		paymentHandler:     interfaces.NewPaymentHandler(respondJSON),
		corsOrigin:         corsOrigin,
	}
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := s.db.Health(ctx)
	status := http.StatusOK
	state := "ready"
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":   state,
		"database": health,
	})
}

func (s *Server) RegisterRoutes() {
	protected := s.authService.JWTAccessTokenMiddleware()
	guard := func(h http.HandlerFunc) http.Handler {
		return protected(h)
	}

	router := http.NewServeMux()

	// Public routes
	router.HandleFunc("POST /api/v1/user/register", s.userHandler.HandleRegister)
	router.HandleFunc("POST /api/v1/user/login", s.authHandler.HandleLogin)
	router.HandleFunc("GET /api/v1/user/refresh-token", s.authHandler.HandleRefreshToken)
	router.HandleFunc("GET /api/v1/ready", s.handleReady)

	// User routes
	router.Handle("POST /api/v1/user/logout", guard(s.authHandler.HandleLogout))
	router.Handle("GET /api/v1/user/info", guard(s.userHandler.HandleGetUserProfile))
	router.Handle("PUT /api/v1/user/update", guard(s.userHandler.HandleUpdateProfile))
	router.Handle("PUT /api/v1/user/change-password", guard(s.userHandler.HandleChangePassword))

	// Transaction routes
	router.Handle("POST /api/v1/transaction/add", guard(s.transactionHandler.AddTransaction))
	router.Handle("GET /api/v1/transaction", guard(s.transactionHandler.GetTransactions))
	router.Handle("GET /api/v1/transaction/categories", guard(s.categoryHandler.GetCategories))
	router.Handle("GET /api/v1/transaction/payment-types", guard(s.paymentHandler.GetPaymentTypes))
	router.Handle("GET /api/v1/transaction/stats/category", guard(s.transactionHandler.GetStatsByCategory))
	router.Handle("GET /api/v1/transaction/stats/payment-type", guard(s.transactionHandler.GetStatsByPaymentType))
	router.Handle("GET /api/v1/transaction/stats/monthly", guard(s.transactionHandler.GetStatsByMonth))
	router.Handle("GET /api/v1/transaction/{id}", guard(s.transactionHandler.GetTransaction))
	router.Handle("PUT /api/v1/transaction/{id}", guard(s.transactionHandler.UpdateTransaction))
	router.Handle("DELETE /api/v1/transaction/{id}", guard(s.transactionHandler.DeleteTransaction))

	router.HandleFunc("/", notFoundHandler)

	s.router = loggingMiddleware(corsMiddleware(s.corsOrigin)(router))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
