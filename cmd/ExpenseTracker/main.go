package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	"github.com/sebuszqo/ExpenseTracker/internal/config"
	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/application"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/interfaces"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	if err := logger.Init(cfg.IsDevelopment(), logger.LogLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Get().Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := database.RunMigrations(cfg.DBDriver, cfg.DBConnectionString); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	db, err := database.NewDBService(cfg.DBDriver, cfg.DBConnectionString)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	userRepository := user.NewUserRepository(db)
	userService, err := user.NewUserService(userRepository, cfg.BcryptCost)
	if err != nil {
		return err
	}
	userHandler := user.NewHandler(userService)

	jwtManager, err := auth.NewJWTManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	if err != nil {
		return err
	}
	authService := auth.NewAuthService(userRepository, userService, jwtManager)
	authHandler := auth.NewHandler(authService, cfg.CookieSecure)

	transactionRepository := infrastructure.NewTransactionRepository(db)
	transactionService := application.NewTransactionService(transactionRepository, cfg.TransactionListMaxLimit)
	transactionHandler := interfaces.NewTransactionHandler(transactionService, respondJSON, respondError)

	sweeper, err := auth.NewSessionSweeper(userRepository, cfg.RefreshTokenExpiry).Start(auth.DefaultSessionSweepSchedule)
	if err != nil {
		return fmt.Errorf("starting session sweeper: %w", err)
	}

	server := NewServer(db, authHandler, authService, userHandler, transactionHandler, cfg.CORSOrigin)
	server.RegisterRoutes()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Get().Info("Server starting", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Get().Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		select {
		case <-sweeper.Stop().Done():
		case <-shutdownCtx.Done():
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
