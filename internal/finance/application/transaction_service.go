package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type CreateTransactionInput struct {
	Description string
	PaymentType string
	Category    string
	Amount      *decimal.Decimal
	Location    *string
	Date        string
}

// UpdateTransactionInput holds only the fields the caller sent. Empty strings count as not sent.
type UpdateTransactionInput struct {
	Description *string
	PaymentType *string
	Category    *string
	Amount      *decimal.Decimal
	Location    *string
	Date        *string
}

type TransactionService struct {
	repo         domain.TransactionRepository
	maxListLimit int
	now          func() time.Time
}

// NewTransactionService builds the service; a maxListLimit of 0 leaves page sizes unbounded.
func NewTransactionService(repo domain.TransactionRepository, maxListLimit int) *TransactionService {
	return &TransactionService{
		repo:         repo,
		maxListLimit: maxListLimit,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func (s *TransactionService) AddTransaction(ctx context.Context, userID string, input CreateTransactionInput) (*domain.Transaction, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" || input.PaymentType == "" || input.Category == "" || input.Amount == nil || strings.TrimSpace(input.Date) == "" {
		return nil, financeErrors.ErrMissingTransactionFields
	}

	date, err := domain.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	transaction := &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: description,
		PaymentType: domain.PaymentType(input.PaymentType),
		Category:    domain.Category(input.Category),
		Amount:      *input.Amount,
		Location:    nonEmpty(input.Location),
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, transaction); err != nil {
		return nil, err
	}

	logger.Get().Info("Transaction added", zap.String("userID", userID), zap.String("transactionID", transaction.ID))
	return transaction, nil
}

// ListTransactions returns one page of the user's transactions, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, page, limit int) ([]domain.Transaction, error) {
	if page < 1 {
		return nil, financeErrors.NewValidationError("Page must be a positive integer")
	}
	if limit < 1 {
		return nil, financeErrors.NewValidationError("Limit must be a positive integer")
	}
	if s.maxListLimit > 0 && limit > s.maxListLimit {
		return nil, financeErrors.NewValidationError(fmt.Sprintf("Limit must not exceed %d", s.maxListLimit))
	}
	if page-1 > math.MaxInt32/limit {
		return []domain.Transaction{}, nil
	}

	return s.repo.FindByUser(ctx, userID, limit, (page-1)*limit)
}

func (s *TransactionService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	transactionID, ok := canonicalID(transactionID)
	if !ok {
		return nil, financeErrors.ErrTransactionNotFound
	}
	return s.repo.FindByID(ctx, userID, transactionID)
}

// UpdateTransaction changes only the supplied fields. Amount and date are checked only when present.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, input UpdateTransactionInput) (*domain.Transaction, error) {
	transactionID, ok := canonicalID(transactionID)
	if !ok {
		return nil, financeErrors.ErrTransactionNotFound
	}

	var patch domain.TransactionPatch
	if description := nonEmpty(input.Description); description != nil {
		trimmed := strings.TrimSpace(*description)
		patch.Description = &trimmed
	}
	if paymentType := nonEmpty(input.PaymentType); paymentType != nil {
		value := domain.PaymentType(*paymentType)
		patch.PaymentType = &value
	}
	if category := nonEmpty(input.Category); category != nil {
		value := domain.Category(*category)
		patch.Category = &value
	}
	patch.Amount = input.Amount
	patch.Location = nonEmpty(input.Location)
	if date := nonEmpty(input.Date); date != nil {
		parsed, err := domain.ParseDate(*date)
		if err != nil {
			return nil, err
		}
		patch.Date = &parsed
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, userID, transactionID, patch, s.now())
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Transaction updated", zap.String("userID", userID), zap.String("transactionID", transactionID))
	return updated, nil
}

// DeleteTransaction removes the transaction and returns it as it was.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	transactionID, ok := canonicalID(transactionID)
	if !ok {
		return nil, financeErrors.ErrTransactionNotFound
	}

	deleted, err := s.repo.Delete(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Transaction deleted", zap.String("userID", userID), zap.String("transactionID", transactionID))
	return deleted, nil
}

func (s *TransactionService) StatsByCategory(ctx context.Context, userID string) ([]domain.GroupTotal, error) {
	return s.repo.SumByCategory(ctx, userID)
}

func (s *TransactionService) StatsByPaymentType(ctx context.Context, userID string) ([]domain.GroupTotal, error) {
	return s.repo.SumByPaymentType(ctx, userID)
}

// StatsByMonth buckets the user's transactions by calendar month of their date, latest month first.
func (s *TransactionService) StatsByMonth(ctx context.Context, userID string) ([]domain.MonthlyTotal, error) {
	amounts, err := s.repo.FindAmountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	type monthKey struct {
		year  int
		month time.Month
	}
	buckets := make(map[monthKey]*domain.MonthlyTotal)
	for _, amount := range amounts {
		key := monthKey{year: amount.Date.Year(), month: amount.Date.Month()}
		bucket, exists := buckets[key]
		if !exists {
			bucket = &domain.MonthlyTotal{Year: key.year, Month: int(key.month), TotalAmount: decimal.Zero}
			buckets[key] = bucket
		}
		bucket.TotalAmount = bucket.TotalAmount.Add(amount.Amount)
		bucket.Count++
	}

	months := make([]domain.MonthlyTotal, 0, len(buckets))
	for _, bucket := range buckets {
		months = append(months, *bucket)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})
	return months, nil
}

// canonicalID normalizes any accepted UUID spelling; ids that are not UUIDs cannot exist.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
