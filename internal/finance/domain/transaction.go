package domain

import (
	"context"
	"strings"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

func init() {
	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionRepository interface {
	Save(ctx context.Context, transaction *Transaction) error
	FindByUser(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
	FindByID(ctx context.Context, userID, transactionID string) (*Transaction, error)
	Update(ctx context.Context, userID, transactionID string, patch TransactionPatch, updatedAt time.Time) (*Transaction, error)
	Delete(ctx context.Context, userID, transactionID string) (*Transaction, error)
	SumByCategory(ctx context.Context, userID string) ([]GroupTotal, error)
	SumByPaymentType(ctx context.Context, userID string) ([]GroupTotal, error)
	FindAmountsByUser(ctx context.Context, userID string) ([]DatedAmount, error)
}

type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Description string          `json:"description"`
	PaymentType PaymentType     `json:"paymentType"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Location    *string         `json:"location,omitempty"`
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (t *Transaction) Validate() error {
	var errs errors.ValidationErrors
	if strings.TrimSpace(t.Description) == "" || t.PaymentType == "" || t.Category == "" || t.Date.IsZero() {
		errs.Add(errors.ErrMissingTransactionFields)
	}
	if t.PaymentType != "" && !t.PaymentType.IsValid() {
		errs.Add(errors.ErrInvalidPaymentType)
	}
	if t.Category != "" && !t.Category.IsValid() {
		errs.Add(errors.ErrInvalidCategory)
	}
	if !ValidAmount(t.Amount) {
		errs.Add(errors.ErrInvalidAmount)
	}
	return errs.ErrOrNil()
}

// TransactionPatch carries the fields of a partial update; nil means keep the stored value.
type TransactionPatch struct {
	Description *string
	PaymentType *PaymentType
	Category    *Category
	Amount      *decimal.Decimal
	Location    *string
	Date        *Date
}

func (p TransactionPatch) Validate() error {
	var errs errors.ValidationErrors
	if p.PaymentType != nil && !p.PaymentType.IsValid() {
		errs.Add(errors.ErrInvalidPaymentType)
	}
	if p.Category != nil && !p.Category.IsValid() {
		errs.Add(errors.ErrInvalidCategory)
	}
	if p.Amount != nil && !ValidAmount(*p.Amount) {
		errs.Add(errors.ErrInvalidAmount)
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		errs.Add(errors.NewValidationError("Description must not be empty"))
	}
	return errs.ErrOrNil()
}

// GroupTotal is one bucket of a category or payment type breakdown.
type GroupTotal struct {
	Key         string          `json:"key"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int64           `json:"count"`
}

type MonthlyTotal struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int64           `json:"count"`
}

type DatedAmount struct {
	Date   Date
	Amount decimal.Decimal
}
