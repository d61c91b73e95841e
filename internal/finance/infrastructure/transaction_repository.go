package infrastructure

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"time"

	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
)

const transactionColumns = `id, user_id, description, payment_type, category, amount, location, date, created_at, updated_at`

type TransactionRepository struct {
	db *database.DBService
}

func NewTransactionRepository(db *database.DBService) *TransactionRepository {
	return &TransactionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var location sql.NullString
	err := row.Scan(&transaction.ID, &transaction.UserID, &transaction.Description, &transaction.PaymentType,
		&transaction.Category, &transaction.Amount, &location, &transaction.Date, &transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if location.Valid {
		transaction.Location = &location.String
	}
	transaction.CreatedAt = transaction.CreatedAt.UTC()
	transaction.UpdatedAt = transaction.UpdatedAt.UTC()
	return &transaction, nil
}

func (r *TransactionRepository) Save(ctx context.Context, transaction *domain.Transaction) error {
	_, err := r.db.DB.ExecContext(ctx, r.db.Rebind(`INSERT INTO transactions
        (id, user_id, description, payment_type, category, amount, location, date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`),
		transaction.ID, transaction.UserID, transaction.Description, string(transaction.PaymentType),
		string(transaction.Category), transaction.Amount.String(), transaction.Location, transaction.Date.Time,
		transaction.CreatedAt, transaction.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.ErrOwnerNotFound
		}
		return fmt.Errorf("could not insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Transaction, error) {
	rows, err := r.db.DB.QueryContext(ctx, r.db.Rebind(`SELECT `+transactionColumns+` FROM transactions
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`), userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("could not query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) FindByID(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	row := r.db.DB.QueryRowContext(ctx, r.db.Rebind(`SELECT `+transactionColumns+` FROM transactions
        WHERE id = $1 AND user_id = $2`), transactionID, userID)
	return r.singleRow(row)
}

// Update applies the non-nil fields of patch in one statement, so concurrent updates never interleave per row.
func (r *TransactionRepository) Update(ctx context.Context, userID, transactionID string, patch domain.TransactionPatch, updatedAt time.Time) (*domain.Transaction, error) {
	row := r.db.DB.QueryRowContext(ctx, r.db.Rebind(`UPDATE transactions SET
            description = COALESCE($3, description),
            payment_type = COALESCE($4, payment_type),
            category = COALESCE($5, category),
            amount = COALESCE($6, amount),
            location = COALESCE($7, location),
            date = COALESCE($8, date),
            updated_at = $9
        WHERE id = $1 AND user_id = $2
        RETURNING `+transactionColumns),
		transactionID, userID, optional(patch.Description), optional(patch.PaymentType), optional(patch.Category),
		optionalAmount(patch), optional(patch.Location), optionalDate(patch), updatedAt,
	)
	return r.singleRow(row)
}

// optional turns a nil pointer into SQL NULL and anything else into a plain string.
func optional[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func optionalAmount(patch domain.TransactionPatch) any {
	if patch.Amount == nil {
		return nil
	}
	return patch.Amount.String()
}

func optionalDate(patch domain.TransactionPatch) any {
	if patch.Date == nil {
		return nil
	}
	return patch.Date.Time
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	row := r.db.DB.QueryRowContext(ctx, r.db.Rebind(`DELETE FROM transactions
        WHERE id = $1 AND user_id = $2
        RETURNING `+transactionColumns), transactionID, userID)
	return r.singleRow(row)
}

func (r *TransactionRepository) singleRow(row *sql.Row) (*domain.Transaction, error) {
	transaction, err := scanTransaction(row)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

func (r *TransactionRepository) SumByCategory(ctx context.Context, userID string) ([]domain.GroupTotal, error) {
	return r.sumBy(ctx, "category", userID)
}

func (r *TransactionRepository) SumByPaymentType(ctx context.Context, userID string) ([]domain.GroupTotal, error) {
	return r.sumBy(ctx, "payment_type", userID)
}

// column is one of the two constants above, never user input.
func (r *TransactionRepository) sumBy(ctx context.Context, column, userID string) ([]domain.GroupTotal, error) {
	query := fmt.Sprintf(`SELECT %[1]s, SUM(amount), COUNT(*) FROM transactions
        WHERE user_id = $1
        GROUP BY %[1]s`, column)
	rows, err := r.db.DB.QueryContext(ctx, r.db.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("could not aggregate transactions by %s: %w", column, err)
	}
	defer rows.Close()

	totals := []domain.GroupTotal{}
	for rows.Next() {
		var total domain.GroupTotal
		if err := rows.Scan(&total.Key, &total.TotalAmount, &total.Count); err != nil {
			return nil, err
		}
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

func (r *TransactionRepository) FindAmountsByUser(ctx context.Context, userID string) ([]domain.DatedAmount, error) {
	rows, err := r.db.DB.QueryContext(ctx, r.db.Rebind(`SELECT date, amount FROM transactions WHERE user_id = $1`), userID)
	if err != nil {
		return nil, fmt.Errorf("could not query transaction amounts: %w", err)
	}
	defer rows.Close()

	amounts := []domain.DatedAmount{}
	for rows.Next() {
		var amount domain.DatedAmount
		if err := rows.Scan(&amount.Date, &amount.Amount); err != nil {
			return nil, err
		}
		amounts = append(amounts, amount)
	}
	return amounts, rows.Err()
}
