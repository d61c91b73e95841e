package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// MockTransactionRepository keeps transactions in memory. Err, when set, is returned by every call.
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions []domain.Transaction
	// KnownUsers limits Save to these owners when non-nil.
	KnownUsers map[string]bool
	Err        error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Save(_ context.Context, transaction *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.KnownUsers != nil && !m.KnownUsers[transaction.UserID] {
		return errors.ErrOwnerNotFound
	}
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) FindByUser(_ context.Context, userID string, limit, offset int) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	owned := []domain.Transaction{}
	for _, t := range m.Transactions {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	if offset >= len(owned) {
		return []domain.Transaction{}, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (m *MockTransactionRepository) indexOf(userID, transactionID string) int {
	for i, t := range m.Transactions {
		if t.ID == transactionID && t.UserID == userID {
			return i
		}
	}
	return -1
}

func (m *MockTransactionRepository) FindByID(_ context.Context, userID, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i := m.indexOf(userID, transactionID)
	if i < 0 {
		return nil, errors.ErrTransactionNotFound
	}
	found := m.Transactions[i]
	return &found, nil
}

func (m *MockTransactionRepository) Update(_ context.Context, userID, transactionID string, patch domain.TransactionPatch, updatedAt time.Time) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i := m.indexOf(userID, transactionID)
	if i < 0 {
		return nil, errors.ErrTransactionNotFound
	}
	t := &m.Transactions[i]
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.PaymentType != nil {
		t.PaymentType = *patch.PaymentType
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.Location != nil {
		location := *patch.Location
		t.Location = &location
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	t.UpdatedAt = updatedAt
	updated := *t
	return &updated, nil
}

func (m *MockTransactionRepository) Delete(_ context.Context, userID, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i := m.indexOf(userID, transactionID)
	if i < 0 {
		return nil, errors.ErrTransactionNotFound
	}
	deleted := m.Transactions[i]
	m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
	return &deleted, nil
}

func (m *MockTransactionRepository) SumByCategory(_ context.Context, userID string) ([]domain.GroupTotal, error) {
	return m.sumBy(userID, func(t domain.Transaction) string { return string(t.Category) })
}

func (m *MockTransactionRepository) SumByPaymentType(_ context.Context, userID string) ([]domain.GroupTotal, error) {
	return m.sumBy(userID, func(t domain.Transaction) string { return string(t.PaymentType) })
}

func (m *MockTransactionRepository) sumBy(userID string, key func(domain.Transaction) string) ([]domain.GroupTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	index := map[string]int{}
	totals := []domain.GroupTotal{}
	for _, t := range m.Transactions {
		if t.UserID != userID {
			continue
		}
		k := key(t)
		i, ok := index[k]
		if !ok {
			i = len(totals)
			index[k] = i
			totals = append(totals, domain.GroupTotal{Key: k, TotalAmount: decimal.Zero})
		}
		totals[i].TotalAmount = totals[i].TotalAmount.Add(t.Amount)
		totals[i].Count++
	}
	return totals, nil
}

func (m *MockTransactionRepository) FindAmountsByUser(_ context.Context, userID string) ([]domain.DatedAmount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	amounts := []domain.DatedAmount{}
	for _, t := range m.Transactions {
		if t.UserID == userID {
			amounts = append(amounts, domain.DatedAmount{Date: t.Date, Amount: t.Amount})
		}
	}
	return amounts, nil
}
