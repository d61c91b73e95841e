package interfaces

import (
	"context"

	"github.com/sebuszqo/ExpenseTracker/internal/finance/application"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
)

// MockTransactionService returns its canned fields and records the arguments of the last call.
type MockTransactionService struct {
	Transaction  *domain.Transaction
	Transactions []domain.Transaction
	Totals       []domain.GroupTotal
	Months       []domain.MonthlyTotal
	Err          error

	LastUserID        string
	LastTransactionID string
	LastPage          int
	LastLimit         int
	LastCreate        application.CreateTransactionInput
	LastUpdate        application.UpdateTransactionInput
}

func (m *MockTransactionService) AddTransaction(_ context.Context, userID string, input application.CreateTransactionInput) (*domain.Transaction, error) {
	m.LastUserID, m.LastCreate = userID, input
	return m.Transaction, m.Err
}

func (m *MockTransactionService) ListTransactions(_ context.Context, userID string, page, limit int) ([]domain.Transaction, error) {
	m.LastUserID, m.LastPage, m.LastLimit = userID, page, limit
	return m.Transactions, m.Err
}

func (m *MockTransactionService) GetTransaction(_ context.Context, userID, transactionID string) (*domain.Transaction, error) {
	m.LastUserID, m.LastTransactionID = userID, transactionID
	return m.Transaction, m.Err
}

func (m *MockTransactionService) UpdateTransaction(_ context.Context, userID, transactionID string, input application.UpdateTransactionInput) (*domain.Transaction, error) {
	m.LastUserID, m.LastTransactionID, m.LastUpdate = userID, transactionID, input
	return m.Transaction, m.Err
}

func (m *MockTransactionService) DeleteTransaction(_ context.Context, userID, transactionID string) (*domain.Transaction, error) {
	m.LastUserID, m.LastTransactionID = userID, transactionID
	return m.Transaction, m.Err
}

func (m *MockTransactionService) StatsByCategory(_ context.Context, userID string) ([]domain.GroupTotal, error) {
	m.LastUserID = userID
	return m.Totals, m.Err
}

func (m *MockTransactionService) StatsByPaymentType(_ context.Context, userID string) ([]domain.GroupTotal, error) {
	m.LastUserID = userID
	return m.Totals, m.Err
}

func (m *MockTransactionService) StatsByMonth(_ context.Context, userID string) ([]domain.MonthlyTotal, error) {
	m.LastUserID = userID
	return m.Months, m.Err
}
