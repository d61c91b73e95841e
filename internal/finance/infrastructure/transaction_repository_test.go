package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	"github.com/sebuszqo/ExpenseTracker/internal/db/dbtest"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/domain"
	"github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionRepositoryTestSuite struct {
	suite.Suite
	openDB func(t testing.TB) *database.DBService

	db    *database.DBService
	repo  *TransactionRepository
	ctx   context.Context
	owner string
	other string
	clock time.Time
}

func TestTransactionRepositorySQLite(t *testing.T) {
	suite.Run(t, &TransactionRepositoryTestSuite{openDB: dbtest.NewSQLite})
}

func TestTransactionRepositoryPostgres(t *testing.T) {
	suite.Run(t, &TransactionRepositoryTestSuite{openDB: dbtest.NewPostgres})
}

func (s *TransactionRepositoryTestSuite) SetupSuite() {
	s.db = s.openDB(s.T())
	s.repo = NewTransactionRepository(s.db)
	s.ctx = context.Background()
}

func (s *TransactionRepositoryTestSuite) SetupTest() {
	for _, table := range []string{"transactions", "users"} {
		_, err := s.db.DB.ExecContext(s.ctx, "DELETE FROM "+table)
		s.Require().NoError(err)
	}

	users := user.NewUserRepository(s.db)
	s.owner = s.createUser(users, "owner")
	s.other = s.createUser(users, "other")
	s.clock = time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC)
}

func (s *TransactionRepositoryTestSuite) createUser(users user.Repository, username string) string {
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &user.User{
		ID:             uuid.NewString(),
		Username:       username,
		Name:           username,
		Email:          username + "@example.com",
		Gender:         user.GenderOther,
		ProfilePicture: "https://avatar.iran.liara.run/public/46",
		PasswordHash:   "hash",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Require().NoError(users.CreateUser(s.ctx, u))
	return u.ID
}

// save stores a transaction created one second after the previous one.
func (s *TransactionRepositoryTestSuite) save(owner, description, category, paymentType, amount, date string) *domain.Transaction {
	s.clock = s.clock.Add(time.Second)
	parsedDate, err := domain.ParseDate(date)
	s.Require().NoError(err)
	transaction := &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      owner,
		Description: description,
		PaymentType: domain.PaymentType(paymentType),
		Category:    domain.Category(category),
		Amount:      decimal.RequireFromString(amount),
		Date:        parsedDate,
		CreatedAt:   s.clock,
		UpdatedAt:   s.clock,
	}
	s.Require().NoError(s.repo.Save(s.ctx, transaction))
	return transaction
}

func (s *TransactionRepositoryTestSuite) TestSaveAndFindByID() {
	location := "Cafe"
	saved := s.save(s.owner, "Coffee", "expense", "cash", "4.5", "2024-01-05")

	found, err := s.repo.FindByID(s.ctx, s.owner, saved.ID)
	s.Require().NoError(err)
	s.Equal(saved.ID, found.ID)
	s.Equal(s.owner, found.UserID)
	s.Equal("Coffee", found.Description)
	s.Equal(domain.PaymentTypeCash, found.PaymentType)
	s.Equal(domain.CategoryExpense, found.Category)
	s.True(found.Amount.Equal(decimal.RequireFromString("4.5")), "amount %s", found.Amount)
	s.Equal("2024-01-05", found.Date.String())
	s.Nil(found.Location)
	s.True(saved.CreatedAt.Equal(found.CreatedAt))

	_, err = s.repo.Update(s.ctx, s.owner, saved.ID, domain.TransactionPatch{Location: &location}, s.clock)
	s.Require().NoError(err)
	found, err = s.repo.FindByID(s.ctx, s.owner, saved.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.Location)
	s.Equal("Cafe", *found.Location)
}

func (s *TransactionRepositoryTestSuite) TestFindByID_ScopedToOwner() {
	saved := s.save(s.owner, "Coffee", "expense", "cash", "4.5", "2024-01-05")

	_, err := s.repo.FindByID(s.ctx, s.other, saved.ID)
	s.ErrorIs(err, errors.ErrTransactionNotFound)
	_, err = s.repo.FindByID(s.ctx, s.owner, uuid.NewString())
	s.ErrorIs(err, errors.ErrTransactionNotFound)
}

func (s *TransactionRepositoryTestSuite) TestSave_UnknownOwner() {
	transaction := &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      uuid.NewString(),
		Description: "Ghost",
		PaymentType: domain.PaymentTypeCard,
		Category:    domain.CategoryExpense,
		Amount:      decimal.NewFromInt(1),
		Date:        domain.NewDate(s.clock),
		CreatedAt:   s.clock,
		UpdatedAt:   s.clock,
	}
	s.ErrorIs(s.repo.Save(s.ctx, transaction), errors.ErrOwnerNotFound)
}

func (s *TransactionRepositoryTestSuite) TestFindByUser_NewestFirstAndPaged() {
	first := s.save(s.owner, "first", "expense", "cash", "1", "2024-01-01")
	second := s.save(s.owner, "second", "expense", "cash", "2", "2024-01-02")
	third := s.save(s.owner, "third", "expense", "cash", "3", "2024-01-03")
	s.save(s.other, "foreign", "expense", "cash", "9", "2024-01-04")

	page, err := s.repo.FindByUser(s.ctx, s.owner, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal(third.ID, page[0].ID)
	s.Equal(second.ID, page[1].ID)

	page, err = s.repo.FindByUser(s.ctx, s.owner, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal(first.ID, page[0].ID)

	page, err = s.repo.FindByUser(s.ctx, s.owner, 10, 10)
	s.Require().NoError(err)
	s.NotNil(page)
	s.Empty(page)

	all, err := s.repo.FindByUser(s.ctx, s.owner, 100, 0)
	s.Require().NoError(err)
	s.Len(all, 3)
	for _, transaction := range all {
		s.Equal(s.owner, transaction.UserID)
	}
}

func (s *TransactionRepositoryTestSuite) TestUpdate_OnlySuppliedFields() {
	saved := s.save(s.owner, "Coffee", "expense", "cash", "4.5", "2024-01-05")
	amount := decimal.RequireFromString("6.25")
	category := domain.CategorySaving
	updatedAt := s.clock.Add(time.Hour)

	updated, err := s.repo.Update(s.ctx, s.owner, saved.ID, domain.TransactionPatch{
		Amount:   &amount,
		Category: &category,
	}, updatedAt)
	s.Require().NoError(err)

	s.True(updated.Amount.Equal(amount), "amount %s", updated.Amount)
	s.Equal(domain.CategorySaving, updated.Category)
	s.Equal("Coffee", updated.Description)
	s.Equal(domain.PaymentTypeCash, updated.PaymentType)
	s.Equal("2024-01-05", updated.Date.String())
	s.True(saved.CreatedAt.Equal(updated.CreatedAt))
	s.True(updatedAt.Equal(updated.UpdatedAt))

	date, err := domain.ParseDate("2023-12-31")
	s.Require().NoError(err)
	updated, err = s.repo.Update(s.ctx, s.owner, saved.ID, domain.TransactionPatch{Date: &date}, updatedAt)
	s.Require().NoError(err)
	s.Equal("2023-12-31", updated.Date.String())
	s.True(updated.Amount.Equal(amount))
}

func (s *TransactionRepositoryTestSuite) TestUpdate_NotOwner() {
	saved := s.save(s.owner, "Coffee", "expense", "cash", "4.5", "2024-01-05")
	description := "stolen"

	_, err := s.repo.Update(s.ctx, s.other, saved.ID, domain.TransactionPatch{Description: &description}, s.clock)
	s.ErrorIs(err, errors.ErrTransactionNotFound)

	found, err := s.repo.FindByID(s.ctx, s.owner, saved.ID)
	s.Require().NoError(err)
	s.Equal("Coffee", found.Description)
}

func (s *TransactionRepositoryTestSuite) TestDelete() {
	saved := s.save(s.owner, "Coffee", "expense", "cash", "4.5", "2024-01-05")

	_, err := s.repo.Delete(s.ctx, s.other, saved.ID)
	s.ErrorIs(err, errors.ErrTransactionNotFound)

	deleted, err := s.repo.Delete(s.ctx, s.owner, saved.ID)
	s.Require().NoError(err)
	s.Equal(saved.ID, deleted.ID)
	s.Equal("Coffee", deleted.Description)

	_, err = s.repo.FindByID(s.ctx, s.owner, saved.ID)
	s.ErrorIs(err, errors.ErrTransactionNotFound)
	_, err = s.repo.Delete(s.ctx, s.owner, saved.ID)
	s.ErrorIs(err, errors.ErrTransactionNotFound)
}

func (s *TransactionRepositoryTestSuite) seedStats() {
	s.save(s.owner, "Coffee", "expense", "cash", "4.5", "2024-01-05")
	s.save(s.owner, "Rent", "expense", "card", "100", "2024-01-01")
	s.save(s.owner, "Fund", "investment", "upi", "10.25", "2023-12-15")
	s.save(s.owner, "Piggy", "saving", "cash", "20", "2024-02-10")
	s.save(s.other, "Foreign", "expense", "cash", "999", "2024-01-05")
}

func totalsByKey(totals []domain.GroupTotal) map[string]domain.GroupTotal {
	byKey := make(map[string]domain.GroupTotal, len(totals))
	for _, total := range totals {
		byKey[total.Key] = total
	}
	return byKey
}

func (s *TransactionRepositoryTestSuite) TestSumByCategory() {
	s.seedStats()

	totals, err := s.repo.SumByCategory(s.ctx, s.owner)
	s.Require().NoError(err)
	byKey := totalsByKey(totals)
	s.Require().Len(byKey, 3)
	s.True(byKey["expense"].TotalAmount.Equal(decimal.RequireFromString("104.5")), "expense %s", byKey["expense"].TotalAmount)
	s.Equal(int64(2), byKey["expense"].Count)
	s.True(byKey["investment"].TotalAmount.Equal(decimal.RequireFromString("10.25")))
	s.True(byKey["saving"].TotalAmount.Equal(decimal.NewFromInt(20)))

	sum := decimal.Zero
	for _, total := range totals {
		sum = sum.Add(total.TotalAmount)
	}
	s.True(sum.Equal(decimal.RequireFromString("134.75")), "sum %s", sum)
}

func (s *TransactionRepositoryTestSuite) TestSumByPaymentType() {
	s.seedStats()

	totals, err := s.repo.SumByPaymentType(s.ctx, s.owner)
	s.Require().NoError(err)
	byKey := totalsByKey(totals)
	s.Require().Len(byKey, 3)
	s.True(byKey["cash"].TotalAmount.Equal(decimal.RequireFromString("24.5")))
	s.Equal(int64(2), byKey["cash"].Count)
	s.Equal(int64(1), byKey["card"].Count)
}

func (s *TransactionRepositoryTestSuite) TestSums_EmptyForNewUser() {
	totals, err := s.repo.SumByCategory(s.ctx, s.owner)
	s.Require().NoError(err)
	s.NotNil(totals)
	s.Empty(totals)
}

func (s *TransactionRepositoryTestSuite) TestFindAmountsByUser() {
	s.seedStats()

	amounts, err := s.repo.FindAmountsByUser(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(amounts, 4)

	dates := map[string]bool{}
	for _, amount := range amounts {
		dates[amount.Date.String()] = true
	}
	s.True(dates["2023-12-15"])
	s.True(dates["2024-02-10"])
	s.False(dates["1970-01-01"])
}

func (s *TransactionRepositoryTestSuite) TestDeletingUserRemovesTransactions() {
	s.save(s.owner, "Coffee", "expense", "cash", "4.5", "2024-01-05")

	_, err := s.db.DB.ExecContext(s.ctx, s.db.Rebind("DELETE FROM users WHERE id = $1"), s.owner)
	s.Require().NoError(err)

	remaining, err := s.repo.FindByUser(s.ctx, s.owner, 10, 0)
	s.Require().NoError(err)
	s.Empty(remaining)
}
