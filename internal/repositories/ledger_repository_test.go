package repositories_test

import (
	"context"
	"testing"
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"
	"walletcore/internal/repositories"
	"walletcore/internal/repositories/sqlitetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAccount(customerID, currency string) *models.Account {
	return &models.Account{
		CustomerID:    customerID,
		Currency:      currency,
		AccountNumber: "ACC-" + customerID + "-" + currency,
	}
}

func TestLedgerRepository_Accounts(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLedgerRepository(sqlitetest.Open(t))

	account := newAccount("cust-1", "TRY")
	account.Balance = decimal.NewFromInt(500)
	require.NoError(t, repo.CreateAccount(ctx, account))
	assert.NotEmpty(t, account.ID)
	assert.True(t, account.Balance.IsZero(), "new accounts always start at zero")
	assert.Equal(t, models.AccountStatusActive, account.Status)

	t.Run("duplicate customer and currency", func(t *testing.T) {
		dup := newAccount("cust-1", "TRY")
		dup.AccountNumber = "ACC-other"
		err := repo.CreateAccount(ctx, dup)
		assert.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)
	})

	t.Run("lookup by customer", func(t *testing.T) {
		got, err := repo.GetAccountByCustomer(ctx, "cust-1", "TRY")
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)

		_, err = repo.GetAccountByCustomer(ctx, "cust-1", "EUR")
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	})

	t.Run("balance and status updates", func(t *testing.T) {
		require.NoError(t, repo.UpdateBalance(ctx, account.ID, decimal.RequireFromString("12.345")))
		require.NoError(t, repo.UpdateStatus(ctx, account.ID, models.AccountStatusSuspended))

		got, err := repo.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("12.35").Equal(got.Balance), got.Balance.String())
		assert.Equal(t, models.AccountStatusSuspended, got.Status)

		assert.ErrorIs(t, repo.UpdateBalance(ctx, "missing", decimal.Zero), apperrors.ErrAccountNotFound)
		assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.AccountStatusActive), apperrors.ErrAccountNotFound)
	})
}

func TestLedgerRepository_TransactionIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLedgerRepository(sqlitetest.Open(t))

	account := newAccount("cust-1", "TRY")
	require.NoError(t, repo.CreateAccount(ctx, account))

	key := "idem-1"
	txn := &models.AccountingTransaction{
		AccountID:      account.ID,
		Direction:      models.DirectionCredit,
		Amount:         decimal.NewFromInt(10),
		Currency:       "TRY",
		BalanceBefore:  decimal.Zero,
		BalanceAfter:   decimal.NewFromInt(10),
		OperationType:  models.OperationTopUp,
		IdempotencyKey: &key,
		Status:         models.TransactionStatusCompleted,
	}
	require.NoError(t, repo.CreateTransaction(ctx, txn))

	dup := *txn
	dup.ID = ""
	err := repo.CreateTransaction(ctx, &dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	got, err := repo.GetTransactionByIdempotencyKey(ctx, account.ID, key)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)

	_, err = repo.GetTransactionByIdempotencyKey(ctx, account.ID, "other")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	// Postings without a key never collide with each other.
	for i := 0; i < 2; i++ {
		plain := *txn
		plain.ID = ""
		plain.IdempotencyKey = nil
		require.NoError(t, repo.CreateTransaction(ctx, &plain))
	}
}

func TestLedgerRepository_ListCustomerTransactions(t *testing.T) {
	ctx := context.Background()
	db := sqlitetest.Open(t)
	repo := repositories.NewLedgerRepository(db)

	try := newAccount("cust-1", "TRY")
	eur := newAccount("cust-1", "EUR")
	other := newAccount("cust-2", "TRY")
	for _, a := range []*models.Account{try, eur, other} {
		require.NoError(t, repo.CreateAccount(ctx, a))
	}

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	post := func(accountID, currency string, at time.Time) {
		txn := &models.AccountingTransaction{
			AccountID:     accountID,
			Direction:     models.DirectionCredit,
			Amount:        decimal.NewFromInt(1),
			Currency:      currency,
			BalanceBefore: decimal.Zero,
			BalanceAfter:  decimal.NewFromInt(1),
			OperationType: models.OperationTopUp,
			Status:        models.TransactionStatusCompleted,
			CreatedAt:     at,
		}
		require.NoError(t, repo.CreateTransaction(ctx, txn))
	}

	post(try.ID, "TRY", from)
	post(try.ID, "TRY", time.Date(2025, 1, 31, 23, 59, 59, 999_000_000, time.UTC))
	post(try.ID, "TRY", until)
	post(try.ID, "TRY", from.Add(-time.Millisecond))
	post(eur.ID, "EUR", from.Add(time.Hour))
	post(other.ID, "TRY", from.Add(time.Hour))

	txns, err := repo.ListCustomerTransactions(ctx, "cust-1", "TRY", from, until)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.True(t, txns[0].CreatedAt.Equal(from))
	assert.Equal(t, 31, txns[1].CreatedAt.Day())
}

func TestLedgerRepository_ExecuteInTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLedgerRepository(sqlitetest.Open(t))

	account := newAccount("cust-1", "TRY")
	require.NoError(t, repo.CreateAccount(ctx, account))

	err := repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		if err := tx.UpdateBalance(ctx, account.ID, decimal.NewFromInt(99)); err != nil {
			return err
		}
		return apperrors.ErrInsufficientBalance
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	got, err := repo.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestLedgerRepository_ListHistory(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLedgerRepository(sqlitetest.Open(t))

	account := newAccount("cust-1", "TRY")
	require.NoError(t, repo.CreateAccount(ctx, account))

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &models.AccountBalanceHistory{
			AccountID:     account.ID,
			TransactionID: "txn-" + string(rune('a'+i)),
			Direction:     models.DirectionCredit,
			Amount:        decimal.NewFromInt(1),
			Currency:      "TRY",
			BalanceBefore: decimal.NewFromInt(int64(i)),
			BalanceAfter:  decimal.NewFromInt(int64(i + 1)),
			OperationType: models.OperationTopUp,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateHistory(ctx, entry))
	}

	entries, total, err := repo.ListHistory(ctx, account.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	assert.Equal(t, "txn-c", entries[0].TransactionID)
	assert.Equal(t, "txn-b", entries[1].TransactionID)
}
