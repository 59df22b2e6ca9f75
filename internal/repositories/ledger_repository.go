package repositories

import (
	"context"
	"errors"
	"time"

	"walletcore/internal/models"

	"github.com/shopspring/decimal"
)

// ErrRecordNotFound is returned for lookups that have no domain error of
// their own.
var ErrRecordNotFound = errors.New("record not found")

// LedgerRepository defines the account store and the posting store. Every
// balance change runs inside ExecuteInTransaction.
type LedgerRepository interface {
	// Account operations
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error)
	GetAccountByCustomer(ctx context.Context, customerID, currency string) (*models.Account, error)
	UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, accountID string, status models.AccountStatus) error

	// Posting operations
	CreateTransaction(ctx context.Context, txn *models.AccountingTransaction) error
	CreateHistory(ctx context.Context, entry *models.AccountBalanceHistory) error
	GetTransactionByIdempotencyKey(ctx context.Context, accountID, key string) (*models.AccountingTransaction, error)
	ListHistory(ctx context.Context, accountID string, limit, offset int) ([]models.AccountBalanceHistory, int64, error)

	// Usage queries. The range is half-open: from <= created_at < until.
	ListCustomerTransactions(ctx context.Context, customerID, currency string, from, until time.Time) ([]models.AccountingTransaction, error)

	ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error
}
