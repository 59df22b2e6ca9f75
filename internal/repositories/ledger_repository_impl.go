package repositories

import (
	"context"
	"errors"
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{
		db: db,
	}
}

func (r *ledgerRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAccountAlreadyExists
		}
		return apperrors.Unavailable("create account", err)
	}
	return nil
}

func (r *ledgerRepository) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return r.firstAccount(r.db.WithContext(ctx).Where("id = ?", id), "get account")
}

// GetAccountForUpdate takes a row lock on the account until the surrounding
// transaction ends.
func (r *ledgerRepository) GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id)
	return r.firstAccount(q, "lock account")
}

func (r *ledgerRepository) GetAccountByCustomer(ctx context.Context, customerID, currency string) (*models.Account, error) {
	q := r.db.WithContext(ctx).Where("customer_id = ? AND currency = ?", customerID, currency)
	return r.firstAccount(q, "get customer account")
}

func (r *ledgerRepository) firstAccount(q *gorm.DB, op string) (*models.Account, error) {
	var account models.Account
	if err := q.First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Unavailable(op, err)
	}
	return &account, nil
}

func (r *ledgerRepository) UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", balance.Round(2))
	if result.Error != nil {
		return apperrors.Unavailable("update balance", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

func (r *ledgerRepository) UpdateStatus(ctx context.Context, accountID string, status models.AccountStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("status", status)
	if result.Error != nil {
		return apperrors.Unavailable("update account status", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, txn *models.AccountingTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return apperrors.Unavailable("create transaction", err)
	}
	return nil
}

func (r *ledgerRepository) CreateHistory(ctx context.Context, entry *models.AccountBalanceHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperrors.Unavailable("create balance history", err)
	}
	return nil
}

func (r *ledgerRepository) GetTransactionByIdempotencyKey(ctx context.Context, accountID, key string) (*models.AccountingTransaction, error) {
	var txn models.AccountingTransaction
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND idempotency_key = ?", accountID, key).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, apperrors.Unavailable("get transaction", err)
	}
	return &txn, nil
}

func (r *ledgerRepository) ListHistory(ctx context.Context, accountID string, limit, offset int) ([]models.AccountBalanceHistory, int64, error) {
	var (
		entries []models.AccountBalanceHistory
		total   int64
	)
	q := r.db.WithContext(ctx).
		Model(&models.AccountBalanceHistory{}).
		Where("account_id = ?", accountID).
		Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Unavailable("count balance history", err)
	}
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, apperrors.Unavailable("list balance history", err)
	}
	return entries, total, nil
}

func (r *ledgerRepository) ListCustomerTransactions(ctx context.Context, customerID, currency string, from, until time.Time) ([]models.AccountingTransaction, error) {
	var txns []models.AccountingTransaction
	err := r.db.WithContext(ctx).
		Model(&models.AccountingTransaction{}).
		Select("accounting_transactions.*").
		Joins("JOIN accounts ON accounts.id = accounting_transactions.account_id").
		Where("accounts.customer_id = ? AND accounting_transactions.currency = ?", customerID, currency).
		Where("accounting_transactions.created_at >= ? AND accounting_transactions.created_at < ?", from, until).
		Order("accounting_transactions.created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, apperrors.Unavailable("list customer transactions", err)
	}
	return txns, nil
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &ledgerRepository{db: tx}
		return fn(txRepo)
	})
}
