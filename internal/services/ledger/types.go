package ledger

import (
	"time"

	"walletcore/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds configuration for ledger operations
type Config struct {
	// Now is the clock used for usage reference dates. Defaults to UTC now.
	Now func() time.Time
	// AccountNumberPrefix is prepended to generated account numbers.
	AccountNumberPrefix string
	// MaxHistoryPage caps ListHistory page sizes.
	MaxHistoryPage int
}

type CreateAccountRequest struct {
	CustomerID string
	Currency   string
	IBAN       *string
}

// PostRequest is one signed posting against one account.
type PostRequest struct {
	AccountID     string
	Direction     models.Direction
	Amount        decimal.Decimal
	Currency      string
	OperationType models.OperationType
	ReferenceID   string
	// IdempotencyKey is optional. A repeated key on the same account returns
	// the original transaction without touching the balance.
	IdempotencyKey string
	CorrelationID  string
}

type PostResult struct {
	Transaction *models.AccountingTransaction
	Replayed    bool
}

// TransferRequest moves funds between two accounts of the same currency.
type TransferRequest struct {
	FromAccountID  string
	ToAccountID    string
	Amount         decimal.Decimal
	Currency       string
	ReferenceID    string
	IdempotencyKey string
	CorrelationID  string
}

type TransferResult struct {
	ReferenceID string
	Debit       *models.AccountingTransaction
	Credit      *models.AccountingTransaction
	Replayed    bool
}

type UsageRequest struct {
	CustomerID string
	Currency   string
	Period     models.Period
	// MetricType is echoed back. Defaults to Amount.
	MetricType models.MetricType
	// ReferenceDate defaults to today (UTC).
	ReferenceDate time.Time
}

// UsageResult covers the inclusive calendar days FromDate..ToDate.
type UsageResult struct {
	CustomerID string
	Currency   string
	Period     models.Period
	MetricType models.MetricType
	FromDate   time.Time
	ToDate     time.Time
	UsedAmount decimal.Decimal
	UsedCount  int64
}

type HistoryPage struct {
	Entries []models.AccountBalanceHistory
	Total   int64
	Limit   int
	Offset  int
}

// MetricsCollector defines the interface for collecting ledger metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordPosting(direction models.Direction, currency string, amount decimal.Decimal)
	RecordReplay(operation string)
}
