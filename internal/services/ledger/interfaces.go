package ledger

import (
	"context"

	"walletcore/internal/models"
)

// Service defines the ledger service interface
type Service interface {
	// Account operations
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error)
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	GetAccountByCustomer(ctx context.Context, customerID, currency string) (*models.Account, error)
	UpdateAccountStatus(ctx context.Context, accountID string, status models.AccountStatus) (*models.Account, error)

	// Postings
	PostTransaction(ctx context.Context, req PostRequest) (*PostResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	ListHistory(ctx context.Context, accountID string, limit, offset int) (*HistoryPage, error)

	// Usage aggregation
	GetUsage(ctx context.Context, req UsageRequest) (*UsageResult, error)
}
