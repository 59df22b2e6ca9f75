package limit

import (
	"context"

	"walletcore/internal/models"
)

// Service defines the limit evaluator interface
type Service interface {
	// Check compares a proposed value with the customer's configured cap.
	// It does not read historical usage.
	Check(ctx context.Context, req CheckRequest) (*CheckResult, error)

	// Administration
	CreateDefinition(ctx context.Context, req DefinitionRequest) (*models.LimitDefinition, error)
	ListDefinitions(ctx context.Context, visibleOnly bool) ([]models.LimitDefinition, error)
	SetCustomerLimit(ctx context.Context, req SetLimitRequest) (*models.CustomerLimit, error)
}

// DefinitionCache is a read-through cache for limit definitions. A miss
// returns nil without error.
type DefinitionCache interface {
	GetDefinition(ctx context.Context, id string) (*models.LimitDefinition, error)
	SetDefinition(ctx context.Context, def *models.LimitDefinition) error
}
