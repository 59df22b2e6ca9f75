package repositories_test

import (
	"context"
	"testing"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"
	"walletcore/internal/repositories"
	"walletcore/internal/repositories/sqlitetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitRepository_Definitions(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLimitRepository(sqlitetest.Open(t))

	monthly := &models.LimitDefinition{Code: "MONTHLY_TRANSFER", Name: "Monthly transfer", Period: models.PeriodMonth, MetricType: models.MetricAmount, IsVisible: true}
	hidden := &models.LimitDefinition{Code: "DAILY_COUNT", Name: "Daily count", Period: models.PeriodDay, MetricType: models.MetricCount}
	require.NoError(t, repo.CreateDefinition(ctx, monthly))
	require.NoError(t, repo.CreateDefinition(ctx, hidden))

	err := repo.CreateDefinition(ctx, &models.LimitDefinition{Code: "MONTHLY_TRANSFER", Name: "dup", Period: models.PeriodMonth, MetricType: models.MetricAmount})
	assert.ErrorIs(t, err, apperrors.ErrLimitDefinitionExists)

	got, err := repo.GetDefinitionByCode(ctx, "MONTHLY_TRANSFER")
	require.NoError(t, err)
	assert.Equal(t, monthly.ID, got.ID)

	_, err = repo.GetDefinition(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrLimitDefinitionNotFound)

	all, err := repo.ListDefinitions(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := repo.ListDefinitions(ctx, true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "MONTHLY_TRANSFER", visible[0].Code)
}

func TestLimitRepository_UpsertCustomerLimit(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLimitRepository(sqlitetest.Open(t))

	def := &models.LimitDefinition{Code: "MONTHLY_TRANSFER", Name: "Monthly transfer", Period: models.PeriodMonth, MetricType: models.MetricAmount}
	require.NoError(t, repo.CreateDefinition(ctx, def))

	limit := &models.CustomerLimit{
		CustomerID:        "cust-1",
		LimitDefinitionID: def.ID,
		Year:              2025,
		Month:             1,
		Value:             decimal.NewFromInt(15000),
		Currency:          "TRY",
		Source:            models.LimitSourceSystem,
		CreatedBy:         "seed",
	}
	require.NoError(t, repo.UpsertCustomerLimit(ctx, limit))

	update := &models.CustomerLimit{
		CustomerID:        "cust-1",
		LimitDefinitionID: def.ID,
		Year:              2025,
		Month:             1,
		Value:             decimal.NewFromInt(20000),
		Currency:          "TRY",
		Source:            models.LimitSourceAdmin,
		Reason:            "raised by support",
		UpdatedBy:         "admin-7",
	}
	require.NoError(t, repo.UpsertCustomerLimit(ctx, update))

	got, err := repo.GetCustomerLimit(ctx, "cust-1", def.ID, 2025, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, limit.ID, got.ID, "upsert keeps the original row")
	assert.True(t, decimal.NewFromInt(20000).Equal(got.Value))
	assert.Equal(t, models.LimitSourceAdmin, got.Source)
	assert.Equal(t, "seed", got.CreatedBy)
	assert.Equal(t, "admin-7", got.UpdatedBy)

	_, err = repo.GetCustomerLimit(ctx, "cust-1", def.ID, 2025, 2, 0)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}
