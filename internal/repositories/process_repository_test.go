package repositories_test

import (
	"context"
	"testing"
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"
	"walletcore/internal/repositories"
	"walletcore/internal/repositories/sqlitetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcess(key string) *models.PaymentProcess {
	return &models.PaymentProcess{
		CorrelationID:  uuid.NewString(),
		IdempotencyKey: key,
		CustomerID:     "cust-1",
		Type:           models.PaymentTypeTopUp,
		Status:         models.PaymentStatusRunning,
		Amount:         decimal.NewFromInt(500),
		Currency:       "TRY",
		Params:         models.NewJSON(map[string]interface{}{"channel": "card"}),
	}
}

func TestProcessRepository_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewProcessRepository(sqlitetest.Open(t))

	first := newProcess("K1")
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := newProcess("K1")
	created, err = repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.GetByIdempotencyKey(ctx, "K1")
	require.NoError(t, err)
	assert.Equal(t, first.CorrelationID, got.CorrelationID)
	assert.Equal(t, "card", got.Params["channel"])

	_, err = repo.GetByCorrelationID(ctx, second.CorrelationID)
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)
}

func TestProcessRepository_MarkWorkflowStartedOnce(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewProcessRepository(sqlitetest.Open(t))

	p := newProcess("K1")
	_, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, repo.MarkWorkflowStarted(ctx, p.ID, "instance-1", at))
	require.NoError(t, repo.MarkWorkflowStarted(ctx, p.ID, "instance-2", at.Add(time.Minute)))

	got, err := repo.GetByCorrelationID(ctx, p.CorrelationID)
	require.NoError(t, err)
	require.NotNil(t, got.WorkflowInstanceKey)
	assert.Equal(t, "instance-1", *got.WorkflowInstanceKey)
	require.NotNil(t, got.WorkflowStartedAt)
	assert.WithinDuration(t, at, *got.WorkflowStartedAt, time.Second)
}

func TestProcessRepository_MarkWorkflowStartedWithoutKey(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewProcessRepository(sqlitetest.Open(t))

	p := newProcess("K1")
	_, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	require.NoError(t, repo.MarkWorkflowStarted(ctx, p.ID, "", time.Now().UTC()))

	got, err := repo.GetByCorrelationID(ctx, p.CorrelationID)
	require.NoError(t, err)
	assert.Nil(t, got.WorkflowInstanceKey)
	assert.NotNil(t, got.WorkflowStartedAt)
}

func TestProcessRepository_CompleteRunning(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewProcessRepository(sqlitetest.Open(t))

	p := newProcess("K1")
	_, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	at := time.Now().UTC().Add(time.Minute)
	updated, err := repo.CompleteRunning(ctx, p.CorrelationID, models.PaymentStatusFailed, "INSUFFICIENT_BALANCE", "not enough funds", at)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.CompleteRunning(ctx, p.CorrelationID, models.PaymentStatusSucceeded, "", "", at)
	require.NoError(t, err)
	assert.False(t, updated, "terminal processes are never rewritten")

	got, err := repo.GetByCorrelationID(ctx, p.CorrelationID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, got.Status)
	assert.Equal(t, "INSUFFICIENT_BALANCE", got.ErrorCode)
	assert.Equal(t, "not enough funds", got.ErrorMessage)
}

func claimStalled(t *testing.T, repo repositories.ProcessRepository, before time.Time) []models.PaymentProcess {
	t.Helper()
	var claimed []models.PaymentProcess
	err := repo.ExecuteInTransaction(context.Background(), func(tx repositories.ProcessRepository) error {
		var err error
		claimed, err = tx.ClaimStalled(context.Background(), before, 10)
		return err
	})
	require.NoError(t, err)
	return claimed
}

func TestProcessRepository_ClaimStalled(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewProcessRepository(sqlitetest.Open(t))

	now := time.Now().UTC()

	stalled := newProcess("stalled")
	stalled.CreatedAt = now.Add(-10 * time.Minute)
	attached := newProcess("attached")
	attached.CreatedAt = now.Add(-10 * time.Minute)
	accepted := newProcess("accepted")
	accepted.CreatedAt = now.Add(-10 * time.Minute)
	fresh := newProcess("fresh")
	fresh.CreatedAt = now
	done := newProcess("done")
	done.CreatedAt = now.Add(-10 * time.Minute)
	done.Status = models.PaymentStatusSucceeded

	for _, p := range []*models.PaymentProcess{stalled, attached, accepted, fresh, done} {
		_, err := repo.CreateIfAbsent(ctx, p)
		require.NoError(t, err)
	}
	require.NoError(t, repo.MarkWorkflowStarted(ctx, attached.ID, "instance-1", now))
	require.NoError(t, repo.MarkWorkflowStarted(ctx, accepted.ID, "", now))

	claimed := claimStalled(t, repo, now.Add(-time.Minute))
	require.Len(t, claimed, 1)
	assert.Equal(t, stalled.ID, claimed[0].ID)
}

func TestProcessRepository_ClaimStalledHonoursLease(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewProcessRepository(sqlitetest.Open(t))

	now := time.Now().UTC()
	p := newProcess("stalled")
	p.CreatedAt = now.Add(-10 * time.Minute)
	_, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	require.NoError(t, repo.MarkResumeAttempted(ctx, []string{p.ID}, now))

	assert.Empty(t, claimStalled(t, repo, now.Add(-time.Minute)), "leased rows wait for the next window")

	claimed := claimStalled(t, repo, now.Add(time.Minute))
	require.Len(t, claimed, 1)
	assert.Equal(t, p.ID, claimed[0].ID)

	require.NoError(t, repo.MarkResumeAttempted(ctx, nil, now))
}
