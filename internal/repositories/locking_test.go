package repositories_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"walletcore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement gorm builds.
type sqlRecorder struct {
	logger.Interface
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.statements)
	return r.statements[len(r.statements)-1]
}

// openPostgresDryRun builds statements in the postgres dialect without a
// server. SQLite drops locking clauses, so row locks are checked here.
func openPostgresDryRun(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{Interface: logger.Discard}

	cfg := repositories.NewGormConfig()
	cfg.Logger = rec
	cfg.DryRun = true
	cfg.DisableAutomaticPing = true

	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=5432 user=walletcore dbname=walletcore sslmode=disable"), cfg)
	require.NoError(t, err)
	return db, rec
}

func TestLedgerRepository_GetAccountForUpdateLocksRow(t *testing.T) {
	db, rec := openPostgresDryRun(t)
	repo := repositories.NewLedgerRepository(db)

	_, err := repo.GetAccountForUpdate(context.Background(), "acc-1")
	require.NoError(t, err)

	sql := rec.last(t)
	assert.Contains(t, sql, `FROM "accounts"`)
	assert.True(t, strings.HasSuffix(sql, "FOR UPDATE"), sql)

	_, err = repo.GetAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.NotContains(t, rec.last(t), "FOR UPDATE")
}

func TestProcessRepository_ClaimStalledSkipsLockedRows(t *testing.T) {
	db, rec := openPostgresDryRun(t)
	repo := repositories.NewProcessRepository(db)

	_, err := repo.ClaimStalled(context.Background(), time.Now().UTC(), 10)
	require.NoError(t, err)

	sql := rec.last(t)
	assert.Contains(t, sql, `FROM "payment_processes"`)
	assert.Contains(t, sql, "workflow_started_at IS NULL")
	assert.Contains(t, sql, "resume_attempted_at IS NULL OR resume_attempted_at <")
	assert.True(t, strings.HasSuffix(sql, "FOR UPDATE SKIP LOCKED"), sql)
}
