package repositories

import (
	"context"
	"errors"
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProcessRepository stores payment processes. Idempotency-key uniqueness is
// enforced by the unique index, not by a prior existence check.
type ProcessRepository interface {
	// CreateIfAbsent inserts p unless a row with the same idempotency key
	// exists. created is false when another row won.
	CreateIfAbsent(ctx context.Context, p *models.PaymentProcess) (created bool, err error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.PaymentProcess, error)
	GetByCorrelationID(ctx context.Context, correlationID string) (*models.PaymentProcess, error)
	// MarkWorkflowStarted records that the engine accepted the start. The
	// instance key is stored only when non-empty, and only the first mark
	// takes effect.
	MarkWorkflowStarted(ctx context.Context, id, instanceKey string, at time.Time) error
	// CompleteRunning moves a Running process to a terminal status. updated
	// is false when the process was not Running.
	CompleteRunning(ctx context.Context, correlationID string, status models.PaymentStatus, errorCode, errorMessage string, at time.Time) (updated bool, err error)
	// ClaimStalled locks Running processes whose workflow was never accepted,
	// created before the cutoff and not attempted since. Rows locked by
	// another claimer are skipped.
	ClaimStalled(ctx context.Context, before time.Time, limit int) ([]models.PaymentProcess, error)
	// MarkResumeAttempted leases claimed rows until the next cutoff passes at.
	MarkResumeAttempted(ctx context.Context, ids []string, at time.Time) error

	ExecuteInTransaction(ctx context.Context, fn func(ProcessRepository) error) error
}

type processRepository struct {
	db *gorm.DB
}

func NewProcessRepository(db *gorm.DB) ProcessRepository {
	return &processRepository{db: db}
}

func (r *processRepository) CreateIfAbsent(ctx context.Context, p *models.PaymentProcess) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, apperrors.Unavailable("create payment process", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *processRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.PaymentProcess, error) {
	return r.first(r.db.WithContext(ctx).Where("idempotency_key = ?", key), "get process by idempotency key")
}

func (r *processRepository) GetByCorrelationID(ctx context.Context, correlationID string) (*models.PaymentProcess, error) {
	return r.first(r.db.WithContext(ctx).Where("correlation_id = ?", correlationID), "get process by correlation id")
}

func (r *processRepository) first(q *gorm.DB, op string) (*models.PaymentProcess, error) {
	var p models.PaymentProcess
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Unavailable(op, err)
	}
	return &p, nil
}

func (r *processRepository) MarkWorkflowStarted(ctx context.Context, id, instanceKey string, at time.Time) error {
	updates := map[string]interface{}{"workflow_started_at": at}
	if instanceKey != "" {
		updates["workflow_instance_key"] = instanceKey
	}
	result := r.db.WithContext(ctx).
		Model(&models.PaymentProcess{}).
		Where("id = ? AND workflow_started_at IS NULL", id).
		Updates(updates)
	if result.Error != nil {
		return apperrors.Unavailable("mark workflow started", result.Error)
	}
	return nil
}

func (r *processRepository) CompleteRunning(ctx context.Context, correlationID string, status models.PaymentStatus, errorCode, errorMessage string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentProcess{}).
		Where("correlation_id = ? AND status = ?", correlationID, models.PaymentStatusRunning).
		Updates(map[string]interface{}{
			"status":        status,
			"error_code":    errorCode,
			"error_message": errorMessage,
			"updated_at":    at,
		})
	if result.Error != nil {
		return false, apperrors.Unavailable("complete payment process", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *processRepository) ClaimStalled(ctx context.Context, before time.Time, limit int) ([]models.PaymentProcess, error) {
	var processes []models.PaymentProcess
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND workflow_started_at IS NULL AND workflow_instance_key IS NULL AND created_at < ?", models.PaymentStatusRunning, before).
		Where("(resume_attempted_at IS NULL OR resume_attempted_at < ?)", before).
		Order("created_at ASC").
		Limit(limit).
		Find(&processes).Error
	if err != nil {
		return nil, apperrors.Unavailable("claim stalled processes", err)
	}
	return processes, nil
}

func (r *processRepository) MarkResumeAttempted(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.PaymentProcess{}).
		Where("id IN ?", ids).
		Update("resume_attempted_at", at).Error
	if err != nil {
		return apperrors.Unavailable("mark resume attempted", err)
	}
	return nil
}

func (r *processRepository) ExecuteInTransaction(ctx context.Context, fn func(ProcessRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&processRepository{db: tx})
	})
}
