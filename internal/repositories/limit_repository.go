package repositories

import (
	"context"
	"errors"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LimitRepository stores limit definitions and per-customer caps. It is
// independent of the ledger tables.
type LimitRepository interface {
	CreateDefinition(ctx context.Context, def *models.LimitDefinition) error
	GetDefinition(ctx context.Context, id string) (*models.LimitDefinition, error)
	GetDefinitionByCode(ctx context.Context, code string) (*models.LimitDefinition, error)
	ListDefinitions(ctx context.Context, visibleOnly bool) ([]models.LimitDefinition, error)

	// GetCustomerLimit expects an already normalized year/month/day key.
	GetCustomerLimit(ctx context.Context, customerID, definitionID string, year, month, day int) (*models.CustomerLimit, error)
	UpsertCustomerLimit(ctx context.Context, limit *models.CustomerLimit) error
}

type limitRepository struct {
	db *gorm.DB
}

func NewLimitRepository(db *gorm.DB) LimitRepository {
	return &limitRepository{db: db}
}

func (r *limitRepository) CreateDefinition(ctx context.Context, def *models.LimitDefinition) error {
	if err := r.db.WithContext(ctx).Create(def).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrLimitDefinitionExists
		}
		return apperrors.Unavailable("create limit definition", err)
	}
	return nil
}

func (r *limitRepository) GetDefinition(ctx context.Context, id string) (*models.LimitDefinition, error) {
	return r.firstDefinition(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *limitRepository) GetDefinitionByCode(ctx context.Context, code string) (*models.LimitDefinition, error) {
	return r.firstDefinition(r.db.WithContext(ctx).Where("code = ?", code))
}

func (r *limitRepository) firstDefinition(q *gorm.DB) (*models.LimitDefinition, error) {
	var def models.LimitDefinition
	if err := q.First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLimitDefinitionNotFound
		}
		return nil, apperrors.Unavailable("get limit definition", err)
	}
	return &def, nil
}

func (r *limitRepository) ListDefinitions(ctx context.Context, visibleOnly bool) ([]models.LimitDefinition, error) {
	var defs []models.LimitDefinition
	q := r.db.WithContext(ctx).Order("code ASC")
	if visibleOnly {
		q = q.Where("is_visible = ?", true)
	}
	if err := q.Find(&defs).Error; err != nil {
		return nil, apperrors.Unavailable("list limit definitions", err)
	}
	return defs, nil
}

func (r *limitRepository) GetCustomerLimit(ctx context.Context, customerID, definitionID string, year, month, day int) (*models.CustomerLimit, error) {
	var limit models.CustomerLimit
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND limit_definition_id = ? AND year = ? AND month = ? AND day = ?",
			customerID, definitionID, year, month, day).
		First(&limit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, apperrors.Unavailable("get customer limit", err)
	}
	return &limit, nil
}

func (r *limitRepository) UpsertCustomerLimit(ctx context.Context, limit *models.CustomerLimit) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "customer_id"},
				{Name: "limit_definition_id"},
				{Name: "year"},
				{Name: "month"},
				{Name: "day"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"value", "currency", "source", "reason", "updated_by", "updated_at"}),
		}).
		Create(limit).Error
	if err != nil {
		return apperrors.Unavailable("upsert customer limit", err)
	}
	return nil
}
