package limit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"
	"walletcore/internal/repositories"
	"walletcore/internal/validation"
)

type service struct {
	repo    repositories.LimitRepository
	cache   DefinitionCache
	config  Config
	metrics MetricsCollector
	log     *slog.Logger
}

// NewService creates a new limit service. cache may be nil.
func NewService(repo repositories.LimitRepository, cache DefinitionCache, config Config, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		cache = NoopDefinitionCache{}
	}
	if config.Now == nil {
		config.Now = func() time.Time { return time.Now().UTC() }
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		cache:   cache,
		config:  config,
		metrics: metrics,
		log:     slog.Default().With("component", "limit"),
	}
}

func (s *service) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.LimitDefinitionID = strings.TrimSpace(req.LimitDefinitionID)

	v := validation.New()
	v.Required("customerId", req.CustomerID)
	v.Required("limitDefinitionId", req.LimitDefinitionID)
	v.Check(!req.Value.IsNegative(), "value", "must not be negative")
	if err := v.Err(); err != nil {
		return nil, err
	}

	result := &CheckResult{RequestedValue: req.Value}

	def, err := s.definition(ctx, req.LimitDefinitionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLimitDefinitionNotFound) {
			// Missing configuration denies, unlike a missing customer limit.
			result.Reason = ReasonDefinitionNotFound
			return result, nil
		}
		return nil, err
	}
	result.Period = def.Period

	year, month, day, err := resolveKey(def.Period, s.config.Now(), req.Year, req.Month, req.Day)
	if err != nil {
		return nil, err
	}
	result.Year, result.Month, result.Day = year, month, day

	customerLimit, err := s.repo.GetCustomerLimit(ctx, req.CustomerID, def.ID, year, month, day)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			result.Allowed = true
			result.Reason = ReasonNoCustomerLimit
			s.metrics.RecordCheck(def.Code, true)
			return result, nil
		}
		return nil, err
	}

	limitValue := customerLimit.Value
	result.LimitValue = &limitValue
	result.Allowed = req.Value.LessThanOrEqual(limitValue)
	result.Reason = ReasonWithinLimit
	if !result.Allowed {
		result.Reason = ReasonLimitExceeded
		s.log.Info("limit check denied",
			"customer_id", req.CustomerID,
			"definition", def.Code,
			"requested", req.Value.String(),
			"limit", limitValue.String())
	}
	s.metrics.RecordCheck(def.Code, result.Allowed)
	return result, nil
}

// definition reads through the cache. Cache failures fall back to the store.
func (s *service) definition(ctx context.Context, id string) (*models.LimitDefinition, error) {
	cached, err := s.cache.GetDefinition(ctx, id)
	if err != nil {
		s.log.Warn("limit definition cache read failed", "definition_id", id, "error", err)
	}
	if cached != nil {
		s.metrics.RecordCacheHit("limit_definition")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("limit_definition")

	def, err := s.repo.GetDefinition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetDefinition(ctx, def); err != nil {
		s.log.Warn("limit definition cache write failed", "definition_id", id, "error", err)
	}
	return def, nil
}

func (s *service) CreateDefinition(ctx context.Context, req DefinitionRequest) (*models.LimitDefinition, error) {
	req.Code = normalizeCode(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	period, perr := models.ParsePeriod(string(req.Period))
	metricType, merr := models.ParseMetricType(string(req.MetricType))

	v := validation.New()
	v.Required("code", req.Code)
	v.MaxLength("code", req.Code, 64)
	v.Required("name", req.Name)
	v.MaxLength("name", req.Name, 128)
	v.Check(perr == nil, "period", "must be Day, Month or Year")
	v.Check(merr == nil, "metricType", "must be Amount, Count or Balance")
	if err := v.Err(); err != nil {
		return nil, err
	}

	def := &models.LimitDefinition{
		Code:       req.Code,
		Name:       req.Name,
		Period:     period,
		MetricType: metricType,
		IsVisible:  req.IsVisible,
	}
	if err := s.repo.CreateDefinition(ctx, def); err != nil {
		return nil, err
	}
	if err := s.cache.SetDefinition(ctx, def); err != nil {
		s.log.Warn("limit definition cache write failed", "definition_id", def.ID, "error", err)
	}

	s.log.Info("limit definition created", "definition_id", def.ID, "code", def.Code, "period", def.Period)
	return def, nil
}

func (s *service) ListDefinitions(ctx context.Context, visibleOnly bool) ([]models.LimitDefinition, error) {
	return s.repo.ListDefinitions(ctx, visibleOnly)
}

// SetCustomerLimit creates or replaces the cap at the normalized key.
func (s *service) SetCustomerLimit(ctx context.Context, req SetLimitRequest) (*models.CustomerLimit, error) {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.LimitDefinitionID = strings.TrimSpace(req.LimitDefinitionID)
	req.Currency = validation.NormalizeCurrency(req.Currency)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Source == "" {
		req.Source = models.LimitSourceAdmin
	}
	source, serr := models.ParseLimitSource(string(req.Source))

	v := validation.New()
	v.Required("customerId", req.CustomerID)
	v.Required("limitDefinitionId", req.LimitDefinitionID)
	v.NonNegativeAmount("value", req.Value)
	if req.Currency != "" {
		v.Currency("currency", req.Currency)
	}
	v.Check(serr == nil, "source", "must be System, Migration or Admin")
	v.MaxLength("reason", req.Reason, validation.MaxReasonLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	def, err := s.definition(ctx, req.LimitDefinitionID)
	if err != nil {
		return nil, err
	}
	year, month, day, err := resolveKey(def.Period, s.config.Now(), req.Year, req.Month, req.Day)
	if err != nil {
		return nil, err
	}

	limit := &models.CustomerLimit{
		CustomerID:        req.CustomerID,
		LimitDefinitionID: def.ID,
		Year:              year,
		Month:             month,
		Day:               day,
		Value:             req.Value.Round(validation.AmountScale),
		Currency:          req.Currency,
		Source:            source,
		Reason:            req.Reason,
		CreatedBy:         req.Actor,
		UpdatedBy:         req.Actor,
	}
	if err := s.repo.UpsertCustomerLimit(ctx, limit); err != nil {
		return nil, err
	}

	// The upsert may have kept an existing row, so read back the stored one.
	stored, err := s.repo.GetCustomerLimit(ctx, req.CustomerID, def.ID, year, month, day)
	if err != nil {
		return nil, apperrors.Unavailable("read customer limit", err)
	}

	s.log.Info("customer limit set",
		"customer_id", stored.CustomerID,
		"definition", def.Code,
		"value", stored.Value.String(),
		"source", stored.Source,
		"actor", req.Actor)
	return stored, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NoopDefinitionCache always misses.
type NoopDefinitionCache struct{}

func (NoopDefinitionCache) GetDefinition(context.Context, string) (*models.LimitDefinition, error) {
	return nil, nil
}

func (NoopDefinitionCache) SetDefinition(context.Context, *models.LimitDefinition) error {
	return nil
}
