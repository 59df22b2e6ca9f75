package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"
	"walletcore/internal/repositories"
	"walletcore/internal/validation"

	"github.com/google/uuid"
)

const (
	DefaultStartTimeout = 5 * time.Second
	DefaultResumeBatch  = 50

	// ParamToAccountID is the transfer receiver carried in StartRequest.Params.
	ParamToAccountID = "toAccountId"
)

var reservedVariables = map[string]struct{}{
	"correlationId":  {},
	"idempotencyKey": {},
	"customerId":     {},
	"type":           {},
	"amount":         {},
	"currency":       {},
}

type service struct {
	repo    repositories.ProcessRepository
	starter WorkflowStarter
	config  Config
	metrics MetricsCollector
	log     *slog.Logger
}

// NewService creates a new payment process tracker
func NewService(
	repo repositories.ProcessRepository,
	starter WorkflowStarter,
	config Config,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if starter == nil {
		panic("workflow starter is required")
	}

	if config.ProcessDefinitions == nil {
		config.ProcessDefinitions = map[models.PaymentType]string{
			models.PaymentTypeTopUp:    "wallet-topup",
			models.PaymentTypeTransfer: "wallet-transfer",
		}
	}
	if config.StartTimeout <= 0 {
		config.StartTimeout = DefaultStartTimeout
	}
	if config.Now == nil {
		config.Now = func() time.Time { return time.Now().UTC() }
	}

	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		starter: starter,
		config:  config,
		metrics: metrics,
		log:     slog.Default().With("component", "payment"),
	}
}

func (s *service) StartOperation(ctx context.Context, req StartRequest) (result *StartResult, err error) {
	defer s.observe("start_operation", time.Now(), &err)

	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.IdempotencyKey == "" {
		return nil, apperrors.Validation("idempotencyKey must not be empty")
	}
	if len(req.IdempotencyKey) > validation.MaxIdempotencyKeyLength {
		return nil, apperrors.Validation("idempotencyKey must not be more than %d characters long", validation.MaxIdempotencyKeyLength)
	}

	// A known key is answered from the store before validation.
	existing, err := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
	switch {
	case err == nil:
		return s.replay(existing), nil
	case !errors.Is(err, apperrors.ErrPaymentNotFound):
		return nil, err
	}

	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.Currency = validation.NormalizeCurrency(req.Currency)
	if err := validateStart(req); err != nil {
		return nil, err
	}

	process := &models.PaymentProcess{
		CorrelationID:  uuid.NewString(),
		IdempotencyKey: req.IdempotencyKey,
		CustomerID:     req.CustomerID,
		Type:           req.Type,
		Status:         models.PaymentStatusRunning,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Params:         models.NewJSON(req.Params),
	}
	created, err := s.repo.CreateIfAbsent(ctx, process)
	if err != nil {
		return nil, err
	}
	if !created {
		winner, err := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, apperrors.Unavailable("load concurrent process", err)
		}
		return s.replay(winner), nil
	}

	s.metrics.RecordProcessStarted(process.Type)
	s.log.Info("payment process created",
		"correlation_id", process.CorrelationID,
		"idempotency_key", process.IdempotencyKey,
		"customer_id", process.CustomerID,
		"type", process.Type)

	// The process exists from here on. A failed workflow start leaves it
	// Running and unstarted for ResumePending to pick up.
	if err := s.trigger(ctx, process); err != nil {
		s.log.Warn("workflow start failed, process left for resume",
			"correlation_id", process.CorrelationID,
			"error", err)
	}

	return &StartResult{
		CorrelationID: process.CorrelationID,
		Status:        models.PaymentStatusRunning,
	}, nil
}

func (s *service) replay(p *models.PaymentProcess) *StartResult {
	s.metrics.RecordReplay("start_operation")
	s.log.Info("payment process replayed",
		"correlation_id", p.CorrelationID,
		"idempotency_key", p.IdempotencyKey,
		"status", p.Status)
	return &StartResult{CorrelationID: p.CorrelationID, Status: p.Status, Replayed: true}
}

func validateStart(req StartRequest) error {
	v := validation.New()
	v.Required("customerId", req.CustomerID)
	v.Check(req.Type.Valid(), "type", "must be Transfer or TopUp")
	v.PositiveAmount("amount", req.Amount)
	v.Currency("currency", req.Currency)
	if req.Type == models.PaymentTypeTransfer {
		to, _ := req.Params[ParamToAccountID].(string)
		v.Required(ParamToAccountID, to)
	}
	return v.Err()
}

// trigger starts the workflow for p and marks it started. An accepted start
// without an instance key still counts as started.
func (s *service) trigger(ctx context.Context, p *models.PaymentProcess) error {
	definition, ok := s.config.ProcessDefinitions[p.Type]
	if !ok || definition == "" {
		return fmt.Errorf("no workflow definition configured for %s", p.Type)
	}

	startCtx, cancel := context.WithTimeout(ctx, s.config.StartTimeout)
	defer cancel()

	instanceKey, err := s.starter.StartPaymentWorkflow(startCtx, definition, variables(p))
	if err != nil {
		s.metrics.RecordWorkflowStartFailure(p.Type)
		return fmt.Errorf("start workflow %s: %w", definition, err)
	}

	startedAt := s.config.Now()
	if err := s.repo.MarkWorkflowStarted(ctx, p.ID, instanceKey, startedAt); err != nil {
		s.log.Error("workflow accepted but start was not recorded",
			"correlation_id", p.CorrelationID,
			"workflow_instance_key", instanceKey,
			"error", err)
		return err
	}
	p.WorkflowStartedAt = &startedAt
	if instanceKey != "" {
		p.WorkflowInstanceKey = &instanceKey
	}
	s.log.Info("workflow started",
		"correlation_id", p.CorrelationID,
		"workflow_instance_key", instanceKey)
	return nil
}

func variables(p *models.PaymentProcess) map[string]interface{} {
	vars := make(map[string]interface{}, len(p.Params)+len(reservedVariables))
	for k, v := range p.Params {
		if _, reserved := reservedVariables[k]; !reserved {
			vars[k] = v
		}
	}
	vars["correlationId"] = p.CorrelationID
	vars["idempotencyKey"] = p.IdempotencyKey
	vars["customerId"] = p.CustomerID
	vars["type"] = string(p.Type)
	vars["amount"] = p.Amount.StringFixed(validation.AmountScale)
	vars["currency"] = p.Currency
	return vars
}

func (s *service) GetStatus(ctx context.Context, correlationID string) (*models.PaymentProcess, error) {
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return nil, apperrors.Validation("correlationId must not be empty")
	}
	return s.repo.GetByCorrelationID(ctx, correlationID)
}

func (s *service) CompleteOperation(ctx context.Context, req CompleteRequest) (process *models.PaymentProcess, err error) {
	defer s.observe("complete_operation", time.Now(), &err)

	req.CorrelationID = strings.TrimSpace(req.CorrelationID)
	status, perr := models.ParsePaymentStatus(string(req.Status))

	v := validation.New()
	v.Required("correlationId", req.CorrelationID)
	v.Check(perr == nil && status.Terminal(), "status", "must be Succeeded or Failed")
	v.MaxLength("errorCode", req.ErrorCode, 64)
	v.MaxLength("errorMessage", req.ErrorMessage, 512)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if status == models.PaymentStatusSucceeded {
		req.ErrorCode, req.ErrorMessage = "", ""
	}

	updated, err := s.repo.CompleteRunning(ctx, req.CorrelationID, status, req.ErrorCode, req.ErrorMessage, s.config.Now())
	if err != nil {
		return nil, err
	}

	process, err = s.repo.GetByCorrelationID(ctx, req.CorrelationID)
	if err != nil {
		return nil, err
	}
	if !updated {
		if process.Status == status {
			return process, nil
		}
		return nil, apperrors.ErrInvalidStatusTransition.WithMessage(
			"payment process is %s, cannot move to %s", process.Status, status)
	}

	s.metrics.RecordProcessCompleted(process.Type, process.Status)
	s.log.Info("payment process completed",
		"correlation_id", process.CorrelationID,
		"status", process.Status,
		"error_code", process.ErrorCode)
	return process, nil
}

func (s *service) ResumePending(ctx context.Context, olderThan time.Duration, limit int) (resumed int, err error) {
	defer s.observe("resume_pending", time.Now(), &err)

	if limit <= 0 {
		limit = DefaultResumeBatch
	}
	now := s.config.Now()
	cutoff := now.Add(-olderThan)

	// Claim and lease in a short transaction so no row lock is held while
	// the engine is called. A leased row is not claimed again before the
	// next cutoff passes it.
	var claimed []models.PaymentProcess
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.ProcessRepository) error {
		stalled, err := tx.ClaimStalled(ctx, cutoff, limit)
		if err != nil || len(stalled) == 0 {
			return err
		}
		ids := make([]string, len(stalled))
		for i := range stalled {
			ids[i] = stalled[i].ID
		}
		if err := tx.MarkResumeAttempted(ctx, ids, now); err != nil {
			return err
		}
		claimed = stalled
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i := range claimed {
		p := &claimed[i]
		if err := s.trigger(ctx, p); err != nil {
			s.log.Warn("resume failed",
				"correlation_id", p.CorrelationID,
				"error", err)
			continue
		}
		resumed++
	}
	if resumed > 0 {
		s.log.Info("resumed stalled payment processes", "count", resumed)
	}
	return resumed, nil
}

func (s *service) observe(operation string, start time.Time, errp *error) {
	s.metrics.RecordOperationDuration(operation, time.Since(start))
	result := "success"
	if *errp != nil {
		result = "error"
		if code := apperrors.Code(*errp); code != "" {
			result = strings.ToLower(code)
		}
	}
	s.metrics.RecordOperationResult(operation, result)
}
