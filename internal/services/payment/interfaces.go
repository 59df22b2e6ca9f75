package payment

import (
	"context"
	"time"

	"walletcore/internal/models"
)

// Service defines the payment process tracker interface
type Service interface {
	// StartOperation records a process once per idempotency key and asks the
	// workflow engine to run it. Replays return the stored process unchanged.
	StartOperation(ctx context.Context, req StartRequest) (*StartResult, error)
	GetStatus(ctx context.Context, correlationID string) (*models.PaymentProcess, error)

	// CompleteOperation is the workflow callback path. It only moves Running
	// processes to Succeeded or Failed.
	CompleteOperation(ctx context.Context, req CompleteRequest) (*models.PaymentProcess, error)

	// ResumePending re-triggers the workflow for Running processes older than
	// olderThan whose start was never accepted. Each process is attempted at
	// most once per olderThan window.
	ResumePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// WorkflowStarter triggers a process instance in the external workflow
// engine. An empty key with a nil error means the engine accepted the
// request without returning a handle.
type WorkflowStarter interface {
	StartPaymentWorkflow(ctx context.Context, processDefinitionKey string, variables map[string]interface{}) (string, error)
}
