package payment

import (
	"time"

	"walletcore/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds configuration for the process tracker
type Config struct {
	// ProcessDefinitions maps each payment type to its workflow definition key.
	ProcessDefinitions map[models.PaymentType]string
	// StartTimeout bounds every call to the workflow starter.
	StartTimeout time.Duration
	Now          func() time.Time
}

// StartRequest represents a top-up or transfer request
type StartRequest struct {
	IdempotencyKey string
	CustomerID     string
	Type           models.PaymentType
	Amount         decimal.Decimal
	Currency       string
	// Params carries type specific fields such as the receiver of a transfer.
	// They are stored with the process and passed to the workflow.
	Params map[string]interface{}
}

type StartResult struct {
	CorrelationID string
	Status        models.PaymentStatus
	Replayed      bool
}

type CompleteRequest struct {
	CorrelationID string
	Status        models.PaymentStatus
	ErrorCode     string
	ErrorMessage  string
}

// MetricsCollector defines the interface for collecting process metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordProcessStarted(paymentType models.PaymentType)
	RecordProcessCompleted(paymentType models.PaymentType, status models.PaymentStatus)
	RecordReplay(operation string)
	RecordWorkflowStartFailure(paymentType models.PaymentType)
}
