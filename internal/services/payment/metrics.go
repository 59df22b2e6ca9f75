package payment

import (
	"time"

	"walletcore/internal/models"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)                   {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)                            {}
func (n *NoopMetricsCollector) RecordProcessStarted(models.PaymentType)                         {}
func (n *NoopMetricsCollector) RecordProcessCompleted(models.PaymentType, models.PaymentStatus) {}
func (n *NoopMetricsCollector) RecordReplay(string)                                             {}
func (n *NoopMetricsCollector) RecordWorkflowStartFailure(models.PaymentType)                   {}
