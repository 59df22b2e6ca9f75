package ledger

import (
	"time"

	"walletcore/internal/models"

	"github.com/shopspring/decimal"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)           {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)                    {}
func (n *NoopMetricsCollector) RecordPosting(models.Direction, string, decimal.Decimal) {}
func (n *NoopMetricsCollector) RecordReplay(string)                                     {}
