package limit

import (
	"time"

	"walletcore/internal/models"

	"github.com/shopspring/decimal"
)

const (
	ReasonDefinitionNotFound = "definition not found"
	ReasonNoCustomerLimit    = "no limit configured for this customer"
	ReasonWithinLimit        = "within limit"
	ReasonLimitExceeded      = "limit exceeded"
)

type Config struct {
	Now func() time.Time
}

// CheckRequest carries an optional date. Omitted parts default to today
// (UTC) and are then reduced to the definition's period.
type CheckRequest struct {
	CustomerID        string
	LimitDefinitionID string
	Value             decimal.Decimal
	Year              *int
	Month             *int
	Day               *int
}

type CheckResult struct {
	Allowed        bool
	Reason         string
	RequestedValue decimal.Decimal
	// LimitValue is nil when no customer limit applies.
	LimitValue *decimal.Decimal
	Period     models.Period
	Year       int
	Month      int
	Day        int
}

type DefinitionRequest struct {
	Code       string
	Name       string
	Period     models.Period
	MetricType models.MetricType
	IsVisible  bool
}

type SetLimitRequest struct {
	CustomerID        string
	LimitDefinitionID string
	Year              *int
	Month             *int
	Day               *int
	Value             decimal.Decimal
	Currency          string
	Source            models.LimitSource
	Reason            string
	Actor             string
}

// MetricsCollector defines the interface for collecting limit metrics
type MetricsCollector interface {
	RecordCheck(definitionCode string, allowed bool)
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
}
