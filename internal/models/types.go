package models

import (
	"fmt"
	"strings"
)

// Direction is the sign of a ledger posting.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(DirectionDebit):
		return DirectionDebit, nil
	case string(DirectionCredit):
		return DirectionCredit, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// AccountStatus gates whether postings are accepted.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "Active"
	AccountStatusSuspended AccountStatus = "Suspended"
	AccountStatusClosed    AccountStatus = "Closed"
)

func ParseAccountStatus(s string) (AccountStatus, error) {
	for _, st := range []AccountStatus{AccountStatusActive, AccountStatusSuspended, AccountStatusClosed} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown account status %q", s)
}

// CanTransitionTo reports whether an account may move from s to next.
// Closed is terminal.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	switch s {
	case AccountStatusActive:
		return next == AccountStatusSuspended || next == AccountStatusClosed
	case AccountStatusSuspended:
		return next == AccountStatusActive || next == AccountStatusClosed
	}
	return false
}

// TransactionStatus of an accounting transaction. Postings are only ever
// persisted once they are complete.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "Completed"
)

// OperationType is the integer business code carried by every posting.
type OperationType int

const (
	OperationTopUp      OperationType = 1
	OperationTransfer   OperationType = 2
	OperationFee        OperationType = 3
	OperationWithdrawal OperationType = 4
	OperationRefund     OperationType = 5
	OperationAdjustment OperationType = 6
)

var operationNames = map[OperationType]string{
	OperationTopUp:      "top_up",
	OperationTransfer:   "transfer",
	OperationFee:        "fee",
	OperationWithdrawal: "withdrawal",
	OperationRefund:     "refund",
	OperationAdjustment: "adjustment",
}

func (o OperationType) Valid() bool {
	_, ok := operationNames[o]
	return ok
}

func (o OperationType) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// PaymentType is the kind of externally orchestrated operation.
type PaymentType string

const (
	PaymentTypeTransfer PaymentType = "Transfer"
	PaymentTypeTopUp    PaymentType = "TopUp"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeTransfer || t == PaymentTypeTopUp
}

// PaymentStatus follows Running -> Succeeded | Failed.
type PaymentStatus string

const (
	PaymentStatusRunning   PaymentStatus = "Running"
	PaymentStatusSucceeded PaymentStatus = "Succeeded"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, st := range []PaymentStatus{PaymentStatusRunning, PaymentStatusSucceeded, PaymentStatusFailed} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusFailed
}

// Period is the calendar granularity of a limit or a usage window.
type Period string

const (
	PeriodDay   Period = "Day"
	PeriodMonth Period = "Month"
	PeriodYear  Period = "Year"
)

func ParsePeriod(s string) (Period, error) {
	for _, p := range []Period{PeriodDay, PeriodMonth, PeriodYear} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

func (p Period) Valid() bool {
	return p == PeriodDay || p == PeriodMonth || p == PeriodYear
}

// MetricType says what a limit measures.
type MetricType string

const (
	MetricAmount  MetricType = "Amount"
	MetricCount   MetricType = "Count"
	MetricBalance MetricType = "Balance"
)

func ParseMetricType(s string) (MetricType, error) {
	for _, m := range []MetricType{MetricAmount, MetricCount, MetricBalance} {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric type %q", s)
}

// LimitSource records who configured a customer limit.
type LimitSource string

const (
	LimitSourceSystem    LimitSource = "System"
	LimitSourceMigration LimitSource = "Migration"
	LimitSourceAdmin     LimitSource = "Admin"
)

func ParseLimitSource(s string) (LimitSource, error) {
	for _, src := range []LimitSource{LimitSourceSystem, LimitSourceMigration, LimitSourceAdmin} {
		if strings.EqualFold(strings.TrimSpace(s), string(src)) {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown limit source %q", s)
}
