package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountingTransaction is the immutable record of one posting.
type AccountingTransaction struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	AccountID      string            `gorm:"size:36;not null;index;uniqueIndex:ux_txn_account_idempotency" json:"accountId"`
	Direction      Direction         `gorm:"size:8;not null" json:"direction"`
	Amount         decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency       string            `gorm:"size:3;not null" json:"currency"`
	BalanceBefore  decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"balanceBefore"`
	BalanceAfter   decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"balanceAfter"`
	OperationType  OperationType     `gorm:"not null" json:"operationType"`
	ReferenceID    string            `gorm:"size:64;index" json:"referenceId"`
	IdempotencyKey *string           `gorm:"size:128;uniqueIndex:ux_txn_account_idempotency" json:"idempotencyKey,omitempty"`
	CorrelationID  *string           `gorm:"size:64;index" json:"correlationId,omitempty"`
	Status         TransactionStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt      time.Time         `gorm:"index" json:"createdAt"`
}

func (t *AccountingTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// AccountBalanceHistory mirrors every posting for the audit trail.
type AccountBalanceHistory struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	AccountID     string          `gorm:"size:36;not null;index" json:"accountId"`
	TransactionID string          `gorm:"size:36;not null;uniqueIndex" json:"transactionId"`
	Direction     Direction       `gorm:"size:8;not null" json:"direction"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	BalanceBefore decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balanceAfter"`
	OperationType OperationType   `gorm:"not null" json:"operationType"`
	ReferenceID   string          `gorm:"size:64" json:"referenceId"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
}

func (AccountBalanceHistory) TableName() string { return "account_balance_history" }

func (h *AccountBalanceHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
