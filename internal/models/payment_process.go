package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentProcess is one externally orchestrated operation, keyed by the
// caller's idempotency key.
type PaymentProcess struct {
	ID                  string          `gorm:"primaryKey;size:36" json:"id"`
	CorrelationID       string          `gorm:"size:64;not null;uniqueIndex" json:"correlationId"`
	IdempotencyKey      string          `gorm:"size:128;not null;uniqueIndex" json:"-"`
	CustomerID          string          `gorm:"size:64;not null;index" json:"customerId"`
	Type                PaymentType     `gorm:"size:16;not null" json:"type"`
	Status              PaymentStatus   `gorm:"size:16;not null;index" json:"status"`
	Amount              decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency            string          `gorm:"size:3;not null" json:"currency"`
	Params              JSON            `gorm:"type:jsonb" json:"-"`
	WorkflowInstanceKey *string         `gorm:"size:64" json:"workflowInstanceKey"`
	WorkflowStartedAt   *time.Time      `json:"workflowStartedAt"`
	ResumeAttemptedAt   *time.Time      `json:"-"`
	ErrorCode           string          `gorm:"size:64" json:"errorCode"`
	ErrorMessage        string          `gorm:"size:512" json:"errorMessage"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func (p *PaymentProcess) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
