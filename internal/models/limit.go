package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LimitDefinition struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Code       string     `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Name       string     `gorm:"size:128;not null" json:"name"`
	Period     Period     `gorm:"size:8;not null" json:"period"`
	MetricType MetricType `gorm:"size:16;not null" json:"metricType"`
	IsVisible  bool       `gorm:"not null" json:"isVisible"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (d *LimitDefinition) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// CustomerLimit is a cap for one customer under one definition. Year, Month
// and Day are stored as 0 when the definition's period does not use them, so
// the unique key covers every period granularity.
type CustomerLimit struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	CustomerID        string          `gorm:"size:64;not null;uniqueIndex:ux_customer_limit_key" json:"customerId"`
	LimitDefinitionID string          `gorm:"size:36;not null;uniqueIndex:ux_customer_limit_key" json:"limitDefinitionId"`
	Year              int             `gorm:"not null;uniqueIndex:ux_customer_limit_key" json:"year,omitempty"`
	Month             int             `gorm:"not null;uniqueIndex:ux_customer_limit_key" json:"month,omitempty"`
	Day               int             `gorm:"not null;uniqueIndex:ux_customer_limit_key" json:"day,omitempty"`
	Value             decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"value"`
	Currency          string          `gorm:"size:3" json:"currency"`
	Source            LimitSource     `gorm:"size:16;not null" json:"source"`
	Reason            string          `gorm:"size:256" json:"reason"`
	CreatedBy         string          `gorm:"size:64" json:"createdBy"`
	UpdatedBy         string          `gorm:"size:64" json:"updatedBy"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (l *CustomerLimit) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
