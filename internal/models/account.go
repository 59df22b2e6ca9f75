package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account holds the running balance of one customer in one currency.
type Account struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	CustomerID    string          `gorm:"size:64;not null;uniqueIndex:ux_accounts_customer_currency" json:"customerId"`
	Currency      string          `gorm:"size:3;not null;uniqueIndex:ux_accounts_customer_currency" json:"currency"`
	AccountNumber string          `gorm:"size:32;not null;uniqueIndex" json:"accountNumber"`
	IBAN          *string         `gorm:"size:34" json:"iban,omitempty"`
	Balance       decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance"`
	Status        AccountStatus   `gorm:"size:16;not null" json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	// Balance only ever moves through ledger postings.
	a.Balance = decimal.Zero
	if a.Status == "" {
		a.Status = AccountStatusActive
	}
	return nil
}
