package handlers

import (
	"time"

	"walletcore/internal/models"
	"walletcore/internal/services/ledger"
	"walletcore/internal/services/limit"
	"walletcore/internal/validation"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(validation.AmountScale)
}

type accountView struct {
	ID            string               `json:"id"`
	CustomerID    string               `json:"customerId"`
	Currency      string               `json:"currency"`
	AccountNumber string               `json:"accountNumber"`
	IBAN          *string              `json:"iban,omitempty"`
	Balance       string               `json:"balance"`
	Status        models.AccountStatus `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func newAccountView(a *models.Account) accountView {
	return accountView{
		ID:            a.ID,
		CustomerID:    a.CustomerID,
		Currency:      a.Currency,
		AccountNumber: a.AccountNumber,
		IBAN:          a.IBAN,
		Balance:       money(a.Balance),
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

type balanceView struct {
	AccountID  string `json:"accountId"`
	CustomerID string `json:"customerId"`
	Currency   string `json:"currency"`
	Balance    string `json:"balance"`
}

type transactionView struct {
	ID             string               `json:"id"`
	AccountID      string               `json:"accountId"`
	Direction      models.Direction     `json:"direction"`
	Amount         string               `json:"amount"`
	Currency       string               `json:"currency"`
	BalanceBefore  string               `json:"balanceBefore"`
	BalanceAfter   string               `json:"balanceAfter"`
	OperationType  models.OperationType `json:"operationType"`
	ReferenceID    string               `json:"referenceId"`
	IdempotencyKey *string              `json:"idempotencyKey,omitempty"`
	CorrelationID  *string              `json:"correlationId,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

func newTransactionView(t *models.AccountingTransaction) transactionView {
	return transactionView{
		ID:             t.ID,
		AccountID:      t.AccountID,
		Direction:      t.Direction,
		Amount:         money(t.Amount),
		Currency:       t.Currency,
		BalanceBefore:  money(t.BalanceBefore),
		BalanceAfter:   money(t.BalanceAfter),
		OperationType:  t.OperationType,
		ReferenceID:    t.ReferenceID,
		IdempotencyKey: t.IdempotencyKey,
		CorrelationID:  t.CorrelationID,
		CreatedAt:      t.CreatedAt,
	}
}

type transferView struct {
	ReferenceID string          `json:"referenceId"`
	Debit       transactionView `json:"debit"`
	Credit      transactionView `json:"credit"`
	Replayed    bool            `json:"replayed"`
}

type historyView struct {
	ID            string               `json:"id"`
	TransactionID string               `json:"transactionId"`
	Direction     models.Direction     `json:"direction"`
	Amount        string               `json:"amount"`
	Currency      string               `json:"currency"`
	BalanceBefore string               `json:"balanceBefore"`
	BalanceAfter  string               `json:"balanceAfter"`
	OperationType models.OperationType `json:"operationType"`
	ReferenceID   string               `json:"referenceId"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func newHistoryViews(entries []models.AccountBalanceHistory) []historyView {
	views := make([]historyView, 0, len(entries))
	for _, h := range entries {
		views = append(views, historyView{
			ID:            h.ID,
			TransactionID: h.TransactionID,
			Direction:     h.Direction,
			Amount:        money(h.Amount),
			Currency:      h.Currency,
			BalanceBefore: money(h.BalanceBefore),
			BalanceAfter:  money(h.BalanceAfter),
			OperationType: h.OperationType,
			ReferenceID:   h.ReferenceID,
			CreatedAt:     h.CreatedAt,
		})
	}
	return views
}

type usageView struct {
	CustomerID string            `json:"customerId"`
	Currency   string            `json:"currency"`
	Period     models.Period     `json:"period"`
	MetricType models.MetricType `json:"metricType"`
	FromDate   string            `json:"fromDate"`
	ToDate     string            `json:"toDate"`
	UsedAmount string            `json:"usedAmount"`
	UsedCount  int64             `json:"usedCount"`
}

func newUsageView(u *ledger.UsageResult) usageView {
	return usageView{
		CustomerID: u.CustomerID,
		Currency:   u.Currency,
		Period:     u.Period,
		MetricType: u.MetricType,
		FromDate:   u.FromDate.Format(dateLayout),
		ToDate:     u.ToDate.Format(dateLayout),
		UsedAmount: money(u.UsedAmount),
		UsedCount:  u.UsedCount,
	}
}

type processView struct {
	ID                  string               `json:"id"`
	CorrelationID       string               `json:"correlationId"`
	CustomerID          string               `json:"customerId"`
	Type                models.PaymentType   `json:"type"`
	Status              models.PaymentStatus `json:"status"`
	Amount              string               `json:"amount"`
	Currency            string               `json:"currency"`
	WorkflowInstanceKey *string              `json:"workflowInstanceKey"`
	ErrorCode           string               `json:"errorCode"`
	ErrorMessage        string               `json:"errorMessage"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

func newProcessView(p *models.PaymentProcess) processView {
	return processView{
		ID:                  p.ID,
		CorrelationID:       p.CorrelationID,
		CustomerID:          p.CustomerID,
		Type:                p.Type,
		Status:              p.Status,
		Amount:              money(p.Amount),
		Currency:            p.Currency,
		WorkflowInstanceKey: p.WorkflowInstanceKey,
		ErrorCode:           p.ErrorCode,
		ErrorMessage:        p.ErrorMessage,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

type checkView struct {
	Allowed        bool    `json:"allowed"`
	Reason         string  `json:"reason"`
	RequestedValue string  `json:"requestedValue"`
	LimitValue     *string `json:"limitValue,omitempty"`
}

func newCheckView(r *limit.CheckResult) checkView {
	v := checkView{
		Allowed:        r.Allowed,
		Reason:         r.Reason,
		RequestedValue: money(r.RequestedValue),
	}
	if r.LimitValue != nil {
		s := money(*r.LimitValue)
		v.LimitValue = &s
	}
	return v
}

type customerLimitView struct {
	ID                string             `json:"id"`
	CustomerID        string             `json:"customerId"`
	LimitDefinitionID string             `json:"limitDefinitionId"`
	Year              int                `json:"year,omitempty"`
	Month             int                `json:"month,omitempty"`
	Day               int                `json:"day,omitempty"`
	Value             string             `json:"value"`
	Currency          string             `json:"currency,omitempty"`
	Source            models.LimitSource `json:"source"`
	Reason            string             `json:"reason,omitempty"`
	UpdatedBy         string             `json:"updatedBy,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func newCustomerLimitView(l *models.CustomerLimit) customerLimitView {
	return customerLimitView{
		ID:                l.ID,
		CustomerID:        l.CustomerID,
		LimitDefinitionID: l.LimitDefinitionID,
		Year:              l.Year,
		Month:             l.Month,
		Day:               l.Day,
		Value:             money(l.Value),
		Currency:          l.Currency,
		Source:            l.Source,
		Reason:            l.Reason,
		UpdatedBy:         l.UpdatedBy,
		UpdatedAt:         l.UpdatedAt,
	}
}
