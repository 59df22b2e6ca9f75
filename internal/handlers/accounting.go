package handlers

import (
	"strings"
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"
	"walletcore/internal/services/ledger"
	"walletcore/internal/utils/pagination"
	"walletcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// HeaderIdempotencyKey carries the idempotency key when the body omits it.
const HeaderIdempotencyKey = "Idempotency-Key"

type AccountingHandler struct {
	ledgerService ledger.Service
}

func NewAccountingHandler(ledgerService ledger.Service) *AccountingHandler {
	return &AccountingHandler{
		ledgerService: ledgerService,
	}
}

func (h *AccountingHandler) CreateAccount(c *fiber.Ctx) error {
	var input struct {
		CustomerID string  `json:"customerId"`
		Currency   string  `json:"currency"`
		IBAN       *string `json:"iban"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	account, err := h.ledgerService.CreateAccount(c.UserContext(), ledger.CreateAccountRequest{
		CustomerID: input.CustomerID,
		Currency:   input.Currency,
		IBAN:       input.IBAN,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Created(c, newAccountView(account))
}

func (h *AccountingHandler) GetAccount(c *fiber.Ctx) error {
	account, err := h.ledgerService.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, newAccountView(account))
}

func (h *AccountingHandler) UpdateAccountStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}
	status, err := models.ParseAccountStatus(input.Status)
	if err != nil {
		return writeError(c, apperrors.Validation("status must be Active, Suspended or Closed"))
	}

	account, err := h.ledgerService.UpdateAccountStatus(c.UserContext(), c.Params("id"), status)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, newAccountView(account))
}

func (h *AccountingHandler) GetBalance(c *fiber.Ctx) error {
	account, err := h.ledgerService.GetAccountByCustomer(c.UserContext(), c.Params("customerId"), c.Query("currency"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, balanceView{
		AccountID:  account.ID,
		CustomerID: account.CustomerID,
		Currency:   account.Currency,
		Balance:    money(account.Balance),
	})
}

// PostTransaction applies one posting. A replayed idempotency key answers
// 200 with the original transaction instead of 201.
func (h *AccountingHandler) PostTransaction(c *fiber.Ctx) error {
	var input struct {
		AccountID      string               `json:"accountId"`
		Direction      string               `json:"direction"`
		Amount         decimal.Decimal      `json:"amount"`
		Currency       string               `json:"currency"`
		OperationType  models.OperationType `json:"operationType"`
		ReferenceID    string               `json:"referenceId"`
		IdempotencyKey string               `json:"idempotencyKey"`
		CorrelationID  string               `json:"correlationId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	result, err := h.ledgerService.PostTransaction(c.UserContext(), ledger.PostRequest{
		AccountID:      input.AccountID,
		Direction:      models.Direction(strings.ToLower(strings.TrimSpace(input.Direction))),
		Amount:         input.Amount,
		Currency:       input.Currency,
		OperationType:  input.OperationType,
		ReferenceID:    input.ReferenceID,
		IdempotencyKey: idempotencyKey(c, input.IdempotencyKey),
		CorrelationID:  input.CorrelationID,
	})
	if err != nil {
		return writeError(c, err)
	}
	if result.Replayed {
		return response.OK(c, newTransactionView(result.Transaction))
	}
	return response.Created(c, newTransactionView(result.Transaction))
}

func (h *AccountingHandler) Transfer(c *fiber.Ctx) error {
	var input struct {
		FromAccountID  string          `json:"fromAccountId"`
		ToAccountID    string          `json:"toAccountId"`
		Amount         decimal.Decimal `json:"amount"`
		Currency       string          `json:"currency"`
		ReferenceID    string          `json:"referenceId"`
		IdempotencyKey string          `json:"idempotencyKey"`
		CorrelationID  string          `json:"correlationId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	result, err := h.ledgerService.Transfer(c.UserContext(), ledger.TransferRequest{
		FromAccountID:  input.FromAccountID,
		ToAccountID:    input.ToAccountID,
		Amount:         input.Amount,
		Currency:       input.Currency,
		ReferenceID:    input.ReferenceID,
		IdempotencyKey: idempotencyKey(c, input.IdempotencyKey),
		CorrelationID:  input.CorrelationID,
	})
	if err != nil {
		return writeError(c, err)
	}

	view := transferView{
		ReferenceID: result.ReferenceID,
		Debit:       newTransactionView(result.Debit),
		Credit:      newTransactionView(result.Credit),
		Replayed:    result.Replayed,
	}
	if result.Replayed {
		return response.OK(c, view)
	}
	return response.Created(c, view)
}

func (h *AccountingHandler) ListHistory(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	page, err := h.ledgerService.ListHistory(c.UserContext(), c.Params("id"), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	p.Total = page.Total
	return response.OK(c, pagination.Response(p, newHistoryViews(page.Entries)))
}

func (h *AccountingHandler) GetUsage(c *fiber.Ctx) error {
	period, err := models.ParsePeriod(c.Query("period", string(models.PeriodMonth)))
	if err != nil {
		return writeError(c, apperrors.Validation("period must be day, month or year"))
	}

	metricType := models.MetricAmount
	if raw := c.Query("metricType"); raw != "" {
		if metricType, err = models.ParseMetricType(raw); err != nil {
			return writeError(c, apperrors.Validation("metricType must be Amount, Count or Balance"))
		}
	}

	var ref time.Time
	if raw := c.Query("date"); raw != "" {
		if ref, err = time.Parse(dateLayout, raw); err != nil {
			return writeError(c, apperrors.Validation("date must use the YYYY-MM-DD format"))
		}
	}

	usage, err := h.ledgerService.GetUsage(c.UserContext(), ledger.UsageRequest{
		CustomerID:    c.Params("customerId"),
		Currency:      c.Query("currency"),
		Period:        period,
		MetricType:    metricType,
		ReferenceDate: ref,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, newUsageView(usage))
}

// idempotencyKey prefers the body field over the Idempotency-Key header.
func idempotencyKey(c *fiber.Ctx, body string) string {
	if key := strings.TrimSpace(body); key != "" {
		return key
	}
	return strings.TrimSpace(c.Get(HeaderIdempotencyKey))
}
