package handlers

import (
	"walletcore/internal/models"
	"walletcore/internal/services/payment"
	"walletcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	paymentService payment.Service
}

func NewPaymentHandler(paymentService payment.Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

type startInput struct {
	CustomerID     string                 `json:"customerId"`
	Amount         decimal.Decimal        `json:"amount"`
	Currency       string                 `json:"currency"`
	IdempotencyKey string                 `json:"idempotencyKey"`
	ToAccountID    string                 `json:"toAccountId"`
	Params         map[string]interface{} `json:"params"`
}

type startView struct {
	CorrelationID string               `json:"correlationId"`
	Status        models.PaymentStatus `json:"status"`
	Replayed      bool                 `json:"replayed,omitempty"`
}

func (h *PaymentHandler) TopUp(c *fiber.Ctx) error {
	return h.start(c, models.PaymentTypeTopUp)
}

func (h *PaymentHandler) Transfer(c *fiber.Ctx) error {
	return h.start(c, models.PaymentTypeTransfer)
}

func (h *PaymentHandler) start(c *fiber.Ctx, paymentType models.PaymentType) error {
	var input startInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	params := input.Params
	if params == nil {
		params = make(map[string]interface{})
	}
	if input.ToAccountID != "" {
		params[payment.ParamToAccountID] = input.ToAccountID
	}

	result, err := h.paymentService.StartOperation(c.UserContext(), payment.StartRequest{
		IdempotencyKey: idempotencyKey(c, input.IdempotencyKey),
		CustomerID:     input.CustomerID,
		Type:           paymentType,
		Amount:         input.Amount,
		Currency:       input.Currency,
		Params:         params,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Accepted(c, startView{
		CorrelationID: result.CorrelationID,
		Status:        result.Status,
		Replayed:      result.Replayed,
	})
}

func (h *PaymentHandler) GetStatus(c *fiber.Ctx) error {
	process, err := h.paymentService.GetStatus(c.UserContext(), c.Query("correlationId"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, newProcessView(process))
}

// Callback receives the terminal status reported by the workflow engine.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	var input struct {
		CorrelationID string `json:"correlationId"`
		Status        string `json:"status"`
		ErrorCode     string `json:"errorCode"`
		ErrorMessage  string `json:"errorMessage"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	process, err := h.paymentService.CompleteOperation(c.UserContext(), payment.CompleteRequest{
		CorrelationID: input.CorrelationID,
		Status:        models.PaymentStatus(input.Status),
		ErrorCode:     input.ErrorCode,
		ErrorMessage:  input.ErrorMessage,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, newProcessView(process))
}
