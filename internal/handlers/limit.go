package handlers

import (
	"strconv"

	"walletcore/internal/models"
	"walletcore/internal/services/limit"
	"walletcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// HeaderActor names the operator recorded on customer limit changes.
const HeaderActor = "X-Actor"

type LimitHandler struct {
	limitService limit.Service
}

func NewLimitHandler(limitService limit.Service) *LimitHandler {
	return &LimitHandler{
		limitService: limitService,
	}
}

func (h *LimitHandler) Check(c *fiber.Ctx) error {
	var input struct {
		CustomerID        string          `json:"customerId"`
		LimitDefinitionID string          `json:"limitDefinitionId"`
		Value             decimal.Decimal `json:"value"`
		Year              *int            `json:"year"`
		Month             *int            `json:"month"`
		Day               *int            `json:"day"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	result, err := h.limitService.Check(c.UserContext(), limit.CheckRequest{
		CustomerID:        input.CustomerID,
		LimitDefinitionID: input.LimitDefinitionID,
		Value:             input.Value,
		Year:              input.Year,
		Month:             input.Month,
		Day:               input.Day,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, newCheckView(result))
}

func (h *LimitHandler) CreateDefinition(c *fiber.Ctx) error {
	var input struct {
		Code       string `json:"code"`
		Name       string `json:"name"`
		Period     string `json:"period"`
		MetricType string `json:"metricType"`
		IsVisible  bool   `json:"isVisible"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	def, err := h.limitService.CreateDefinition(c.UserContext(), limit.DefinitionRequest{
		Code:       input.Code,
		Name:       input.Name,
		Period:     models.Period(input.Period),
		MetricType: models.MetricType(input.MetricType),
		IsVisible:  input.IsVisible,
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.Created(c, def)
}

func (h *LimitHandler) ListDefinitions(c *fiber.Ctx) error {
	visibleOnly, _ := strconv.ParseBool(c.Query("visible", "false"))

	defs, err := h.limitService.ListDefinitions(c.UserContext(), visibleOnly)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, fiber.Map{"data": defs})
}

func (h *LimitHandler) SetCustomerLimit(c *fiber.Ctx) error {
	var input struct {
		CustomerID        string          `json:"customerId"`
		LimitDefinitionID string          `json:"limitDefinitionId"`
		Year              *int            `json:"year"`
		Month             *int            `json:"month"`
		Day               *int            `json:"day"`
		Value             decimal.Decimal `json:"value"`
		Currency          string          `json:"currency"`
		Source            string          `json:"source"`
		Reason            string          `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}

	stored, err := h.limitService.SetCustomerLimit(c.UserContext(), limit.SetLimitRequest{
		CustomerID:        input.CustomerID,
		LimitDefinitionID: input.LimitDefinitionID,
		Year:              input.Year,
		Month:             input.Month,
		Day:               input.Day,
		Value:             input.Value,
		Currency:          input.Currency,
		Source:            models.LimitSource(input.Source),
		Reason:            input.Reason,
		Actor:             c.Get(HeaderActor, "api"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, newCustomerLimitView(stored))
}
