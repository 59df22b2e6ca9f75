package handlers

import (
	"errors"
	"log/slog"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

var statusByCode = map[string]int{
	apperrors.ErrValidation.Code:              fiber.StatusBadRequest,
	apperrors.ErrAccountNotFound.Code:         fiber.StatusNotFound,
	apperrors.ErrPaymentNotFound.Code:         fiber.StatusNotFound,
	apperrors.ErrLimitDefinitionNotFound.Code: fiber.StatusNotFound,
	apperrors.ErrAccountAlreadyExists.Code:    fiber.StatusConflict,
	apperrors.ErrAccountNotActive.Code:        fiber.StatusConflict,
	apperrors.ErrCurrencyMismatch.Code:        fiber.StatusConflict,
	apperrors.ErrInsufficientBalance.Code:     fiber.StatusConflict,
	apperrors.ErrInvalidStatusTransition.Code: fiber.StatusConflict,
	apperrors.ErrLimitDefinitionExists.Code:   fiber.StatusConflict,
	apperrors.ErrUnavailable.Code:             fiber.StatusServiceUnavailable,
	apperrors.ErrTransferIncomplete.Code:      fiber.StatusInternalServerError,
}

// writeError maps a service error onto the HTTP error body.
func writeError(c *fiber.Ctx, err error) error {
	// Checked first: the failed credit leg may itself be unavailable.
	var incomplete *apperrors.DomainError
	if errors.As(err, &incomplete) && incomplete.Code == apperrors.ErrTransferIncomplete.Code {
		slog.Error("transfer left incomplete",
			"method", c.Method(),
			"path", c.Path(),
			"error", err)
		return response.Error(c, fiber.StatusInternalServerError, incomplete.Code, incomplete.Message)
	}

	if errors.Is(err, apperrors.ErrUnavailable) {
		slog.Error("request failed on infrastructure",
			"method", c.Method(),
			"path", c.Path(),
			"error", err)
		return response.Error(c, fiber.StatusServiceUnavailable, apperrors.ErrUnavailable.Code, apperrors.ErrUnavailable.Message)
	}

	var de *apperrors.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = fiber.StatusUnprocessableEntity
		}
		return response.Error(c, status, de.Code, de.Message)
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err)
	return response.ServerError(c, "internal error")
}

func badBody(c *fiber.Ctx) error {
	return response.BadRequest(c, "invalid request body")
}
