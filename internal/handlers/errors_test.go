package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	apperrors "walletcore/internal/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	incomplete := apperrors.ErrTransferIncomplete.WithMessage("transfer tr-1 debited sender by transaction txn-1 but did not credit receiver")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperrors.Validation("amount must be positive"), fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"business rule", apperrors.ErrInsufficientBalance, fiber.StatusConflict, "INSUFFICIENT_BALANCE"},
		{"unavailable", apperrors.Unavailable("lock account", errors.New("timeout")), fiber.StatusServiceUnavailable, "UNAVAILABLE"},
		{"incomplete transfer", fmt.Errorf("%w: %w", incomplete, apperrors.ErrAccountNotActive), fiber.StatusInternalServerError, "TRANSFER_INCOMPLETE"},
		{"incomplete transfer on unavailable credit", fmt.Errorf("%w: %w", incomplete, apperrors.Unavailable("lock account", errors.New("timeout"))), fiber.StatusInternalServerError, "TRANSFER_INCOMPLETE"},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}
