package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"walletcore/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, app *fiber.App, method, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestNewApp_RateLimitsOnlyPaymentStarts(t *testing.T) {
	app := newApp(config.Config{})
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Post("/payments/topups", ok)
	app.Post("/payments/transfers", ok)
	app.Post("/payments/callback", ok)
	app.Get("/payments/status", ok)

	for i := 0; i < StartRateLimit+30; i++ {
		status, _ := send(t, app, fiber.MethodPost, "/payments/callback")
		require.Equal(t, fiber.StatusOK, status, "callback %d", i+1)
		status, _ = send(t, app, fiber.MethodGet, "/payments/status?correlationId=c1")
		require.Equal(t, fiber.StatusOK, status, "status poll %d", i+1)
	}

	for i := 0; i < StartRateLimit; i++ {
		status, _ := send(t, app, fiber.MethodPost, "/payments/topups")
		require.Equal(t, fiber.StatusOK, status, "topup %d", i+1)
	}

	status, body := send(t, app, fiber.MethodPost, "/payments/topups")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body["code"])

	status, _ = send(t, app, fiber.MethodPost, "/payments/transfers")
	assert.Equal(t, fiber.StatusTooManyRequests, status, "starts share one budget per caller")

	status, _ = send(t, app, fiber.MethodPost, "/payments/callback")
	assert.Equal(t, fiber.StatusOK, status)
}
