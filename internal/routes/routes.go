// Package routes defines the API routing configuration.
package routes

import (
	"log/slog"

	"walletcore/internal/handlers"
	"walletcore/internal/middleware"
	"walletcore/internal/repositories/cache"
	"walletcore/internal/services/ledger"
	"walletcore/internal/services/limit"
	"walletcore/internal/services/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies are the services and infrastructure the routes serve.
// Cache and Gatherer are optional.
type Dependencies struct {
	DB       *gorm.DB
	Cache    *cache.CacheService
	Gatherer prometheus.Gatherer

	Ledger  ledger.Service
	Payment payment.Service
	Limit   limit.Service

	// CallbackSecret enables bearer auth on the workflow callback.
	CallbackSecret string
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Cache)
	accountingHandler := handlers.NewAccountingHandler(deps.Ledger)
	paymentHandler := handlers.NewPaymentHandler(deps.Payment)
	limitHandler := handlers.NewLimitHandler(deps.Limit)

	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/health/cache", healthHandler.CacheStats)
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	accounting := app.Group("/accounting")
	accounting.Post("/accounts", accountingHandler.CreateAccount)
	accounting.Get("/accounts/:id", accountingHandler.GetAccount)
	accounting.Patch("/accounts/:id/status", accountingHandler.UpdateAccountStatus)
	accounting.Get("/accounts/:id/history", accountingHandler.ListHistory)
	accounting.Post("/transactions", accountingHandler.PostTransaction)
	accounting.Post("/transfers", accountingHandler.Transfer)
	accounting.Get("/customers/:customerId/balance", accountingHandler.GetBalance)
	accounting.Get("/customers/:customerId/usage", accountingHandler.GetUsage)

	payments := app.Group("/payments")
	payments.Post("/topups", paymentHandler.TopUp)
	payments.Post("/transfers", paymentHandler.Transfer)
	payments.Get("/status", paymentHandler.GetStatus)
	if deps.CallbackSecret != "" {
		payments.Post("/callback", middleware.CallbackAuth(deps.CallbackSecret), paymentHandler.Callback)
	} else {
		slog.Warn("payment callback route is not authenticated", "path", "/payments/callback")
		payments.Post("/callback", paymentHandler.Callback)
	}

	limits := app.Group("/transaction-limit")
	limits.Post("/check", limitHandler.Check)
	limits.Post("/definitions", limitHandler.CreateDefinition)
	limits.Get("/definitions", limitHandler.ListDefinitions)
	limits.Put("/customer-limits", limitHandler.SetCustomerLimit)
}
