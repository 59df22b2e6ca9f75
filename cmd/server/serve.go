package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"walletcore/internal/config"
	"walletcore/internal/metrics"
	"walletcore/internal/middleware"
	"walletcore/internal/models"
	"walletcore/internal/repositories"
	"walletcore/internal/repositories/cache"
	"walletcore/internal/routes"
	"walletcore/internal/services/ledger"
	"walletcore/internal/services/limit"
	"walletcore/internal/services/payment"
	"walletcore/internal/utils/response"
	"walletcore/internal/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().Bool("migrate", false, "Run schema migration before serving")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the payment resumer",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	runMigrate, _ := cmd.Flags().GetBool("migrate")

	db, err := repositories.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	}()
	if runMigrate {
		if err := repositories.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheService := connectCache(ctx, cfg)
	if cacheService != nil {
		defer cacheService.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ledgerService := ledger.NewService(repositories.NewLedgerRepository(db), ledger.Config{}, m.Ledger)
	paymentService := payment.NewService(
		repositories.NewProcessRepository(db),
		newStarter(cfg.Workflow),
		payment.Config{
			ProcessDefinitions: map[models.PaymentType]string{
				models.PaymentTypeTopUp:    cfg.Workflow.TopUpProcess,
				models.PaymentTypeTransfer: cfg.Workflow.TransferProcess,
			},
			StartTimeout: cfg.Workflow.Timeout,
		},
		m.Payment,
	)

	var definitionCache limit.DefinitionCache
	if cacheService != nil {
		definitionCache = limit.NewRedisDefinitionCache(cacheService)
	}
	limitService := limit.NewService(repositories.NewLimitRepository(db), definitionCache, limit.Config{}, m.Limit)

	app := newApp(cfg)
	routes.SetupRoutes(app, routes.Dependencies{
		DB:             db,
		Cache:          cacheService,
		Gatherer:       reg,
		Ledger:         ledgerService,
		Payment:        paymentService,
		Limit:          limitService,
		CallbackSecret: cfg.CallbackJWTSecret,
	})

	var wg sync.WaitGroup
	resumer := &payment.Resumer{
		Service:   paymentService,
		Interval:  cfg.ResumeInterval,
		OlderThan: cfg.ResumeAfter,
		Batch:     cfg.ResumeBatch,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		resumer.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "env", cfg.Env, "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	wg.Wait()
	slog.Info("server exited")
	return nil
}

// StartRateLimit is the number of payment starts allowed per IP per minute.
const StartRateLimit = 120

func newApp(cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return response.Error(c, fe.Code, "HTTP_ERROR", fe.Message)
			}
			slog.Error("unhandled request error", "path", c.Path(), "error", err)
			return response.ServerError(c, "internal error")
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Actor",
		AllowMethods: "GET,POST,HEAD,PUT,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Only client-facing starts are limited. Engine callbacks and status
	// polls share the engine's IP and must not be throttled with them.
	startLimiter := limiter.New(limiter.Config{
		Max:        StartRateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
		},
	})
	app.Use("/payments/topups", startLimiter)
	app.Use("/payments/transfers", startLimiter)

	return app
}

// connectCache returns nil when redis is unreachable. Limit definitions are
// then read from the store on every check.
func connectCache(ctx context.Context, cfg config.Config) *cache.CacheService {
	client := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cacheService := cache.NewCacheService(client, cfg.LimitCacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cacheService.HealthCheck(pingCtx); err != nil {
		slog.Warn("redis unavailable, limit definition cache disabled", "error", err)
		_ = cacheService.Close()
		return nil
	}
	slog.Info("connected to redis", "host", cfg.Redis.Host, "port", cfg.Redis.Port)
	return cacheService
}

func newStarter(cfg config.WorkflowConfig) payment.WorkflowStarter {
	if cfg.BaseURL == "" {
		slog.Warn("WORKFLOW_BASE_URL not set, payment workflows will not be started")
		return workflow.LogStarter{}
	}
	return workflow.NewClient(cfg.BaseURL, cfg.Timeout)
}
