// Package app wires configuration, storage, domain services, and the HTTP
// server into a running storefront.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bazaarlane/storefront/internal/domain/cart"
	"github.com/bazaarlane/storefront/internal/domain/checkout"
	"github.com/bazaarlane/storefront/internal/domain/order"
	"github.com/bazaarlane/storefront/internal/domain/pricing"
	"github.com/bazaarlane/storefront/internal/domain/report"
	"github.com/bazaarlane/storefront/internal/domain/user"
	"github.com/bazaarlane/storefront/internal/handler"
	"github.com/bazaarlane/storefront/internal/payment"
	"github.com/bazaarlane/storefront/internal/session"
	"github.com/bazaarlane/storefront/internal/storage/postgres"
	"github.com/bazaarlane/storefront/pkg/health"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	// Redis for checkout sessions.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return errors.Wrap(err, "parse redis URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Health check service.
	healthSvc := health.New()
	healthSvc.Add(health.Readiness, "postgres", 5*time.Second, health.PostgresCheck(pool))
	healthSvc.Add(health.Readiness, "redis", 5*time.Second, health.RedisCheck(redisClient))
	healthSvc.Add(health.Liveness, "goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)
	defer healthSvc.Stop()

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)

	// Pricing policy.
	taxRate, err := decimal.NewFromString(cfg.Pricing.TaxRate)
	if err != nil {
		return errors.Wrap(err, "parse tax rate")
	}
	shippingFee, err := decimal.NewFromString(cfg.Pricing.ShippingFee)
	if err != nil {
		return errors.Wrap(err, "parse shipping fee")
	}
	calc := pricing.NewCalculator(taxRate, shippingFee)

	// Domain services.
	cartSvc := cart.NewService(cartRepo, productRepo)
	factory := order.NewFactory(orderRepo, calc)
	gateway := payment.NewStripeClient(cfg.Stripe.APIKey, payment.WithBaseURL(cfg.Stripe.BaseURL))
	sessions := session.NewRedisStore(redisClient, 0)
	workflow := checkout.NewWorkflow(cartSvc, sessions, gateway, factory, calc, cfg.Stripe.Currency)
	userSvc := user.NewService(userRepo, user.LogMailer{})
	reportSvc := report.NewService(reportRepo)

	// HTTP surface.
	metrics, err := handler.NewMetrics(m.MeterProvider().Meter("storefront"))
	if err != nil {
		return errors.Wrap(err, "create metrics")
	}

	srv := fiber.New(fiber.Config{
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
	})
	srv.Use(recover.New())
	srv.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.Origins,
		AllowHeaders:     strings.Join([]string{fiber.HeaderContentType, fiber.HeaderAuthorization}, ","),
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           86400,
	}))
	srv.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Window,
	}))
	srv.Use(requestid.New())
	srv.Use(handler.InjectLogger(lg))
	srv.Use(handler.Instrument(metrics))
	srv.Use(handler.LogRequests())

	srv.Get("/livez", adaptor.HTTPHandlerFunc(healthSvc.LiveHandler))
	srv.Get("/readyz", adaptor.HTTPHandlerFunc(healthSvc.ReadyHandler))

	h := handler.NewHandler(
		handler.Config{JWTSecret: []byte(cfg.JWTSecret)},
		productRepo, categoryRepo, cartSvc, workflow, orderRepo, factory, userSvc, reportSvc,
	)
	h.Routes(srv)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := srv.ShutdownWithTimeout(cfg.Graceful.ShutdownTimeout); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := srv.Listen(cfg.Addr); err != nil {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
