package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketing/api/routes"
	"ticketing/internal/invoices"
	"ticketing/internal/payments"
	"ticketing/internal/provider"
	"ticketing/internal/settlement"
	"ticketing/internal/shared/config"
	"ticketing/internal/shared/database"
	"ticketing/internal/shared/middleware"
	"ticketing/internal/tickets"
	"ticketing/internal/users"
	"ticketing/pkg/logger"
	"ticketing/pkg/ratelimit"
	"ticketing/pkg/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	shutdownTracing := telemetry.Setup(cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Insecure)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	gateway, err := newGateway(cfg)
	if err != nil {
		appLogger.Error("payment provider misconfigured", slog.Any("error", err))
		os.Exit(1)
	}

	// Invoice pipeline
	pipelineCtx, stopPipeline := context.WithCancel(context.Background())
	defer stopPipeline()
	deliverer, closePipeline := setupInvoicePipeline(pipelineCtx, cfg, db)

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:          cfg.RateLimit.Enabled,
			WindowDuration:   cfg.RateLimit.WindowDuration,
			DefaultRequests:  cfg.RateLimit.DefaultRequests,
			PublicRequests:   cfg.RateLimit.PublicRequests,
			PurchaseRequests: cfg.RateLimit.PurchaseRequests,
			WebhookRequests:  cfg.RateLimit.WebhookRequests,
			AdminRequests:    cfg.RateLimit.AdminRequests,
			HealthRequests:   cfg.RateLimit.HealthRequests,
			WhitelistedIPs:   cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	appRouter := routes.NewRouter(cfg, db, gateway, deliverer)
	engine := setupEngine(cfg, appRouter, rateLimiter)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        otelhttp.NewHandler(engine, cfg.Telemetry.ServiceName),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.String("provider", cfg.Provider.Name),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appRouter.WaitForDeliveries()
	stopPipeline()
	closePipeline()

	if err := shutdownTracing(ctx); err != nil {
		appLogger.Error("Tracer shutdown failed", slog.Any("error", err))
	}
	appLogger.Info("Server exited gracefully")
}

func newGateway(cfg *config.Config) (provider.Gateway, error) {
	switch cfg.Provider.Name {
	case "stripe":
		if cfg.Provider.SecretKey == "" || cfg.Provider.WebhookSecret == "" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required")
		}
		return provider.NewStripe(provider.StripeConfig{
			SecretKey:      cfg.Provider.SecretKey,
			PublishableKey: cfg.Provider.PublishableKey,
			WebhookSecret:  cfg.Provider.WebhookSecret,
		}), nil
	case "mock":
		if cfg.IsProduction() {
			return nil, fmt.Errorf("mock payment provider is not allowed in release mode")
		}
		return provider.NewMock(cfg.Provider.WebhookSecret), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider.Name)
	}
}

// setupInvoicePipeline returns the settlement deliverer and a function that
// releases its resources. Kafka problems fall back to in-process sending.
func setupInvoicePipeline(ctx context.Context, cfg *config.Config, db *database.DB) (settlement.Deliverer, func()) {
	appLogger := logger.GetDefault()
	pg := db.GetPostgreSQL()

	var mailer invoices.Mailer = invoices.NewLogMailer()
	if cfg.Email.SMTPHost != "" {
		smtpMailer, err := invoices.NewSMTPMailer(cfg.Email)
		if err != nil {
			appLogger.Error("Invalid SMTP configuration, invoices will only be logged", slog.Any("error", err))
		} else {
			mailer = smtpMailer
		}
	}

	invoiceRepo := invoices.NewRepository(pg)
	sender := invoices.NewSender(
		invoiceRepo,
		tickets.NewRepository(pg, cfg.Provider.Currency),
		payments.NewRepository(pg),
		users.NewDirectory(pg),
		mailer,
	)
	direct := invoices.NewDirectDispatcher(invoiceRepo, sender, cfg.Kafka.MaxRetries, cfg.Kafka.RetryBackoff)

	if !cfg.Kafka.Enabled {
		appLogger.Info("Kafka disabled, invoices are sent in-process")
		return direct, func() {}
	}

	dispatcher, err := invoices.NewKafkaDispatcher(cfg.Kafka, invoiceRepo)
	if err != nil {
		appLogger.Error("Kafka producer unavailable, invoices are sent in-process", slog.Any("error", err))
		return direct, func() {}
	}

	consumer, err := invoices.NewConsumer(cfg.Kafka, sender)
	if err != nil {
		appLogger.Error("Kafka consumer unavailable, queued invoices wait for another worker", slog.Any("error", err))
		return dispatcher, func() { closeQuietly("invoice producer", dispatcher.Close) }
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx)
	}()
	appLogger.Info("Invoice pipeline started",
		slog.String("topic", cfg.Kafka.InvoiceTopic),
		slog.Int("consumers", cfg.Kafka.ConsumerCount),
	)

	return dispatcher, func() {
		closeQuietly("invoice consumer", consumer.Close)
		<-done
		closeQuietly("invoice producer", dispatcher.Close)
	}
}

func closeQuietly(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.GetDefault().Error("Close failed", slog.String("component", name), slog.Any("error", err))
	}
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}
