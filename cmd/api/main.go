package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/api/routes"
	"github.com/freshfold/laundry-backend/internal/admin"
	"github.com/freshfold/laundry-backend/internal/auth"
	"github.com/freshfold/laundry-backend/internal/complaints"
	"github.com/freshfold/laundry-backend/internal/drivers"
	"github.com/freshfold/laundry-backend/internal/orders"
	"github.com/freshfold/laundry-backend/internal/payments"
	"github.com/freshfold/laundry-backend/internal/pricing"
	"github.com/freshfold/laundry-backend/internal/promos"
	"github.com/freshfold/laundry-backend/internal/subscriptions"
	"github.com/freshfold/laundry-backend/internal/users"
	stripewebhook "github.com/freshfold/laundry-backend/internal/webhooks/stripe"
	"github.com/freshfold/laundry-backend/pkg/auth/session"
	"github.com/freshfold/laundry-backend/pkg/config"
	"github.com/freshfold/laundry-backend/pkg/db"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/metrics"
	"github.com/freshfold/laundry-backend/pkg/migrate"
	"github.com/freshfold/laundry-backend/pkg/outbox"
	"github.com/freshfold/laundry-backend/pkg/redis"
	pkgstripe "github.com/freshfold/laundry-backend/pkg/stripe"
	"github.com/freshfold/laundry-backend/pkg/tracking"
)

const (
	stripeEventTTL    = 72 * time.Hour
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var (
		httpMetrics   *metrics.HTTPMetrics
		domainMetrics *metrics.DomainMetrics
		gatherer      prometheus.Gatherer
	)
	if cfg.FeatureFlags.MetricsEnabled {
		httpMetrics = metrics.NewHTTPMetrics(registry)
		domainMetrics = metrics.NewDomainMetrics(registry)
		gatherer = registry
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	outboxEmitter := outbox.NewEmitter(outbox.NewRepository(gormDB), logg)
	orderRepo := orders.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		AdminSecret:    cfg.App.AdminSecret,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	promoService, err := promos.NewService(promos.NewRepository(gormDB), logg)
	if err != nil {
		logg.Error(ctx, "failed to create promo service", err)
		os.Exit(1)
	}
	if err := promoService.Seed(ctx, cfg.Promo.Seed); err != nil {
		logg.Warn(ctx, "promo seed skipped: "+err.Error())
	}

	pricingEngine, err := pricing.NewEngine(cfg.Pricing)
	if err != nil {
		logg.Error(ctx, "failed to create pricing engine", err)
		os.Exit(1)
	}

	var qr tracking.Generator = tracking.QRGenerator{}
	if !cfg.FeatureFlags.TrackingQRCode {
		qr = tracking.NoopGenerator{}
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:          orderRepo,
		Tx:            dbClient,
		Outbox:        outboxEmitter,
		Pricing:       pricingEngine,
		Promos:        promoService,
		Users:         userRepo,
		QR:            qr,
		Metrics:       domainMetrics,
		PublicBaseURL: cfg.App.PublicBaseURL,
		Currency:      cfg.Pricing.Currency,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create order service", err)
		os.Exit(1)
	}

	driverService, err := drivers.NewService(drivers.NewRepository(gormDB), orderRepo, dbClient, outboxEmitter, logg)
	if err != nil {
		logg.Error(ctx, "failed to create driver service", err)
		os.Exit(1)
	}

	subscriptionRepo := subscriptions.NewRepository(gormDB)
	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo: subscriptionRepo,
		Users: func(tx *gorm.DB) subscriptions.UserSummaryWriter {
			return userRepo.WithTx(tx)
		},
		Outbox:            outboxEmitter,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create subscription service", err)
		os.Exit(1)
	}

	complaintRepo := complaints.NewRepository(gormDB)
	complaintService, err := complaints.NewService(complaintRepo, dbClient, outboxEmitter, logg)
	if err != nil {
		logg.Error(ctx, "failed to create complaint service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(admin.NewRepository(gormDB), subscriptionRepo, complaintRepo, userRepo)
	if err != nil {
		logg.Error(ctx, "failed to create admin service", err)
		os.Exit(1)
	}

	stripeClient, err := pkgstripe.NewClient(ctx, cfg.Stripe, logg)
	switch {
	case errors.Is(err, pkgstripe.ErrNotConfigured):
		logg.Warn(ctx, "stripe not configured; checkout will fall back to manual payment")
		stripeClient = nil
	case err != nil:
		logg.Error(ctx, "failed to create stripe client", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:     payments.NewRepository(gormDB),
		Orders:   orderRepo,
		Gateway:  payments.NewStripeGateway(stripeClient),
		Tx:       dbClient,
		Outbox:   outboxEmitter,
		Metrics:  domainMetrics,
		Config:   cfg.Checkout,
		Currency: cfg.Pricing.Currency,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create payment service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(paymentService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create stripe webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, stripeEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(ctx, "failed to create stripe webhook guard", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{
		DB:              dbClient,
		Redis:           redisClient,
		Store:           redisClient,
		Sessions:        sessionManager,
		Users:           userRepo,
		HTTPMetrics:     httpMetrics,
		MetricsGatherer: gatherer,
		Auth:            authService,
		Orders:          orderService,
		Promos:          promoService,
		Drivers:         driverService,
		Subscriptions:   subscriptionService,
		Complaints:      complaintService,
		Payments:        paymentService,
		Admin:           adminService,
		StripeWebhook:   webhookService,
		StripeGuard:     webhookGuard,
	}
	if stripeClient != nil {
		deps.StripeSigner = stripeClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
		logg.Info(shutdownCtx, "api server stopped")
	}
}
