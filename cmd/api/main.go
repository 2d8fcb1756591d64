package main

import (
	"context"
	"net/http"
	"os"

	"github.com/careerforge/careerforge-backend/api/routes"
	checkoutsvc "github.com/careerforge/careerforge-backend/internal/checkout"
	"github.com/careerforge/careerforge-backend/internal/notifications"
	paymentsvc "github.com/careerforge/careerforge-backend/internal/payments"
	"github.com/careerforge/careerforge-backend/internal/purchases"
	"github.com/careerforge/careerforge-backend/internal/users"
	"github.com/careerforge/careerforge-backend/pkg/config"
	"github.com/careerforge/careerforge-backend/pkg/db"
	"github.com/careerforge/careerforge-backend/pkg/gateway"
	"github.com/careerforge/careerforge-backend/pkg/logger"
	"github.com/careerforge/careerforge-backend/pkg/metrics"
	"github.com/careerforge/careerforge-backend/pkg/migrate"
	"github.com/careerforge/careerforge-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gatewayClient, err := gateway.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	mailer, err := notifications.NewMailer(cfg.Sendgrid, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	paymentsRepo := paymentsvc.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())

	purchasesService, err := purchases.NewService(purchases.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchases service", err)
		os.Exit(1)
	}

	reconMetrics := metrics.NewReconciliationMetrics(prometheus.DefaultRegisterer)

	paymentsService, err := paymentsvc.NewService(paymentsvc.ServiceParams{
		Repo:         paymentsRepo,
		Materializer: purchasesService,
		Users:        usersRepo,
		Mailer:       mailer,
		Metrics:      reconMetrics,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		PaymentsRepo: paymentsRepo,
		Gateway:      gatewayClient,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookGuard, err := paymentsvc.NewIdempotencyGuard(redisClient, cfg.Gateway.WebhookDedupTTL, "payment-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, checkoutService, paymentsService, webhookGuard),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
