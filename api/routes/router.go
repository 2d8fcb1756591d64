package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careerforge/careerforge-backend/api/controllers"
	paymentcontrollers "github.com/careerforge/careerforge-backend/api/controllers/payments"
	"github.com/careerforge/careerforge-backend/api/middleware"
	checkoutsvc "github.com/careerforge/careerforge-backend/internal/checkout"
	paymentsvc "github.com/careerforge/careerforge-backend/internal/payments"
	"github.com/careerforge/careerforge-backend/pkg/config"
	"github.com/careerforge/careerforge-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database pinger,
	cache pinger,
	checkoutService checkoutsvc.Service,
	paymentsService paymentsvc.Service,
	webhookGuard *paymentsvc.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cache, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/payments", func(r chi.Router) {
			// The gateway posts the browser here on return from the hosted
			// payment page; some checkout flows use GET with a query token.
			r.Post("/callback", paymentcontrollers.Callback(paymentsService, cfg.Gateway, logg))
			r.Get("/callback", paymentcontrollers.Callback(paymentsService, cfg.Gateway, logg))
			r.Post("/webhook", paymentcontrollers.Webhook(paymentsService, webhookGuard, paymentsvc.TokenFingerprint, cfg.Gateway, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Get("/payments/pending", controllers.AdminPendingPayments(paymentsService, logg))
	})

	return r
}
