package main

import (
	"log/slog"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/imaginify/imaginify/internal/config"
	"github.com/imaginify/imaginify/internal/handler"
	"github.com/imaginify/imaginify/internal/middleware"
)

// routerDeps are the handlers and collaborators mounted by setupRouter.
type routerDeps struct {
	base          *handler.Handler
	health        *handler.HealthHandler
	metrics       *handler.MetricsHandler
	clerkWebhook  *handler.ClerkWebhookHandler
	stripeWebhook *handler.StripeWebhookHandler
	users         *handler.UserHandler
	images        *handler.ImageHandler
	checkout      *handler.CheckoutHandler
	sessions      middleware.SessionVerifier
	limiter       middleware.RateLimiter
	// sentry is nil when error reporting is disabled.
	sentry *sentryhttp.Handler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	if deps.sentry != nil {
		r.Use(deps.sentry.Handle)
	}
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/", deps.base.Hello)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	// Signed by the sender; no session auth.
	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/clerk", deps.clerkWebhook.Handle)
		r.Post("/stripe", deps.stripeWebhook.Handle)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:   logger,
			Verifier: deps.sessions,
		}))
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Logger:            logger,
			Limiter:           deps.limiter,
			Enabled:           cfg.RateLimitEnabled,
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Burst:             cfg.RateLimitBurst,
		}))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", deps.users.Me)
			r.Get("/{clerkId}", deps.users.Get)
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/", deps.images.List)
			r.Post("/", deps.images.Create)
			r.Get("/{id}", deps.images.Get)
			r.Put("/{id}", deps.images.Update)
			r.Delete("/{id}", deps.images.Delete)
		})

		r.Post("/checkout", deps.checkout.Checkout)
	})

	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}
