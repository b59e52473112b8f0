// Package main is the entrypoint for the Imaginify API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/imaginify/imaginify/internal/auth"
	"github.com/imaginify/imaginify/internal/cache"
	"github.com/imaginify/imaginify/internal/config"
	"github.com/imaginify/imaginify/internal/handler"
	"github.com/imaginify/imaginify/internal/identity"
	"github.com/imaginify/imaginify/internal/metrics"
	"github.com/imaginify/imaginify/internal/payment"
	"github.com/imaginify/imaginify/internal/repository"
	"github.com/imaginify/imaginify/internal/server"
	"github.com/imaginify/imaginify/internal/service"
	"github.com/imaginify/imaginify/internal/webhook"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	var sentryHandler *sentryhttp.Handler
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.AppEnv,
			Release:          "imaginify@" + version,
			TracesSampleRate: 0.1,
		}); err != nil {
			logger.Warn("sentry initialization failed", slog.String("error", err.Error()))
		} else {
			sentryHandler = sentryhttp.New(sentryhttp.Options{Repanic: true})
			logger.Info("error reporting enabled")
		}
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.WithNamespace(cfg.RedisNamespace))
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	webhookVerifier, err := webhook.NewVerifier(cfg.ClerkWebhookSecret)
	if err != nil {
		logger.Error("invalid Clerk webhook signing secret", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessionVerifier, err := auth.NewVerifier(cfg.ClerkIssuer, cfg.JWKSURL())
	if err != nil {
		logger.Error("failed to initialize session verifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()
	identityClient := identity.NewClient(cfg.ClerkAPIURL, cfg.ClerkSecretKey, identity.NewHTTPClient())
	gateway := payment.NewGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	userService := service.NewUserService(repo, cacheClient, logger)
	imageService := service.NewImageService(repo, repo, cacheClient, logger, recorder)
	syncService := service.NewSyncService(userService, identityClient, logger, recorder)
	transactionService := service.NewTransactionService(service.TransactionServiceConfig{
		Transactions: repo,
		Credits:      userService,
		Gateway:      gateway,
		SuccessURL:   cfg.CheckoutSuccessURL(),
		CancelURL:    cfg.CheckoutCancelURL(),
		Logger:       logger,
		Metrics:      recorder,
	})

	deps := routerDeps{
		base:          handler.New(version),
		health:        handler.NewHealthHandler(version, handler.Dependency{Name: "postgres", Checker: repo}, handler.Dependency{Name: "redis", Checker: cacheClient}),
		metrics:       handler.NewMetricsHandler(recorder),
		clerkWebhook:  handler.NewClerkWebhookHandler(webhookVerifier, syncService, logger, recorder),
		stripeWebhook: handler.NewStripeWebhookHandler(gateway, transactionService, logger, recorder),
		users:         handler.NewUserHandler(userService, logger),
		images:        handler.NewImageHandler(imageService, userService, logger),
		checkout:      handler.NewCheckoutHandler(transactionService, userService, logger),
		sessions:      sessionVerifier,
		limiter:       cacheClient,
		sentry:        sentryHandler,
	}

	srv := server.New(setupRouter(deps, cfg, logger), server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Stopped in reverse: sentry flushes first, postgres closes last.
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})
	if sentryHandler != nil {
		srv.OnShutdown("sentry", func(ctx context.Context) error {
			timeout := 2 * time.Second
			if deadline, ok := ctx.Deadline(); ok {
				timeout = time.Until(deadline)
			}
			if !sentry.Flush(timeout) {
				return errors.New("sentry flush timed out")
			}
			return nil
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"server_url", cfg.ServerURL,
		"env", cfg.AppEnv,
		"version", version,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With(slog.String("service", "imaginify"))
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			username = "redacted"
		}
		parsed.User = url.User(username)
	}

	return parsed.String()
}

// sanitizeError replaces any occurrence of secrets in err with their
// redacted form.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" || redacted == secret {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
