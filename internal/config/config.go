// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Public URL of the web app, used for checkout success/cancel redirects.
	ServerURL string `env:"SERVER_URL" envDefault:"http://localhost:3000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`
	// Prefix for every Redis key written by this service.
	RedisNamespace string `env:"REDIS_NAMESPACE" envDefault:"imaginify"`

	// Identity provider (Clerk)
	ClerkWebhookSecret string `env:"CLERK_WEBHOOK_SIGNING_SECRET,required"`
	ClerkSecretKey     string `env:"CLERK_SECRET_KEY,required"`
	ClerkAPIURL        string `env:"CLERK_API_URL" envDefault:"https://api.clerk.com"`
	ClerkIssuer        string `env:"CLERK_ISSUER"`
	ClerkJWKSURL       string `env:"CLERK_JWKS_URL"`

	// Payments (Stripe)
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`

	// Error reporting
	SentryDSN string `env:"SENTRY_DSN"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Per-caller token bucket on the authenticated API
	RateLimitEnabled   bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitPerMinute int  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	RateLimitBurst     int  `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// JWKSURL returns the JWKS endpoint for session token verification.
// Falls back to the issuer's well-known path.
func (c *Config) JWKSURL() string {
	if c.ClerkJWKSURL != "" {
		return c.ClerkJWKSURL
	}
	if c.ClerkIssuer == "" {
		return ""
	}
	return strings.TrimSuffix(c.ClerkIssuer, "/") + "/.well-known/jwks.json"
}

// CheckoutSuccessURL is where Stripe sends the buyer after paying.
func (c *Config) CheckoutSuccessURL() string {
	return strings.TrimSuffix(c.ServerURL, "/") + "/profile"
}

// CheckoutCancelURL is where Stripe sends the buyer after cancelling.
func (c *Config) CheckoutCancelURL() string {
	return strings.TrimSuffix(c.ServerURL, "/") + "/"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding values that are already set. Missing files
// are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", f, err)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}
