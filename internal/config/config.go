package config

import "os"

// Config holds environment-driven configuration.
type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	StripeSecretKey     string
	StripeWebhookSecret string
}

// Load reads configuration from environment variables.
func Load() Config {
	addr := os.Getenv("MARINA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Config{
		Addr:                addr,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
}
