package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// AI provider (OpenAI-compatible chat completions)
	AIAPIKey        string
	AIAPIURL        string
	AIPrimaryModel  string
	AIFallbackModel string
	AIMaxTokens     int
	AITemperature   float64

	// AIPrimaryTimeout bounds the first-tier model call so the whole
	// request stays under the host's request-lifetime ceiling.
	AIPrimaryTimeout time.Duration

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string

	// AppURL is the public frontend origin used for checkout redirects.
	AppURL string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "kairos_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AIAPIKey:         getEnv("AI_API_KEY", ""),
		AIAPIURL:         getEnv("AI_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		AIPrimaryModel:   getEnv("AI_PRIMARY_MODEL", "deepseek-reasoner"),
		AIFallbackModel:  getEnv("AI_FALLBACK_MODEL", "deepseek-chat"),
		AIMaxTokens:      2048,
		AITemperature:    0.7,
		AIPrimaryTimeout: parseDuration(getEnv("AI_PRIMARY_TIMEOUT", "8500ms"), 8500*time.Millisecond),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:       getEnv("STRIPE_PRICE_ID", ""),

		AppURL: getEnv("APP_URL", "http://localhost:5173"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
