package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// PayPal
	PayPalBaseURL      string
	PayPalClientID     string
	PayPalClientSecret string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseStorageBucket  string

	// Admin
	AdminJWTSecret string

	// Geocoding
	GeocodeBaseURL string

	// Order submission
	OrderSubmitURL string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	// Local development keeps credentials in a .env file
	_ = godotenv.Load()

	cfg := &Config{
		PayPalBaseURL:      getEnv("PAYPAL_API_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "order-images"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		GeocodeBaseURL: getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),

		OrderSubmitURL: getEnv("ORDER_SUBMIT_URL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if cfg.OrderSubmitURL == "" {
		cfg.OrderSubmitURL = cfg.BaseURL + "/api/order"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PayPalClientID == "" {
		return fmt.Errorf("PAYPAL_CLIENT_ID is required")
	}
	if c.PayPalClientSecret == "" {
		return fmt.Errorf("PAYPAL_CLIENT_SECRET is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.AdminJWTSecret == "" {
		return fmt.Errorf("ADMIN_JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
