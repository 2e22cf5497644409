package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every secret and endpoint the application needs. It is built
// once at startup and injected into the services that need it, so the core
// never reads the environment on its own.
type Config struct {
	DBConnectionString   string
	JWTSecret            string
	ProviderBaseURL      string
	ProviderClientID     string
	ProviderClientSecret string
	WebhookSecret        string
	CronSecret           string
	Port                 string
}

const defaultProviderBaseURL = "https://api.openfinance.example.com"

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	cfg := &Config{
		DBConnectionString:   os.Getenv("DB_CONNECTION_STRING"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		ProviderBaseURL:      os.Getenv("PROVIDER_BASE_URL"),
		ProviderClientID:     os.Getenv("PROVIDER_CLIENT_ID"),
		ProviderClientSecret: os.Getenv("PROVIDER_CLIENT_SECRET"),
		WebhookSecret:        os.Getenv("PROVIDER_WEBHOOK_SECRET"),
		CronSecret:           os.Getenv("CRON_SECRET"),
		Port:                 os.Getenv("PORT"),
	}

	if cfg.ProviderBaseURL == "" {
		cfg.ProviderBaseURL = defaultProviderBaseURL
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var missing []string
	if cfg.DBConnectionString == "" {
		missing = append(missing, "DB_CONNECTION_STRING")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.ProviderClientID == "" {
		missing = append(missing, "PROVIDER_CLIENT_ID")
	}
	if cfg.ProviderClientSecret == "" {
		missing = append(missing, "PROVIDER_CLIENT_SECRET")
	}
	if cfg.WebhookSecret == "" {
		missing = append(missing, "PROVIDER_WEBHOOK_SECRET")
	}
	if cfg.CronSecret == "" {
		missing = append(missing, "CRON_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
