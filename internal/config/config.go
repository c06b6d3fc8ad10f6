package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	ListenAddr  string
	DBDSN       string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	// Gemini settings for vendor matching and chat.
	GeminiAPIKey string
	GeminiModel  string
}

func Load() *Config {
	config := &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		DBDSN:        os.Getenv("DB_DSN"),
		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:    getEnv("JWT_ISS", "vira-api"),
		JWTAudience:  getEnv("JWT_AUD", "vira-api"),
		JWTExpiry:    24 * time.Hour, // Default to 24 hours
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}

	// Parse JWT expiry from environment if provided
	if expiryStr := os.Getenv("JWT_EXPIRY"); expiryStr != "" {
		if expiry, err := time.ParseDuration(expiryStr); err == nil {
			config.JWTExpiry = expiry
		}
	}

	return config
}

// Validate checks that the loaded configuration is usable. The Gemini
// key may be empty: the AI endpoints then report themselves unavailable
// instead of blocking server start.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if os.Getenv("ENVIRONMENT") == "production" && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed from the default in production")
	}
	if strings.TrimSpace(c.JWTIssuer) == "" {
		return errors.New("JWT_ISS must not be empty")
	}
	if strings.TrimSpace(c.JWTAudience) == "" {
		return errors.New("JWT_AUD must not be empty")
	}
	if c.JWTExpiry < time.Minute {
		return fmt.Errorf("JWT_EXPIRY %v is too short (minimum 1m)", c.JWTExpiry)
	}
	if c.JWTExpiry > 30*24*time.Hour {
		return fmt.Errorf("JWT_EXPIRY %v is too long (maximum 720h)", c.JWTExpiry)
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		return errors.New("GEMINI_MODEL must not be empty")
	}
	return nil
}

// LoadAndValidate loads the configuration and validates it in one step.
func LoadAndValidate() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
