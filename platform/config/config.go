// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// VapiConfig provides settings for the Vapi voice-AI provider.
type VapiConfig interface {
	GetVapiAPIKey() string
	GetVapiBaseURL() string
	GetVapiPhoneNumberID() string
	GetVapiWebhookSecret() string
	GetDispatchTimeout() time.Duration
	IsVapiConfigured() bool
}

// EmailConfig provides settings for transactional email via Resend.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetResendAPIKey() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// WhatsAppConfig provides settings for the WhatsApp gateway.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
}

// SchedulerConfig provides settings for the asynq retry scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	DatabaseURL       string
	CORSAllowAll      bool
	CORSOrigins       []string
	CORSAllowCreds    bool
	VapiAPIKey        string
	VapiBaseURL       string
	VapiPhoneNumberID string
	VapiWebhookSecret string
	EmailEnabled      bool
	ResendAPIKey      string
	EmailFromName     string
	EmailFromAddress  string
	WhatsAppURL       string
	WhatsAppKey       string
	WhatsAppDeviceID  string
	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueueName    string
	AsynqConcurrency  int
	DispatchTimeout   time.Duration
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		CORSAllowAll:      getEnvBool("CORS_ALLOW_ALL", true),
		CORSOrigins:       splitCSV(os.Getenv("CORS_ORIGINS")),
		CORSAllowCreds:    getEnvBool("CORS_ALLOW_CREDENTIALS", false),
		VapiAPIKey:        os.Getenv("VAPI_API_KEY"),
		VapiBaseURL:       getEnv("VAPI_BASE_URL", "https://api.vapi.ai"),
		VapiPhoneNumberID: os.Getenv("VAPI_PHONE_NUMBER_ID"),
		VapiWebhookSecret: os.Getenv("VAPI_WEBHOOK_SECRET"),
		EmailEnabled:      getEnvBool("EMAIL_ENABLED", false),
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "Thavon"),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", "notifications@thavon.ai"),
		WhatsAppURL:       os.Getenv("WHATSAPP_API_URL"),
		WhatsAppKey:       os.Getenv("WHATSAPP_API_KEY"),
		WhatsAppDeviceID:  os.Getenv("WHATSAPP_DEVICE_ID"),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisTLSInsecure:  getEnvBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:    getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:  getEnvInt("ASYNQ_CONCURRENCY", 10),
		DispatchTimeout:   getEnvDuration("DISPATCH_TIMEOUT", 30*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }

func (c *Config) GetVapiAPIKey() string        { return c.VapiAPIKey }
func (c *Config) GetVapiBaseURL() string       { return c.VapiBaseURL }
func (c *Config) GetVapiPhoneNumberID() string { return c.VapiPhoneNumberID }
func (c *Config) GetVapiWebhookSecret() string { return c.VapiWebhookSecret }
func (c *Config) GetDispatchTimeout() time.Duration { return c.DispatchTimeout }
func (c *Config) IsVapiConfigured() bool {
	return c.VapiAPIKey != "" && c.VapiPhoneNumberID != ""
}

func (c *Config) GetEmailEnabled() bool      { return c.EmailEnabled }
func (c *Config) GetResendAPIKey() string    { return c.ResendAPIKey }
func (c *Config) GetEmailFromName() string   { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string      { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
