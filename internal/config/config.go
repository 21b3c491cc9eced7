package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Webhook   WebhookConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port        string
	Mode        string // gin mode: debug, release, test
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

// StorageConfig selects the object store holding generated vouchers.
type StorageConfig struct {
	Driver          string // "gcs" or "local"
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
	LocalDir        string
}

// WebhookConfig carries dispatch defaults and the per-category fallback
// endpoints used when no active row exists in webhook_configs_motoboy.
type WebhookConfig struct {
	DefaultTimeout time.Duration
	DefaultRetries int
	FallbackURLs   map[string]string
}

type RateLimitConfig struct {
	PDFPerMinute int
}

// Load reads configuration from the environment. Optional keys fall back to
// development defaults; in release mode the secrets must be present.
func Load() (*Config, error) {
	var missing []string

	require := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			missing = append(missing, key)
		}
		return val
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Mode:        getEnv("GIN_MODE", "debug"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
			AdminUsername: os.Getenv("ADMIN_USERNAME"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			Bucket:          getEnv("STORAGE_BUCKET", "motoboy-documents"),
			CredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
			PublicBaseURL:   strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
			LocalDir:        getEnv("LOCAL_STORAGE_DIR", "data/storage"),
		},
		Webhook: WebhookConfig{
			DefaultTimeout: time.Duration(getEnvInt("WEBHOOK_DEFAULT_TIMEOUT_MS", 30000)) * time.Millisecond,
			DefaultRetries: getEnvInt("WEBHOOK_DEFAULT_RETRIES", 3),
			FallbackURLs:   map[string]string{},
		},
		RateLimit: RateLimitConfig{
			PDFPerMinute: getEnvInt("PDF_RATE_LIMIT_PER_MINUTE", 30),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if url := os.Getenv("WEBHOOK_FALLBACK_APROVACAO_URL"); url != "" {
		cfg.Webhook.FallbackURLs["aprovacao"] = url
	}
	if url := os.Getenv("WEBHOOK_FALLBACK_GERAL_URL"); url != "" {
		cfg.Webhook.FallbackURLs["geral"] = url
	}

	if cfg.Server.Mode == "release" {
		cfg.Auth.JWTSecret = require("JWT_SECRET")
		if cfg.Storage.Driver == "gcs" {
			require("STORAGE_BUCKET")
		}
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "default_super_secret_key" // development only
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if cfg.Storage.Driver != "gcs" && cfg.Storage.Driver != "local" {
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if cfg.Webhook.DefaultRetries < 1 {
		cfg.Webhook.DefaultRetries = 1
	}

	return cfg, nil
}

// DSN returns the postgres connection URL for GORM
func (c *DatabaseConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
