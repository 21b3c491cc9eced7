package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "STORAGE_DRIVER", "WEBHOOK_DEFAULT_TIMEOUT_MS", "WEBHOOK_DEFAULT_RETRIES", "WEBHOOK_FALLBACK_APROVACAO_URL", "WEBHOOK_FALLBACK_GERAL_URL", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "local" {
		t.Errorf("Storage.Driver = %q, want local", cfg.Storage.Driver)
	}
	if cfg.Webhook.DefaultTimeout != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want 30s", cfg.Webhook.DefaultTimeout)
	}
	if cfg.Webhook.DefaultRetries != 3 {
		t.Errorf("DefaultRetries = %d, want 3", cfg.Webhook.DefaultRetries)
	}
	if len(cfg.Webhook.FallbackURLs) != 0 {
		t.Errorf("FallbackURLs = %v, want none", cfg.Webhook.FallbackURLs)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("expected development JWT secret fallback")
	}
}

func TestLoadFallbackWebhook(t *testing.T) {
	t.Setenv("GIN_MODE", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("WEBHOOK_FALLBACK_APROVACAO_URL", "https://hooks.example.com/aprovacao")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Webhook.FallbackURLs["aprovacao"]; got != "https://hooks.example.com/aprovacao" {
		t.Errorf("fallback aprovacao = %q", got)
	}
}

func TestLoadReleaseRequiresSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing in release mode")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("GIN_MODE", "")
	t.Setenv("STORAGE_DRIVER", "s3")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported storage driver")
	}
}
