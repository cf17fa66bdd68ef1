package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("expected default store backend memory, got %s", cfg.StoreBackend)
	}
	if cfg.NotifyTimeout != 5*time.Second {
		t.Errorf("expected default notify timeout 5s, got %s", cfg.NotifyTimeout)
	}
	if cfg.VideoRoomTTL != 4*time.Hour {
		t.Errorf("expected default room TTL 4h, got %s", cfg.VideoRoomTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", " Postgres ")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")
	t.Setenv("NOTIFY_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.StoreBackend != "postgres" {
		t.Errorf("expected normalized backend postgres, got %q", cfg.StoreBackend)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Errorf("expected normalized email provider sendgrid, got %q", cfg.EmailProvider)
	}
	if cfg.NotifyTimeout != 2*time.Second {
		t.Errorf("expected notify timeout 2s, got %s", cfg.NotifyTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.RedisTLS {
		t.Error("expected RedisTLS true")
	}
}

func TestGetEnvAsIntInvalid(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	cfg := Load()
	if cfg.WorkerCount != 2 {
		t.Errorf("expected default worker count 2 on bad value, got %d", cfg.WorkerCount)
	}
}
