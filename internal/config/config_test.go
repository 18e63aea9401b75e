package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CHAT_SESSION_TTL", "")
	t.Setenv("EMAIL_PROVIDER", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.ChatSessionTTL != 30*time.Minute {
		t.Fatalf("expected default session TTL, got %s", cfg.ChatSessionTTL)
	}
	if cfg.EmailProvider != "none" {
		t.Fatalf("expected email provider none, got %s", cfg.EmailProvider)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CHAT_SESSION_TTL", "45m")
	t.Setenv("CHAT_RATE_BURST", "25")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://kaswaterproofingbuilding.com, https://www.kaswaterproofingbuilding.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.ChatSessionTTL != 45*time.Minute {
		t.Fatalf("expected session TTL override, got %s", cfg.ChatSessionTTL)
	}
	if cfg.ChatRateBurst != 25 {
		t.Fatalf("expected rate burst override, got %d", cfg.ChatRateBurst)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Fatalf("expected lowercased email provider, got %s", cfg.EmailProvider)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://www.kaswaterproofingbuilding.com" {
		t.Fatalf("expected two trimmed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CHAT_SESSION_TTL", "not-a-duration")
	t.Setenv("CHAT_RATE_BURST", "many")
	t.Setenv("REDIS_TLS", "si")
	cfg := Load()
	if cfg.ChatSessionTTL != 30*time.Minute {
		t.Fatalf("expected TTL fallback, got %s", cfg.ChatSessionTTL)
	}
	if cfg.ChatRateBurst != 10 {
		t.Fatalf("expected burst fallback, got %d", cfg.ChatRateBurst)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected redis TLS fallback false")
	}
}
