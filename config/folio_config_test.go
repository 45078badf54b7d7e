package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.SlugLength != 12 || cfg.SlugMaxAttempts != 5 {
		t.Errorf("slug settings = %d/%d", cfg.SlugLength, cfg.SlugMaxAttempts)
	}
	if cfg.SessionSecret == "" {
		t.Error("development should fall back to a dev secret")
	}
	if cfg.GoogleRedirectURL != "http://localhost:8080/api/auth/callback/google" {
		t.Errorf("GoogleRedirectURL = %q", cfg.GoogleRedirectURL)
	}
	if cfg.PublishLockTTL != 10*time.Second {
		t.Errorf("PublishLockTTL = %v", cfg.PublishLockTTL)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without SESSION_SECRET in production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("BASE_URL", "https://folio.example/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SLUG_LENGTH", "16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "https://folio.example" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if !cfg.CookieSecure {
		t.Error("production cookies should be secure by default")
	}
	if cfg.SlugLength != 16 {
		t.Errorf("SlugLength = %d", cfg.SlugLength)
	}
}

func TestValidate_ShortSlug(t *testing.T) {
	cfg := &Config{Environment: "development", SlugLength: 4, SlugMaxAttempts: 3}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short slug length")
	}
}
