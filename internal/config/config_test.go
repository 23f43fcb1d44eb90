package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/school-portal/internal/config"
)

func TestLoad_RefusesToStartWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := config.Load()
	if !errors.Is(err, config.ErrMissingJWTSecret) {
		t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "configured-secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Auth.JWTSecret != "configured-secret" {
		t.Errorf("JWTSecret = %q", cfg.Auth.JWTSecret)
	}
	if got := cfg.Auth.AccessTokenTTL(); got != 2*time.Hour {
		t.Errorf("AccessTokenTTL = %v, want 2h", got)
	}
	if got := cfg.Auth.LoginWindow(); got != 5*time.Minute {
		t.Errorf("LoginWindow = %v, want 5m", got)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.App.Port)
	}
}
