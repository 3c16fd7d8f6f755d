package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  port: 5432
  user: bakeshop
  password: secret
  database: bakeshop
redis:
  addr: cache.internal:6379
auth:
  sign_in_attempts: 3
  require_verified: true
http:
  port: 8080
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("database host = %q", cfg.Database.Host)
	}
	if cfg.Redis.Addr != "cache.internal:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Auth.SignInAttempts != 3 || !cfg.Auth.RequireVerified {
		t.Errorf("auth config not applied: %+v", cfg.Auth)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("http port = %d", cfg.HTTP.Port)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  host: localhost\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Auth.SignInAttempts != 5 {
		t.Errorf("default sign-in attempts = %d, want 5", cfg.Auth.SignInAttempts)
	}
	if cfg.Auth.SignInWindowSeconds != 300 {
		t.Errorf("default window = %d, want 300", cfg.Auth.SignInWindowSeconds)
	}
	if cfg.Auth.ResetTokenTTLHours != 24 {
		t.Errorf("default token ttl = %d, want 24", cfg.Auth.ResetTokenTTLHours)
	}
	if cfg.HTTP.Port != 3000 {
		t.Errorf("default port = %d, want 3000", cfg.HTTP.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "database: [not a map\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
