package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL", "2m")
	t.Setenv("REFRESH_TOKEN_TTL", "3h")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("PASSWORD_PEPPER", "pepper")
	t.Setenv("JWT_ISSUER", "my-svc")
	t.Setenv("JWT_AUDIENCE", "my-aud")
	t.Setenv("ALLOWED_ORIGINS", `["https://app.example.com"]`)
	t.Setenv("ALLOW_CREDENTIALS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("AccessTokenTTL want 2m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 3*time.Hour {
		t.Fatalf("RefreshTokenTTL want 3h, got %v", cfg.RefreshTokenTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
	if !cfg.AllowCredentials {
		t.Fatal("AllowCredentials want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("AccessTokenTTL want 24h, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTokenTTL want 168h, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost want 10, got %d", cfg.BcryptCost)
	}
	if cfg.SessionStore != SessionStoreRedis {
		t.Fatalf("SessionStore want redis, got %s", cfg.SessionStore)
	}
	if cfg.HTTPAddress != ":4000" {
		t.Fatalf("HTTPAddress want :4000, got %s", cfg.HTTPAddress)
	}
}

func TestLoad_CommaSeparatedOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error due to missing JWT_SECRET, got nil")
	}
}

func TestLoad_HalfKeyPair(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "priv.pem")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for private key without public key")
	}
}

func TestLoad_UnknownStore(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("SESSION_STORE", "memcached")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown session store")
	}
}

func TestLoad_RefreshShorterThanAccess(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ACCESS_TOKEN_TTL", "2h")
	t.Setenv("REFRESH_TOKEN_TTL", "1h")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for refresh TTL shorter than access TTL")
	}
}
