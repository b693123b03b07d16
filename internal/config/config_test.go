package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv() {
	os.Setenv("MONGO_URI", "mongodb://localhost:27017")
	os.Setenv("MONGO_DB_NAME", "horizon_test")
	os.Setenv("JWT_PRIVATE_KEY", "/tmp/jwt_private.pem")
	os.Setenv("JWT_PUBLIC_KEY", "/tmp/jwt_public.pem")
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setRequiredEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8000")
	}
	if cfg.JWTIssuer != "horizon.auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "horizon.auth")
	}
	if cfg.JWTAudience != "horizon.api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "horizon.api")
	}
	if cfg.AccessTokenTTLMinutes != 5 {
		t.Errorf("AccessTokenTTLMinutes = %d, want 5", cfg.AccessTokenTTLMinutes)
	}
	if cfg.RefreshTokenTTLDays != 30 {
		t.Errorf("RefreshTokenTTLDays = %d, want 30", cfg.RefreshTokenTTLDays)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should default to true")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	setRequiredEnv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("ACCESS_TOKEN_TTL_MINUTES", "10")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.AccessTokenTTLMinutes != 10 {
		t.Errorf("AccessTokenTTLMinutes = %d, want 10", cfg.AccessTokenTTLMinutes)
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	cases := []struct {
		name  string
		unset string
	}{
		{"missing mongo uri", "MONGO_URI"},
		{"missing db name", "MONGO_DB_NAME"},
		{"missing private key", "JWT_PRIVATE_KEY"},
		{"missing public key", "JWT_PUBLIC_KEY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			setRequiredEnv()
			os.Unsetenv(tc.unset)
			if _, err := Load(); err == nil {
				t.Fatalf("Load should fail when %s is unset", tc.unset)
			}
		})
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	setRequiredEnv()
	os.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail for out-of-range BCRYPT_COST")
	}
}

func TestTTLHelpers(t *testing.T) {
	cfg := &Config{AccessTokenTTLMinutes: 5, RefreshTokenTTLDays: 30}
	if got := cfg.AccessTTL(); got != 5*time.Minute {
		t.Errorf("AccessTTL = %v, want 5m", got)
	}
	if got := cfg.RefreshTTL(); got != 30*24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 720h", got)
	}
}
