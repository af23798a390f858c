package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8000")
	}
	if cfg.JWTIssuer != "pm-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "pm-auth")
	}
	if cfg.JWTAudience != "pm-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "pm-api")
	}
	if cfg.JWTAccessTTL != "12h" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "12h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9000")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9000")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8000")
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject BCRYPT_COST out of range")
	}
}

func TestAccessTTL(t *testing.T) {
	c := &Config{JWTAccessTTL: "30m"}
	if got := c.AccessTTL(); got != 30*time.Minute {
		t.Errorf("AccessTTL = %v, want 30m", got)
	}
	c = &Config{JWTAccessTTL: "garbage"}
	if got := c.AccessTTL(); got != 12*time.Hour {
		t.Errorf("AccessTTL fallback = %v, want 12h", got)
	}
}
