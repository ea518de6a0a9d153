package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("AUTH_ROLE_CLAIM_FALLBACK", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if !cfg.RoleClaimFallback {
		t.Fatal("RoleClaimFallback should default to true")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("AUTH_ROLE_CLAIM_FALLBACK", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RoleClaimFallback {
		t.Fatal("RoleClaimFallback should be disabled")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestEnvBoolBadValueKeepsDefault(t *testing.T) {
	t.Setenv("AUTH_ROLE_CLAIM_FALLBACK", "yes-please")
	if !FromEnv().RoleClaimFallback {
		t.Fatal("unparseable value should fall back to the default")
	}
}
