package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ADDR", "DB_DSN", "DB_USER", "DB_NAME", "DRAFT_TTL", "JWT_TTL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	env := LoadEnv()
	if env.AppAddr != ":8080" {
		t.Fatalf("AppAddr default: %q", env.AppAddr)
	}
	if env.DraftTTL != 7*24*time.Hour {
		t.Fatalf("DraftTTL default: %s", env.DraftTTL)
	}
	if env.DBDSN != "" {
		t.Fatalf("expected empty DSN, got %q", env.DBDSN)
	}
	if err := env.Validate(); err == nil {
		t.Fatalf("expected validation error without DSN")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_USER", "umrah")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db:3306")
	t.Setenv("DB_NAME", "umrah")
	t.Setenv("DRAFT_TTL", "48")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PUBLIC_SITE_URL", "https://umrah.example/")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.1")

	env := LoadEnv()
	want := "umrah:secret@tcp(db:3306)/umrah?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	if env.DBDSN != want {
		t.Fatalf("DSN: %q", env.DBDSN)
	}
	if env.DraftTTL != 48*time.Hour {
		t.Fatalf("plain hours DRAFT_TTL: %s", env.DraftTTL)
	}
	if env.JWTTTL != 90*time.Minute {
		t.Fatalf("JWT_TTL: %s", env.JWTTTL)
	}
	if len(env.CORSOrigins) != 2 {
		t.Fatalf("CORS origins: %#v", env.CORSOrigins)
	}
	if len(env.TrustedProxies) != 2 || env.TrustedProxies[1] != "172.16.0.1" {
		t.Fatalf("TrustedProxies: %#v", env.TrustedProxies)
	}
	if env.SiteURL != "https://umrah.example" {
		t.Fatalf("SiteURL: %q", env.SiteURL)
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestNormalizeDSN(t *testing.T) {
	got, err := NormalizeDSN("umrah:pw@tcp(db:3306)/umrah")
	if err != nil {
		t.Fatalf("NormalizeDSN: %v", err)
	}
	for _, want := range []string{"parseTime=true", "clientFoundRows=true"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
	if _, err := NormalizeDSN("not a dsn"); err == nil {
		t.Fatalf("expected parse error")
	}
}
