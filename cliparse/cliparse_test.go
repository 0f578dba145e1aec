// cliparse/cliparse_test.go
package cliparse

import (
	"testing"

	"github.com/racoongodz/blockchain-voting-backend/models"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "service-key")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("DUPLICATE_POLICY", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected default database type postgres, got %s", cfg.DatabaseType)
	}
	if cfg.StorageBucket != "voter-photos" {
		t.Errorf("expected default bucket voter-photos, got %s", cfg.StorageBucket)
	}
	if cfg.DuplicatePolicy != models.PolicyWalletOrEmail {
		t.Errorf("expected default policy %s, got %s", models.PolicyWalletOrEmail, cfg.DuplicatePolicy)
	}
	if cfg.MaxUploadBytes() != 5<<20 {
		t.Errorf("expected 5MB upload limit, got %d", cfg.MaxUploadBytes())
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected wildcard CORS origin, got %v", cfg.CORSOrigins)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DUPLICATE_POLICY", models.PolicyWalletOrName)

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-t", "sqlite",
		"-storage", "local", "-duplicate-policy", "wallet-only"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DuplicatePolicy != models.PolicyWalletOnly {
		t.Errorf("CLI should override env: expected wallet-only, got %s", cfg.DuplicatePolicy)
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Errorf("unexpected public base URL %s", cfg.PublicBaseURL)
	}
}

func TestParseFlags_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database", map[string]string{"DATABASE_URL": ""}, []string{"-storage", "local"}},
		{"bad database type", nil, []string{"-d", "x", "-t", "mysql", "-storage", "local"}},
		{"supabase without key", map[string]string{"SUPABASE_URL": "https://x", "SUPABASE_KEY": "", "STORAGE_BACKEND": ""}, []string{"-d", "x"}},
		{"unknown storage", nil, []string{"-d", "x", "-storage", "s3"}},
		{"unknown policy", nil, []string{"-d", "x", "-storage", "local", "-duplicate-policy", "name-only"}},
		{"bad port", map[string]string{"PORT": "abc"}, []string{"-d", "x", "-storage", "local"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseFlags_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://vote.example.com, https://admin.example.com ,")

	cfg, err := ParseFlags([]string{"-d", "x", "-t", "sqlite", "-storage", "local"})
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.example.com" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}
