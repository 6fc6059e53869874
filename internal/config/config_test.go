package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMemoryBackendWithoutDatabase(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL_MINUTES", "abc")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTTTL != 60*time.Minute {
		t.Fatalf("ttl fallback = %v", cfg.JWTTTL)
	}
	if cfg.HTTPAddress() != ":3000" {
		t.Fatalf("address = %q", cfg.HTTPAddress())
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Fatalf("upload limit = %d", cfg.MaxUploadBytes)
	}
}

func TestLoadRequiresDatabaseForPostgres(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
	t.Setenv("STORAGE_BACKEND", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestParseCSV(t *testing.T) {
	got := parseCSV(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("parseCSV = %v", got)
	}
	if got := parseCSV(" , "); len(got) != 1 || got[0] != "*" {
		t.Fatalf("empty parseCSV = %v", got)
	}
}

func TestAPIBaseForHost(t *testing.T) {
	cases := map[string]string{
		"":                       "http://localhost:3000/api",
		"localhost":              "http://localhost:3000/api",
		"localhost:8080":         "http://localhost:3000/api",
		"fans.example.com":       "https://fans.example.com/api",
		"http://staging.example": "http://staging.example/api",
	}
	for host, want := range cases {
		if got := APIBaseForHost(host); got != want {
			t.Errorf("APIBaseForHost(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestLoadClientFromEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "fanclub.json")
	if err := os.WriteFile(file, []byte(`{"Host": "fans.example.com"}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FANCLUB_GATEWAY", "remote")
	t.Setenv("FANCLUB_STATE_FILE", filepath.Join(dir, "state.json"))

	cfg, err := LoadClient(file, filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if cfg.Gateway != GatewayRemote {
		t.Fatalf("gateway = %q", cfg.Gateway)
	}
	if cfg.APIBase != "https://fans.example.com/api" {
		t.Fatalf("api base = %q", cfg.APIBase)
	}
	if cfg.Timeout() != 15*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout())
	}

	t.Setenv("FANCLUB_GATEWAY", "carrier-pigeon")
	if _, err := LoadClient(); err == nil {
		t.Fatal("expected error for unknown gateway")
	}
}
