package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("MEETUP_STORE", "")
	cfg, err := Load("")
	require.NoError(t, err)

	if cfg.MaxAttendees != 20 || cfg.SeedWindow != time.Hour || cfg.Store != StoreSQLite {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PlaymakerCutoff != "2025-11-12" || cfg.HarmonyPenalty != 0.4 {
		t.Fatalf("unexpected badge/harmony defaults: %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meetup.yml")
	content := `
max_attendees: 16
seed_window: 30m
store: postgres
database_url: postgres://file
harmony_tokens: ["UnViZW58UmFtdGlu"]
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("MEETUP_DATABASE_URL", "postgres://env")
	t.Setenv("MEETUP_LOG_FILE", filepath.Join(dir, "meetup.log"))

	cfg, err := Load(path)
	require.NoError(t, err)

	if cfg.MaxAttendees != 16 || cfg.SeedWindow != 30*time.Minute {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://env" {
		t.Fatalf("expected env override, got %q", cfg.DatabaseURL)
	}
	if cfg.Log.Level != "debug" || cfg.Log.MaxBackups != 3 {
		t.Fatalf("expected file level with default rotation, got %+v", cfg.Log)
	}

	h, errs := cfg.Harmony()
	if len(errs) != 0 || !h.Conflicts("Ruben", "Ramtin") {
		t.Fatalf("expected decoded harmony pair, errs=%v", errs)
	}
}

func TestHarmonyTokensFromEnv(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(func(key string) string {
		if key == "MEETUP_HARMONY_TOKENS" {
			return " UnViZW58UmFtdGlu , ,bm90LWEtcGFpcg== "
		}
		return ""
	})
	if len(cfg.HarmonyTokens) != 2 {
		t.Fatalf("expected two tokens, got %v", cfg.HarmonyTokens)
	}
	_, errs := cfg.Harmony()
	if len(errs) != 1 {
		t.Fatalf("expected one decode error, got %v", errs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few attendees", func(c *Config) { c.MaxAttendees = 7 }},
		{"bad cutoff", func(c *Config) { c.PlaymakerCutoff = "soon" }},
		{"unknown store", func(c *Config) { c.Store = "redis" }},
		{"postgres without dsn", func(c *Config) { c.Store = StorePostgres; c.DatabaseURL = "" }},
		{"zero window", func(c *Config) { c.SeedWindow = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
