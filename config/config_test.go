package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/sdi/logger"
	"github.com/kbukum/sdi/observability"
)

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{Name: "svc"}
	cfg.ApplyDefaults()

	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %q", cfg.Logging.Level)
	}
	if cfg.Telemetry.InstrumentationName != observability.DefaultInstrumentationName {
		t.Errorf("expected default instrumentation name, got %q", cfg.Telemetry.InstrumentationName)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{"valid", Config{Name: "svc", Logging: logger.Config{Level: "debug", Format: "json"}}, false, ""},
		{"valid empty logging", Config{Name: "svc"}, false, ""},
		{"missing name", Config{Logging: logger.Config{Level: "info"}}, true, "config.name is required"},
		{"invalid level", Config{Name: "svc", Logging: logger.Config{Level: "loud"}}, true, "config.logging.level must be one of"},
		{"invalid format", Config{Name: "svc", Logging: logger.Config{Format: "xml"}}, true, "config.logging.format must be one of"},
		{
			"telemetry without instrumentation name",
			Config{Name: "svc", Telemetry: TelemetryConfig{Metrics: true}},
			true, "config.telemetry.instrumentationname is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: billing
logging:
  level: debug
  format: json
telemetry:
  metrics: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg Config
	if err := LoadConfig("billing", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "billing" {
		t.Errorf("expected name 'billing', got %q", cfg.Name)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level 'debug', got %q", cfg.Logging.Level)
	}
	if !cfg.Telemetry.Metrics {
		t.Error("expected telemetry.metrics=true")
	}
	if cfg.Telemetry.Tracing {
		t.Error("expected telemetry.tracing=false")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("name: billing\nlogging:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("SDI_LOGGING_LEVEL", "warn")
	t.Setenv("SDI_TELEMETRY_INSTRUMENTATION_NAME", "billing/di")
	t.Setenv("SDI_LOGGING_NO_COLOR", "true")
	t.Setenv("OTHER_NAME", "ignored")

	var cfg Config
	if err := LoadConfig("billing", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "billing" {
		t.Errorf("expected name from file, got %q", cfg.Name)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env to override level, got %q", cfg.Logging.Level)
	}
	if cfg.Telemetry.InstrumentationName != "billing/di" {
		t.Errorf("expected instrumentation name from env, got %q", cfg.Telemetry.InstrumentationName)
	}
	if !cfg.Logging.NoColor {
		t.Error("expected no_color=true from env")
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SDI_NAME=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("SDI_NAME") })

	var cfg Config
	if err := LoadConfig("billing", &cfg, WithConfigFile(filepath.Join(dir, "missing.yml")), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-dotenv" {
		t.Errorf("expected name from .env, got %q", cfg.Name)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg Config
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithFileSystem(&mockFS{}))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigCustomPrefix(t *testing.T) {
	t.Setenv("BILLING_NAME", "prefixed")

	var cfg Config
	if err := LoadConfig("billing", &cfg, WithFileSystem(&mockFS{}), WithEnvPrefix("BILLING")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "prefixed" {
		t.Errorf("expected name from BILLING_NAME, got %q", cfg.Name)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/billing.yml": true,
		"./.env":               true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("billing", LoaderConfig{})
	if files.ConfigFile != "./config/billing.yml" {
		t.Errorf("expected config file at ./config/billing.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected env file at ./.env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./config.yml": true}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("billing", LoaderConfig{ConfigFile: "/etc/billing.yml"})
	if files.ConfigFile != "/etc/billing.yml" {
		t.Errorf("expected explicit config file, got %q", files.ConfigFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("TELEMETRY_INSTRUMENTATION_NAME")
	want := []string{"telemetry_instrumentation_name", "telemetry.instrumentation.name", "telemetry.instrumentation_name"}
	for _, w := range want {
		found := false
		for _, v := range variants {
			if v == w {
				found = true
			}
		}
		if !found {
			t.Errorf("expected variant %q in %v", w, variants)
		}
	}

	if got := generateEnvKeyVariants("NAME"); len(got) != 1 || got[0] != "name" {
		t.Errorf("expected [name], got %v", got)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("APP")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
	if lc.EnvPrefix != "APP" {
		t.Errorf("expected env prefix, got %q", lc.EnvPrefix)
	}
}
