package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "billguard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidFile(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"listen: \":9000\"",
		"web_dir: /srv/billguard/web",
		"model: claude-opus-4-1",
		"max_cached_results: 50",
		"chrome_path: /usr/bin/chromium",
		"request_timeout_seconds: 90",
		"log:",
		"  level: debug",
		"  format: json",
	}, "\n"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.WebDir != "/srv/billguard/web" {
		t.Errorf("WebDir = %q", cfg.WebDir)
	}
	if cfg.Model != "claude-opus-4-1" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxCachedResults != 50 {
		t.Errorf("MaxCachedResults = %d", cfg.MaxCachedResults)
	}
	if cfg.ChromePath != "/usr/bin/chromium" {
		t.Errorf("ChromePath = %q", cfg.ChromePath)
	}
	if cfg.RequestTimeout() != 90*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.RequestTimeout())
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadAppliesDefaultsForUnsetFields(t *testing.T) {
	path := writeConfig(t, "listen: \":9000\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Default()
	if cfg.WebDir != d.WebDir {
		t.Errorf("WebDir = %q, want default %q", cfg.WebDir, d.WebDir)
	}
	if cfg.Model != d.Model {
		t.Errorf("Model = %q, want default %q", cfg.Model, d.Model)
	}
	if cfg.MaxCachedResults != d.MaxCachedResults {
		t.Errorf("MaxCachedResults = %d, want default %d", cfg.MaxCachedResults, d.MaxCachedResults)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want defaults", cfg.Log)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want Default()", cfg)
	}
}

func TestLoadMissingDefaultPathReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := Load(DefaultPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want Default()", cfg)
	}
}

func TestLoadMissingExplicitPathErrors(t *testing.T) {
	if _, err := Load("/nonexistent/billguard.yaml"); err == nil {
		t.Fatal("expected an error for an explicit missing path")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "listen: [\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadRejectsNegativeCacheSize(t *testing.T) {
	path := writeConfig(t, "max_cached_results: -1\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected a validation error for a negative cache size")
	}
}

func TestLoadRejectsOutOfRangeTimeout(t *testing.T) {
	path := writeConfig(t, "request_timeout_seconds: 6000\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected a validation error for an oversized timeout")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}

	cfg = Default()
	cfg.Listen = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an empty listen address")
	}

	cfg = Default()
	cfg.RequestTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a zero timeout")
	}
}
