// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("expected default log format text, got %q", cfg.Log.Format)
	}
	if cfg.Telemetry.Exporter != "stdout" {
		t.Errorf("expected default exporter stdout, got %q", cfg.Telemetry.Exporter)
	}
	if cfg.Memory.Persist {
		t.Error("memory persistence must be off by default")
	}
	if cfg.Memory.Path != "vigil.db" {
		t.Errorf("expected default memory path vigil.db, got %q", cfg.Memory.Path)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vigil.yaml")
	doc := `
log:
  level: debug
  format: json
memory:
  persist: true
  path: /var/lib/vigil/mem.db
layers:
  methodology_path: /etc/vigil/methodology.yaml
  technical_path: /etc/vigil/technical.yaml
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("file values not applied: %+v", cfg.Log)
	}
	if !cfg.Memory.Persist || cfg.Memory.Path != "/var/lib/vigil/mem.db" {
		t.Fatalf("memory config not applied: %+v", cfg.Memory)
	}
	if cfg.Layers.MethodologyPath != "/etc/vigil/methodology.yaml" {
		t.Fatalf("layers config not applied: %+v", cfg.Layers)
	}
	// Defaults survive for keys the file does not set.
	if cfg.Telemetry.Exporter != "stdout" {
		t.Fatalf("default exporter lost: %q", cfg.Telemetry.Exporter)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vigil.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VIGIL_LOG_LEVEL", "error")
	t.Setenv("VIGIL_TELEMETRY_EXPORTER", "otlp")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("env must win over file, got %q", cfg.Log.Level)
	}
	if cfg.Telemetry.Exporter != "otlp" {
		t.Fatalf("env must win over default, got %q", cfg.Telemetry.Exporter)
	}
}

// Keys with underscores in their name must be reachable from the
// environment: only the first underscore separates section from key.
func TestLoadEnvMultiWordKeys(t *testing.T) {
	t.Setenv("VIGIL_TELEMETRY_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("VIGIL_TELEMETRY_OTLP_INSECURE", "true")
	t.Setenv("VIGIL_LAYERS_METHODOLOGY_PATH", "/etc/vigil/methodology.yaml")
	t.Setenv("VIGIL_MEMORY_PERSIST", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telemetry.OTLPEndpoint != "collector:4317" {
		t.Fatalf("otlp endpoint not applied: %+v", cfg.Telemetry)
	}
	if !cfg.Telemetry.OTLPInsecure {
		t.Fatalf("otlp insecure not applied: %+v", cfg.Telemetry)
	}
	if cfg.Layers.MethodologyPath != "/etc/vigil/methodology.yaml" {
		t.Fatalf("methodology path not applied: %+v", cfg.Layers)
	}
	if !cfg.Memory.Persist {
		t.Fatalf("memory persist not applied: %+v", cfg.Memory)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("an explicitly named missing file must fail loudly")
	}
}
