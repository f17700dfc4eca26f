// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads Vigil's runtime configuration: defaults, then an
// optional YAML file, then VIGIL_-prefixed environment variables.
//
// Only the two mutable strata (methodology, technical) are file-backed;
// the immutable strata have no configuration surface at all. Reloads of the
// mutable files go through the layer guard (see Watcher).
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Memory    MemoryConfig    `koanf:"memory"`
	Layers    LayersConfig    `koanf:"layers"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type MemoryConfig struct {
	// Persist enables durable storage of approved semantic memories.
	Persist bool `koanf:"persist"`
	// Path is the SQLite database file for semantic memories.
	Path string `koanf:"path"`
}

type LayersConfig struct {
	// MethodologyPath and TechnicalPath point at the definition documents
	// backing the two mutable strata.
	MethodologyPath string `koanf:"methodology_path"`
	TechnicalPath   string `koanf:"technical_path"`
}

// Load reads configuration from defaults, the optional file at path, and
// the VIGIL_ environment (VIGIL_LOG_LEVEL -> log.level).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("telemetry.exporter", "stdout")
	k.Set("memory.persist", false)
	k.Set("memory.path", "vigil.db")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV. Only the first underscore separates the section
	// from the key, so multi-word keys stay addressable
	// (VIGIL_TELEMETRY_OTLP_ENDPOINT -> telemetry.otlp_endpoint).
	if err := k.Load(env.Provider("VIGIL_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "VIGIL_"))
		return strings.Join(strings.SplitN(key, "_", 2), ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
