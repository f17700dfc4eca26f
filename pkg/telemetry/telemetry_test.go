// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConfigureSlogJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "info", "json")

	logger.Info("guardian escalated", slog.String("level", "pause"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if record["msg"] != "guardian escalated" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
	if record["level"] != "pause" {
		t.Fatalf("attribute missing: %v", record)
	}
}

func TestConfigureSlogLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "warn", "text")

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatal("info must be filtered at warn level")
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatal("warn must pass at warn level")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("%q: expected %v, got %v", in, want, got)
		}
	}
}

func TestInitStdout(t *testing.T) {
	shutdown, err := Init("vigil-test", "0.0.1")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	if _, err := InitWithConfig("vigil-test", "0.0.1", Config{Exporter: "carrier-pigeon"}); err == nil {
		t.Fatal("unknown exporter must fail")
	}
	if _, err := InitWithConfig("vigil-test", "0.0.1", Config{Exporter: "otlp"}); err == nil {
		t.Fatal("otlp without endpoint must fail")
	}
}

func TestGuardianMetricsNilSafe(t *testing.T) {
	var gm *GuardianMetrics
	ctx := context.Background()
	// Must not panic.
	gm.RecordTransition(ctx, "s", "clear_violation", "block", 3)
	gm.RecordBlockedOp(ctx, "axioms", "modify")
	gm.RecordMemoryDecision(ctx, "approved")
	gm.RecordNotification(ctx, "escalation")
}

func TestGuardianMetricsRecords(t *testing.T) {
	gm, err := NewGuardianMetrics()
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	ctx := context.Background()
	gm.RecordTransition(ctx, "sess-1", "imminent_harm", "protect", 4)
	gm.RecordBlockedOp(ctx, "purpose", "delete")
	gm.RecordMemoryDecision(ctx, "rejected")
	gm.RecordNotification(ctx, "blocked")
}
