// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"path/filepath"
	"testing"
)

func TestParseGlobalFlags(t *testing.T) {
	flags, args, err := parseGlobalFlags([]string{"--json", "--config", "vigil.yaml", "check", "--layer", "axioms"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !flags.JSON || flags.ConfigPath != "vigil.yaml" {
		t.Fatalf("global flags not applied: %+v", flags)
	}
	if len(args) != 3 || args[0] != "check" {
		t.Fatalf("command args not preserved: %v", args)
	}
}

func TestParseGlobalFlagsEqualsForm(t *testing.T) {
	flags, args, err := parseGlobalFlags([]string{"--config=/etc/vigil.yaml", "serve"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if flags.ConfigPath != "/etc/vigil.yaml" {
		t.Fatalf("equals form not applied: %+v", flags)
	}
	if len(args) != 1 || args[0] != "serve" {
		t.Fatalf("command args not preserved: %v", args)
	}
}

// Startup failures must return so deferred cleanup runs, never exit inline.
func TestRunServeReturnsConfigError(t *testing.T) {
	err := runServe(context.Background(), globalFlags{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	if err == nil {
		t.Fatal("missing config file must surface as an error")
	}
}

func TestParseGlobalFlagsRejectsUnknown(t *testing.T) {
	if _, _, err := parseGlobalFlags([]string{"--verbose"}); err == nil {
		t.Fatal("unknown global flag must error")
	}
}

func TestParseGlobalFlagsHelp(t *testing.T) {
	flags, args, err := parseGlobalFlags([]string{"-h", "serve"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !flags.Help {
		t.Fatal("help flag not detected")
	}
	if args != nil {
		t.Fatalf("help must short-circuit, got %v", args)
	}
}
