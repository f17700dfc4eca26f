// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeNotFound, "memory not found", nil)
	if got := err.Error(); got != "[NOT_FOUND] memory not found" {
		t.Fatalf("unexpected message: %s", got)
	}

	wrapped := New(CodeStorage, "persist semantic memory", fmt.Errorf("disk full"))
	if !strings.Contains(wrapped.Error(), "disk full") {
		t.Fatalf("cause missing from message: %s", wrapped.Error())
	}
}

func TestUnwrapAndAs(t *testing.T) {
	cause := fmt.Errorf("row missing")
	err := New(CodeNotFound, "lookup failed", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}

	outer := fmt.Errorf("approve: %w", err)
	var ve *VigilError
	if !errors.As(outer, &ve) {
		t.Fatal("expected errors.As to find VigilError")
	}
	if ve.Code != CodeNotFound {
		t.Fatalf("unexpected code: %s", ve.Code)
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != "" {
		t.Fatal("nil should have empty code")
	}
	if CodeOf(fmt.Errorf("plain")) != CodeInternal {
		t.Fatal("untyped errors map to CodeInternal")
	}
	if CodeOf(New(CodeInvalidTransition, "not pending", nil)) != CodeInvalidTransition {
		t.Fatal("typed code not recovered")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeLayerImmutable, "axioms layer", nil))
	if !HasCode(err, CodeLayerImmutable) {
		t.Fatal("expected LAYER_IMMUTABLE through the wrap chain")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatal("unexpected code match")
	}
}

func TestAsVigilError(t *testing.T) {
	if AsVigilError(nil) != nil {
		t.Fatal("nil in, nil out")
	}
	ve := AsVigilError(fmt.Errorf("boom"))
	if ve.Code != CodeInternal {
		t.Fatalf("unknown errors wrap as internal, got %s", ve.Code)
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New(CodeInvalidInput, "empty content", nil).
		WithContext("operation", "propose").
		WithRecoverable(true)

	raw, jsonErr := json.Marshal(err)
	if jsonErr != nil {
		t.Fatalf("marshal: %v", jsonErr)
	}
	var decoded map[string]any
	if jsonErr := json.Unmarshal(raw, &decoded); jsonErr != nil {
		t.Fatalf("unmarshal: %v", jsonErr)
	}
	if decoded["code"] != "INVALID_INPUT" {
		t.Fatalf("unexpected code in JSON: %v", decoded["code"])
	}
	if decoded["recoverable"] != true {
		t.Fatal("recoverable flag missing")
	}
}
