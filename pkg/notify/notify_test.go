// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(WithOutput(&buf), WithPrefix("vigil"))

	sink.Notify(context.Background(), Event{
		Kind:    KindBlocked,
		Reason:  "layer axioms is immutable",
		Details: map[string]string{"layer": "axioms"},
	})

	line := buf.String()
	if !strings.HasPrefix(line, "vigil [blocked]") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "layer axioms is immutable") {
		t.Fatalf("reason missing: %q", line)
	}
	if !strings.Contains(line, "layer=axioms") {
		t.Fatalf("details missing: %q", line)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Notify(context.Background(), Event{Kind: KindEscalation, Reason: "user_notified"})
	r.Notify(context.Background(), Event{Kind: KindNoOp, Reason: "not acknowledged"})

	events := r.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != KindEscalation || events[1].Kind != KindNoOp {
		t.Fatalf("unexpected events: %+v", events)
	}

	r.Reset()
	if len(r.Events()) != 0 {
		t.Fatal("reset must clear events")
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi{a, nil, b}
	m.Notify(context.Background(), Event{Kind: KindDeescalation, Reason: "acknowledged"})

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatal("event must reach every non-nil sink")
	}
}
