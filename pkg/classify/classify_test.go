// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"testing"

	"github.com/vigil-sh/vigil/pkg/guardian"
)

func TestClassifyToolCalls(t *testing.T) {
	c := New()

	tests := []struct {
		name    string
		event   Event
		trigger guardian.Trigger
	}{
		{
			name:    "plain file read",
			event:   Event{Kind: ToolCall, Tool: "file_read", Resource: "README.md", Operation: "read"},
			trigger: guardian.NaturalAlignment,
		},
		{
			name:    "reading near credentials",
			event:   Event{Kind: ToolCall, Tool: "file_read", Resource: "/home/u/.ssh/config", Operation: "read"},
			trigger: guardian.BoundaryApproached,
		},
		{
			name:    "writing credentials",
			event:   Event{Kind: ToolCall, Tool: "file_write", Resource: "/home/u/.aws/credentials", Operation: "write"},
			trigger: guardian.ClearViolation,
		},
		{
			name:    "checkout post",
			event:   Event{Kind: ToolCall, Tool: "http", Resource: "https://shop.example/checkout", Operation: "post"},
			trigger: guardian.ClearViolation,
		},
		{
			name:    "browsing a cart",
			event:   Event{Kind: ToolCall, Tool: "http", Resource: "https://shop.example/cart", Operation: "get"},
			trigger: guardian.BoundaryApproached,
		},
		{
			name:    "destructive shell",
			event:   Event{Kind: ToolCall, Tool: "bash: rm -rf /var/data", Operation: "exec"},
			trigger: guardian.ImminentHarm,
		},
		{
			name:    "ordinary shell",
			event:   Event{Kind: ToolCall, Tool: "bash: ls -la", Operation: "exec"},
			trigger: guardian.NaturalAlignment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.event); got != tt.trigger {
				t.Fatalf("expected %s, got %s", tt.trigger, got)
			}
		})
	}
}

func TestClassifyUserMessages(t *testing.T) {
	c := New()

	if got := c.Classify(Event{Kind: UserMessage, Message: "Guardian, step in please"}); got != guardian.UserInvocation {
		t.Fatalf("expected user invocation, got %s", got)
	}
	if got := c.Classify(Event{Kind: UserMessage, Message: "looks good, continue"}); got != guardian.NaturalAlignment {
		t.Fatalf("expected natural alignment, got %s", got)
	}
}

func TestClassifyAgentMessages(t *testing.T) {
	c := New()
	ev := Event{Kind: AgentMessage, Message: "I will deploy to production now"}
	if got := c.Classify(ev); got != guardian.MultiAgentConflict {
		t.Fatalf("expected multi-agent conflict, got %s", got)
	}
}

func TestClassifyDrift(t *testing.T) {
	c := New()
	ev := Event{Kind: UserMessage, Message: "while I'm at it I refactored the billing module"}
	if got := c.Classify(ev); got != guardian.SlightDrift {
		t.Fatalf("expected slight drift, got %s", got)
	}
}

// Classification is deterministic: the same event always yields the same
// trigger.
func TestClassifyDeterministic(t *testing.T) {
	c := New()
	ev := Event{Kind: ToolCall, Tool: "file_read", Resource: "/home/u/.env", Operation: "read"}
	first := c.Classify(ev)
	for i := 0; i < 10; i++ {
		if got := c.Classify(ev); got != first {
			t.Fatalf("classification diverged: %s vs %s", first, got)
		}
	}
}
