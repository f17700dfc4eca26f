// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package classify maps raw runtime events onto the guardian's closed
// trigger set.
//
// Classification is deterministic pattern matching, not a model.
// The guardian engine never sees raw events; its correctness argument rests
// on the closed trigger set, and this package is the default collaborator
// that produces it. Runtimes with richer signals can substitute their own
// classifier; the engine only requires the closed set.
package classify

import (
	"strings"

	"github.com/vigil-sh/vigil/pkg/guardian"
)

// EventKind is the shape of the raw runtime event.
type EventKind string

const (
	// ToolCall: the agent invoked a tool against a resource.
	ToolCall EventKind = "tool_call"
	// UserMessage: the user said something.
	UserMessage EventKind = "user_message"
	// AgentMessage: another agent issued an instruction or commitment.
	AgentMessage EventKind = "agent_message"
)

// Event is one raw runtime occurrence to classify.
type Event struct {
	Kind      EventKind
	Tool      string
	Resource  string
	Operation string
	Message   string
}

// rule maps detection patterns to a trigger. The first matching rule wins;
// rules are ordered most severe first so escalating evidence dominates.
type rule struct {
	Trigger          guardian.Trigger
	ToolPatterns     []string
	ResourcePatterns []string
	MessagePatterns  []string
	WriteOnly        bool // only match non-read operations
}

// defaultRules is the built-in pattern table, ordered most severe first.
var defaultRules = []rule{
	// Imminent harm: destructive, unrecoverable operations.
	{
		Trigger:      guardian.ImminentHarm,
		ToolPatterns: []string{"rm -rf", "mkfs", "dd if=", "drop database", "shred"},
		ResourcePatterns: []string{
			"/etc/passwd", "drop table",
		},
		WriteOnly: true,
	},
	// Clear violation: writes into credential or payment territory.
	{
		Trigger: guardian.ClearViolation,
		ResourcePatterns: []string{
			".ssh/", ".aws/", ".config/gcloud/", ".env", "secrets.", "credentials.",
		},
		WriteOnly: true,
	},
	{
		Trigger:          guardian.ClearViolation,
		ResourcePatterns: []string{"/checkout", "/payment", "/billing", "stripe.com", "paypal.com"},
		WriteOnly:        true,
	},
	// Boundary approached: reading near credentials, or commercial intent.
	{
		Trigger: guardian.BoundaryApproached,
		ResourcePatterns: []string{
			".ssh/", ".aws/", ".config/gcloud/", ".env", "secrets.", "credentials.",
			"/cart", "/checkout", "/payment",
		},
	},
	// User invocation: the user addresses the guardian directly.
	{
		Trigger:         guardian.UserInvocation,
		MessagePatterns: []string{"guardian", "hold on", "wait, stop", "are you sure"},
	},
	// Slight drift: hedging or scope creep in agent output.
	{
		Trigger:         guardian.SlightDrift,
		MessagePatterns: []string{"while i'm at it", "i also went ahead", "additionally i changed"},
	},
}

// Classifier turns raw events into triggers using an ordered rule table.
type Classifier struct {
	rules []rule
}

// New creates a classifier with the built-in rule table.
func New() *Classifier {
	return &Classifier{rules: defaultRules}
}

// Classify maps one event onto the closed trigger set. Events matching no
// rule are natural alignment; contradictory agent instructions are
// multi-agent conflicts regardless of patterns.
func (c *Classifier) Classify(ev Event) guardian.Trigger {
	tool := strings.ToLower(ev.Tool)
	resource := strings.ToLower(ev.Resource)
	message := strings.ToLower(ev.Message)

	if ev.Kind == AgentMessage {
		// Another agent issuing commitments is always worth a pause for
		// arbitration; finer conflict detection is the runtime's concern.
		return guardian.MultiAgentConflict
	}

	for _, r := range c.rules {
		if r.WriteOnly && isReadOperation(ev.Operation) {
			continue
		}
		if matchAny(tool, r.ToolPatterns) ||
			matchAny(resource, r.ResourcePatterns) ||
			(ev.Kind == UserMessage && matchAny(message, r.MessagePatterns)) {
			return r.Trigger
		}
	}
	return guardian.NaturalAlignment
}

func matchAny(value string, patterns []string) bool {
	if value == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(value, p) {
			return true
		}
	}
	return false
}

func isReadOperation(operation string) bool {
	switch strings.ToLower(operation) {
	case "read", "get", "list", "stat", "":
		return true
	default:
		return false
	}
}
