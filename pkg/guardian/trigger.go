// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

// Trigger is a classified runtime event consumed by the engine. The set is
// closed: classification of raw events (tool calls, user messages, detected
// anomalies) onto this set happens outside the engine (see pkg/classify).
type Trigger string

const (
	// NaturalAlignment: the agent is acting within expectations.
	NaturalAlignment Trigger = "natural_alignment"
	// SlightDrift: minor deviation from the user's intent.
	SlightDrift Trigger = "slight_drift"
	// BoundaryApproached: the agent is near an irreversible or
	// trust-affecting boundary.
	BoundaryApproached Trigger = "boundary_approached"
	// ClearViolation: a rule with irreversible consequences would be broken.
	ClearViolation Trigger = "clear_violation"
	// ImminentHarm: harm is about to occur; strongest response.
	ImminentHarm Trigger = "imminent_harm"
	// UserInvocation: the user addressed the guardian directly.
	UserInvocation Trigger = "user_invocation"
	// MultiAgentConflict: two agents issued contradictory commitments.
	MultiAgentConflict Trigger = "multi_agent_conflict"
)

// Triggers returns the closed trigger set.
func Triggers() []Trigger {
	return []Trigger{
		NaturalAlignment,
		SlightDrift,
		BoundaryApproached,
		ClearViolation,
		ImminentHarm,
		UserInvocation,
		MultiAgentConflict,
	}
}

// IsValid reports whether the trigger belongs to the closed set.
func (t Trigger) IsValid() bool {
	switch t {
	case NaturalAlignment, SlightDrift, BoundaryApproached, ClearViolation,
		ImminentHarm, UserInvocation, MultiAgentConflict:
		return true
	default:
		return false
	}
}

func (t Trigger) String() string {
	return string(t)
}

// ParseTrigger converts a trigger name to a Trigger.
func ParseTrigger(s string) (Trigger, bool) {
	t := Trigger(s)
	return t, t.IsValid()
}

// SuggestedLevel maps the trigger to the response level it calls for.
// The engine escalates to at least this level, never below the current one.
func (t Trigger) SuggestedLevel() Level {
	switch t {
	case NaturalAlignment:
		return Flow
	case SlightDrift:
		return Nudge
	case BoundaryApproached, UserInvocation, MultiAgentConflict:
		return Pause
	case ClearViolation:
		return Block
	case ImminentHarm:
		return Protect
	default:
		// Unknown triggers cannot arise through the public API; classify
		// before calling Transition. Treated as no suggestion.
		return Flow
	}
}
