// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

// Initial returns the state a session starts in: Flow, Embedded, all
// side-effect flags false except StatePreserved. One guardian state exists
// per agent session; it lives for the session and is only ever replaced
// through Transition and Deescalate.
func Initial() State {
	return derive(Flow)
}

// Transition computes the next state for a trigger event.
//
// The effective level is max(current, suggested): a single call can never
// lower the level. All flags are recomputed from the effective level, so
// the state invariants hold on every call without any case analysis.
//
// A trigger whose suggested level does not exceed the current level returns
// a state equal to the input: idempotent, and Diff reports no flips, so no
// notification side effect fires again.
func Transition(s State, trigger Trigger) State {
	effective := maxLevel(s.Level, trigger.SuggestedLevel())
	return derive(effective)
}

// Deescalate computes the state for an explicit de-escalation request.
//
// Without user acknowledgment, or when the target does not lower the level,
// the input state is returned unchanged. That is a no-op, not an error:
// de-escalation without consent is structurally impossible, and callers
// cannot mistake an insufficient-consent outcome for a crash. With
// acknowledgment and a strictly lower target, the state is rebuilt at the
// target level with flags at that level's baseline.
func Deescalate(s State, target Level, acknowledged bool) State {
	if !acknowledged {
		return s
	}
	if !target.IsValid() || target.Rank() >= s.Level.Rank() {
		return s
	}
	return derive(target)
}

// Replay re-applies an ordered trigger sequence from the initial state.
// Transitions are pure and total, so replaying an identical sequence always
// reproduces the same final state.
func Replay(triggers []Trigger) State {
	s := Initial()
	for _, t := range triggers {
		s = Transition(s, t)
	}
	return s
}
