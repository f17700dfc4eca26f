// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

// State is the guardian's complete observable state. It is a value type:
// transitions return new values and never mutate their input, which keeps
// audit and replay trivial.
//
// Every field other than Level is derived from Level by derive(). That is
// the load-bearing design decision of this package: the side-effect flags
// are never tracked independently, so the guarantees
//
//	Level >= Pause    => UserNotified and Mode == Awakened
//	Level >= Block    => AlternativesOffered and ExplanationProvided
//	Level == Protect  => StatePreserved
//
// hold in every reachable state by construction rather than by a
// case-by-case preservation argument.
type State struct {
	Level Level `json:"level"`
	Mode  Mode  `json:"mode"`

	UserNotified        bool `json:"user_notified"`
	StatePreserved      bool `json:"state_preserved"`
	AlternativesOffered bool `json:"alternatives_offered"`
	ExplanationProvided bool `json:"explanation_provided"`
}

// derive computes the full state for an effective response level.
//
// StatePreserved is true at Flow (nothing is at risk, the working state is
// trivially intact) and at Protect (an explicit preservation snapshot is
// required before any other response). At intermediate levels the working
// state is in flux.
func derive(level Level) State {
	return State{
		Level:               level,
		Mode:                deriveMode(level),
		UserNotified:        level >= Pause,
		StatePreserved:      level == Flow || level >= Protect,
		AlternativesOffered: level >= Block,
		ExplanationProvided: level >= Block,
	}
}

func deriveMode(level Level) Mode {
	if level >= Pause {
		return Awakened
	}
	return Embedded
}

// FlagChange records a side-effect flag that flipped from false to true
// during a transition. The notification sink consumes these: only a
// false->true flip obligates the runtime to surface something to the user,
// so a trigger at an unchanged level produces no changes and no re-notification.
type FlagChange struct {
	Flag string `json:"flag"`
	From Level  `json:"from"`
	To   Level  `json:"to"`
}

// Flag names reported by Diff.
const (
	FlagUserNotified        = "user_notified"
	FlagStatePreserved      = "state_preserved"
	FlagAlternativesOffered = "alternatives_offered"
	FlagExplanationProvided = "explanation_provided"
)

// Diff returns the side-effect flags that flipped false->true between two
// states. An empty result means the transition carries no new obligation.
func Diff(prev, next State) []FlagChange {
	var changes []FlagChange
	add := func(name string, before, after bool) {
		if !before && after {
			changes = append(changes, FlagChange{Flag: name, From: prev.Level, To: next.Level})
		}
	}
	add(FlagUserNotified, prev.UserNotified, next.UserNotified)
	add(FlagStatePreserved, prev.StatePreserved, next.StatePreserved)
	add(FlagAlternativesOffered, prev.AlternativesOffered, next.AlternativesOffered)
	add(FlagExplanationProvided, prev.ExplanationProvided, next.ExplanationProvided)
	return changes
}
