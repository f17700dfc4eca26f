// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"fmt"
	"math/rand"

	"github.com/vigil-sh/vigil/pkg/guardian"
	"github.com/vigil-sh/vigil/pkg/memory"
)

// CheckState verifies the structural guarantees of a guardian state: every
// side-effect flag must agree with the response level. Returns an error
// naming the first violated guarantee, or nil.
func CheckState(state guardian.State) error {
	if !state.Level.IsValid() {
		return fmt.Errorf("level %d is outside the closed set", int(state.Level))
	}
	if got, want := state.UserNotified, state.Level >= guardian.Pause; got != want {
		return fmt.Errorf("at %s user_notified must be %v", state.Level, want)
	}
	if got, want := state.StatePreserved, state.Level == guardian.Flow || state.Level >= guardian.Protect; got != want {
		return fmt.Errorf("at %s state_preserved must be %v", state.Level, want)
	}
	if got, want := state.AlternativesOffered, state.Level >= guardian.Block; got != want {
		return fmt.Errorf("at %s alternatives_offered must be %v", state.Level, want)
	}
	if got, want := state.ExplanationProvided, state.Level >= guardian.Block; got != want {
		return fmt.Errorf("at %s explanation_provided must be %v", state.Level, want)
	}
	wantMode := guardian.Embedded
	if state.Level >= guardian.Pause {
		wantMode = guardian.Awakened
	}
	if state.Mode != wantMode {
		return fmt.Errorf("at %s mode must be %s, got %s", state.Level, wantMode, state.Mode)
	}
	return nil
}

// CheckConsent verifies the consent guarantees of a memory store: every
// semantic memory is user approved with a source-derived confidence, and no
// pending or episodic record claims approval.
func CheckConsent(store *memory.Store) error {
	for _, m := range store.Semantic() {
		if !m.UserApproved {
			return fmt.Errorf("semantic memory %s lacks user approval", m.ID)
		}
		if m.Type != memory.Semantic {
			return fmt.Errorf("memory %s in semantic partition has type %s", m.ID, m.Type)
		}
		if m.Confidence != memory.ConfidenceFor(m.Source) {
			return fmt.Errorf("memory %s confidence %d diverges from source %s", m.ID, m.Confidence, m.Source)
		}
	}
	for _, m := range store.Pending() {
		if m.UserApproved {
			return fmt.Errorf("pending memory %s must not be approved", m.ID)
		}
	}
	for _, m := range store.Episodic() {
		if m.UserApproved {
			return fmt.Errorf("episodic memory %s must not be approved", m.ID)
		}
	}
	for _, m := range store.Rejected() {
		if m.UserApproved {
			return fmt.Errorf("rejected memory %s must not be approved", m.ID)
		}
	}
	return nil
}

// RandomTriggers returns a deterministic pseudo-random trigger sequence.
// The same seed always yields the same sequence, so failures reproduce.
func RandomTriggers(seed int64, n int) []guardian.Trigger {
	rng := rand.New(rand.NewSource(seed))
	all := guardian.Triggers()
	out := make([]guardian.Trigger, n)
	for i := range out {
		out[i] = all[rng.Intn(len(all))]
	}
	return out
}

// RandomLevels returns a deterministic pseudo-random level sequence for
// exercising de-escalation targets.
func RandomLevels(seed int64, n int) []guardian.Level {
	rng := rand.New(rand.NewSource(seed))
	all := guardian.Levels()
	out := make([]guardian.Level, n)
	for i := range out {
		out[i] = all[rng.Intn(len(all))]
	}
	return out
}
