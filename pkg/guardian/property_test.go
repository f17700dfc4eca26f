// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package guardian_test

import (
	"testing"

	"github.com/vigil-sh/vigil/pkg/guardian"
	vigiltesting "github.com/vigil-sh/vigil/pkg/testing"
)

// Every state reachable through any trigger sequence must keep all
// side-effect flags consistent with its level.
func TestStructuralGuaranteesUnderRandomTriggers(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		state := guardian.Initial()
		if err := vigiltesting.CheckState(state); err != nil {
			t.Fatalf("seed %d initial: %v", seed, err)
		}
		for i, trigger := range vigiltesting.RandomTriggers(seed, 200) {
			prev := state
			state = guardian.Transition(state, trigger)
			if err := vigiltesting.CheckState(state); err != nil {
				t.Fatalf("seed %d step %d (%s): %v", seed, i, trigger, err)
			}
			if state.Level.Rank() < prev.Level.Rank() {
				t.Fatalf("seed %d step %d: trigger %s lowered %s to %s",
					seed, i, trigger, prev.Level, state.Level)
			}
		}
	}
}

// Interleaving de-escalation requests must not break the guarantees either,
// whether or not the user acknowledged them.
func TestStructuralGuaranteesUnderMixedSequences(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		triggers := vigiltesting.RandomTriggers(seed, 100)
		targets := vigiltesting.RandomLevels(seed+1000, 100)

		state := guardian.Initial()
		for i := range triggers {
			state = guardian.Transition(state, triggers[i])
			acknowledged := i%3 == 0
			prev := state
			state = guardian.Deescalate(state, targets[i], acknowledged)
			if err := vigiltesting.CheckState(state); err != nil {
				t.Fatalf("seed %d step %d: %v", seed, i, err)
			}
			if !acknowledged && state != prev {
				t.Fatalf("seed %d step %d: unacknowledged de-escalation changed state", seed, i)
			}
		}
	}
}

// Replaying a sequence must reproduce the exact final state.
func TestReplayIsDeterministic(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		triggers := vigiltesting.RandomTriggers(seed, 50)
		first := guardian.Replay(triggers)
		second := guardian.Replay(triggers)
		if first != second {
			t.Fatalf("seed %d: replay diverged: %+v vs %+v", seed, first, second)
		}

		state := guardian.Initial()
		for _, trigger := range triggers {
			state = guardian.Transition(state, trigger)
		}
		if state != first {
			t.Fatalf("seed %d: replay diverged from stepwise application", seed)
		}
	}
}
