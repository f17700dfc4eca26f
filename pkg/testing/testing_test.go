// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"testing"

	"github.com/vigil-sh/vigil/pkg/guardian"
	"github.com/vigil-sh/vigil/pkg/memory"
)

func TestCheckStateAcceptsDerivedStates(t *testing.T) {
	state := guardian.Initial()
	if err := CheckState(state); err != nil {
		t.Fatalf("initial state must pass: %v", err)
	}
	for _, trigger := range guardian.Triggers() {
		next := guardian.Transition(state, trigger)
		if err := CheckState(next); err != nil {
			t.Fatalf("state after %s must pass: %v", trigger, err)
		}
	}
}

func TestCheckStateRejectsForgedStates(t *testing.T) {
	forged := guardian.State{
		Level: guardian.Block,
		Mode:  guardian.Awakened,
		// AlternativesOffered deliberately left false.
		UserNotified:        true,
		ExplanationProvided: true,
	}
	if err := CheckState(forged); err == nil {
		t.Fatal("a block state without alternatives must fail")
	}

	badLevel := guardian.State{Level: guardian.Level(42)}
	if err := CheckState(badLevel); err == nil {
		t.Fatal("an out-of-set level must fail")
	}
}

func TestCheckConsent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	m, err := store.Propose("always run linters before commit", memory.ExplicitTeaching, memory.Project)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckConsent(store); err != nil {
		t.Fatalf("pending-only store must pass: %v", err)
	}

	if _, err := store.Approve(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordEpisode("build was slow today", memory.SuccessfulPattern); err != nil {
		t.Fatal(err)
	}
	if err := CheckConsent(store); err != nil {
		t.Fatalf("store after approval must pass: %v", err)
	}
}

func TestRandomTriggersDeterministic(t *testing.T) {
	a := RandomTriggers(7, 100)
	b := RandomTriggers(7, 100)
	if len(a) != 100 || len(b) != 100 {
		t.Fatalf("expected 100 triggers, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %s vs %s", i, a[i], b[i])
		}
		if !a[i].IsValid() {
			t.Fatalf("generated trigger %q is not in the closed set", a[i])
		}
	}
}

func TestAssertionsRecordFailures(t *testing.T) {
	// Run the failing assertions against a throwaway T so this test can
	// observe the failure without failing itself.
	inner := &testing.T{}
	a := NewAssertions(inner)
	a.AssertEqual(1, 2, "mismatch")
	if !a.Failed() {
		t.Fatal("failed assertion must be recorded")
	}

	ok := NewAssertions(inner)
	ok.AssertState(guardian.Initial()).HasLevel(guardian.Flow).IsEmbedded().PreservesState()
	if ok.Failed() {
		t.Fatal("valid initial state must pass fluent assertions")
	}
}
