// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides utilities for testing Vigil's guardian and
// memory behavior.
//
// This package includes:
//   - Assertion helpers for common validations
//   - Structural checks over guardian states and memory stores
//   - Deterministic random trigger sequences for property-style tests
package testing

import (
	"strings"
	"testing"

	"github.com/vigil-sh/vigil/pkg/guardian"
	"github.com/vigil-sh/vigil/pkg/memory"
)

// Assertions provides assertion helpers for testing.
type Assertions struct {
	t      *testing.T
	failed bool
}

// NewAssertions creates a new assertions helper.
func NewAssertions(t *testing.T) *Assertions {
	return &Assertions{t: t}
}

// Failed returns true if any assertion has failed.
func (a *Assertions) Failed() bool {
	return a.failed
}

// AssertEqual asserts that two values are equal.
func (a *Assertions) AssertEqual(expected, actual any, msg string) {
	a.t.Helper()
	if expected != actual {
		a.t.Errorf("%s: expected %v, got %v", msg, expected, actual)
		a.failed = true
	}
}

// AssertTrue asserts that the value is true.
func (a *Assertions) AssertTrue(value bool, msg string) {
	a.t.Helper()
	if !value {
		a.t.Errorf("%s: expected true", msg)
		a.failed = true
	}
}

// AssertFalse asserts that the value is false.
func (a *Assertions) AssertFalse(value bool, msg string) {
	a.t.Helper()
	if value {
		a.t.Errorf("%s: expected false", msg)
		a.failed = true
	}
}

// AssertError asserts that the error is not nil.
func (a *Assertions) AssertError(err error, msg string) {
	a.t.Helper()
	if err == nil {
		a.t.Errorf("%s: expected error, got nil", msg)
		a.failed = true
	}
}

// AssertNoError asserts that the error is nil.
func (a *Assertions) AssertNoError(err error, msg string) {
	a.t.Helper()
	if err != nil {
		a.t.Errorf("%s: unexpected error: %v", msg, err)
		a.failed = true
	}
}

// AssertErrorContains asserts that the error message contains the substring.
func (a *Assertions) AssertErrorContains(err error, substr, msg string) {
	a.t.Helper()
	if err == nil {
		a.t.Errorf("%s: expected error containing %q, got nil", msg, substr)
		a.failed = true
		return
	}
	if !strings.Contains(err.Error(), substr) {
		a.t.Errorf("%s: error %q does not contain %q", msg, err.Error(), substr)
		a.failed = true
	}
}

// StateAssertions provides fluent assertions over a guardian state.
type StateAssertions struct {
	*Assertions
	state guardian.State
}

// AssertState creates state assertions for the given state.
func (a *Assertions) AssertState(state guardian.State) *StateAssertions {
	return &StateAssertions{Assertions: a, state: state}
}

// HasLevel asserts the state's response level.
func (s *StateAssertions) HasLevel(level guardian.Level) *StateAssertions {
	s.t.Helper()
	if s.state.Level != level {
		s.t.Errorf("expected level %s, got %s", level, s.state.Level)
		s.failed = true
	}
	return s
}

// IsEmbedded asserts the guardian runs in embedded mode.
func (s *StateAssertions) IsEmbedded() *StateAssertions {
	s.t.Helper()
	if s.state.Mode != guardian.Embedded {
		s.t.Errorf("expected embedded mode, got %s", s.state.Mode)
		s.failed = true
	}
	return s
}

// IsAwakened asserts the guardian runs in awakened mode.
func (s *StateAssertions) IsAwakened() *StateAssertions {
	s.t.Helper()
	if s.state.Mode != guardian.Awakened {
		s.t.Errorf("expected awakened mode, got %s", s.state.Mode)
		s.failed = true
	}
	return s
}

// NotifiesUser asserts the user has been notified.
func (s *StateAssertions) NotifiesUser() *StateAssertions {
	s.t.Helper()
	if !s.state.UserNotified {
		s.t.Errorf("expected user notification at level %s", s.state.Level)
		s.failed = true
	}
	return s
}

// OffersAlternatives asserts alternatives have been offered.
func (s *StateAssertions) OffersAlternatives() *StateAssertions {
	s.t.Helper()
	if !s.state.AlternativesOffered {
		s.t.Errorf("expected alternatives at level %s", s.state.Level)
		s.failed = true
	}
	return s
}

// PreservesState asserts the working state is preserved.
func (s *StateAssertions) PreservesState() *StateAssertions {
	s.t.Helper()
	if !s.state.StatePreserved {
		s.t.Errorf("expected preservation at level %s", s.state.Level)
		s.failed = true
	}
	return s
}

// MemoryAssertions provides fluent assertions over a memory record.
type MemoryAssertions struct {
	*Assertions
	m memory.Memory
}

// AssertMemory creates memory assertions for the given record.
func (a *Assertions) AssertMemory(m memory.Memory) *MemoryAssertions {
	return &MemoryAssertions{Assertions: a, m: m}
}

// IsPending asserts the memory awaits a user decision.
func (m *MemoryAssertions) IsPending() *MemoryAssertions {
	m.t.Helper()
	if m.m.Type != memory.Pending {
		m.t.Errorf("expected pending memory, got %s", m.m.Type)
		m.failed = true
	}
	return m
}

// IsSemantic asserts the memory is permanently stored and approved.
func (m *MemoryAssertions) IsSemantic() *MemoryAssertions {
	m.t.Helper()
	if m.m.Type != memory.Semantic {
		m.t.Errorf("expected semantic memory, got %s", m.m.Type)
		m.failed = true
	}
	if !m.m.UserApproved {
		m.t.Error("semantic memory must be user approved")
		m.failed = true
	}
	return m
}

// HasConfidence asserts the derived confidence score.
func (m *MemoryAssertions) HasConfidence(score int) *MemoryAssertions {
	m.t.Helper()
	if m.m.Confidence != score {
		m.t.Errorf("expected confidence %d, got %d", score, m.m.Confidence)
		m.failed = true
	}
	return m
}

// Quick assertion functions for common patterns

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// RequireEqual fails the test immediately if values are not equal.
func RequireEqual(t *testing.T, expected, actual any, msg string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s: expected %v, got %v", msg, expected, actual)
	}
}
