// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory implements the consent-gated memory workflow.
//
// Candidate long-term memories enter as pending proposals and become
// permanent semantic memories only through explicit user approval. Rejection
// is equally permanent and suppresses re-asking for identical content.
// Episodic memories are a separate transient pool purged at session end.
//
// Any approval that writes into layer-backed configuration is routed through
// the layer guard first: approval grants consent, never a bypass of layer
// protection.
package memory

import (
	"time"

	"github.com/vigil-sh/vigil/pkg/layers"
)

// Type is a memory's lifecycle state.
type Type string

const (
	// Pending awaits user approval or rejection.
	Pending Type = "pending"
	// Semantic is a permanently stored, user-approved fact.
	Semantic Type = "semantic"
	// Episodic is a session-scoped observation, discarded at session end.
	Episodic Type = "episodic"
	// Rejected is terminal; identical content is never proposed again.
	Rejected Type = "rejected"
)

// IsValid reports whether the type is one of the four lifecycle states.
func (t Type) IsValid() bool {
	switch t {
	case Pending, Semantic, Episodic, Rejected:
		return true
	default:
		return false
	}
}

// Source describes how a candidate memory was detected. Confidence is
// derived from the source, not supplied by the caller.
type Source string

const (
	UserCorrection      Source = "user_correction"
	ExplicitTeaching    Source = "explicit_teaching"
	PreferenceDetection Source = "preference_detection"
	ErrorResolution     Source = "error_resolution"
	SuccessfulPattern   Source = "successful_pattern"
)

// Sources returns the closed source set.
func Sources() []Source {
	return []Source{
		UserCorrection,
		ExplicitTeaching,
		PreferenceDetection,
		ErrorResolution,
		SuccessfulPattern,
	}
}

// IsValid reports whether the source belongs to the closed set.
func (s Source) IsValid() bool {
	switch s {
	case UserCorrection, ExplicitTeaching, PreferenceDetection,
		ErrorResolution, SuccessfulPattern:
		return true
	default:
		return false
	}
}

// ConfidenceFor maps a detection source to a confidence score (0-100).
// Explicit teaching is certain; detected patterns are not.
func ConfidenceFor(s Source) int {
	switch s {
	case ExplicitTeaching:
		return 100
	case UserCorrection:
		return 95
	case ErrorResolution:
		return 85
	case PreferenceDetection:
		return 75
	case SuccessfulPattern:
		return 60
	default:
		return 0
	}
}

// Scope bounds where a memory applies.
type Scope string

const (
	Global  Scope = "global"
	Project Scope = "project"
)

// IsValid reports whether the scope is global or project.
func (s Scope) IsValid() bool {
	return s == Global || s == Project
}

// Memory is one remembered (or candidate) fact.
type Memory struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Type         Type      `json:"type"`
	Source       Source    `json:"source"`
	Scope        Scope     `json:"scope"`
	Confidence   int       `json:"confidence"`
	UserApproved bool      `json:"user_approved"`
	CreatedAt    time.Time `json:"created_at"`

	// TargetsLayer marks memories whose content belongs to layer-backed
	// configuration; approval of such a memory must pass the layer guard.
	TargetsLayer bool         `json:"targets_layer,omitempty"`
	TargetLayer  layers.Layer `json:"target_layer,omitempty"`
}
