// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package layers defines the five configuration strata the agent runtime is
// built on and the guard that protects them.
//
// The layer set, its precedence, and its immutability flags are compile-time
// constants. The first three strata (axioms, purpose, principles) can never
// be written at runtime: that property is enforced by construction (there
// is no mutation path in this package) and defended at the boundary by
// Check, which every subsystem must consult before writing layer-backed
// configuration.
package layers

import "fmt"

// Layer identifies one configuration stratum. The integer value is the
// fixed precedence: lower values take precedence over higher ones.
type Layer int

const (
	// Axioms: inviolable ground rules. Immutable.
	Axioms Layer = iota
	// Purpose: why the agent exists. Immutable.
	Purpose
	// Principles: how the agent conducts itself. Immutable.
	Principles
	// Methodology: how work is carried out. Mutable with consent.
	Methodology
	// Technical: concrete tool and environment settings. Mutable with consent.
	Technical
)

// All returns the layers in precedence order.
func All() []Layer {
	return []Layer{Axioms, Purpose, Principles, Methodology, Technical}
}

// Precedence returns the layer's fixed precedence (0 is highest).
func (l Layer) Precedence() int {
	return int(l)
}

// Immutable reports whether the layer may never be written at runtime.
func (l Layer) Immutable() bool {
	return l <= Principles
}

// IsValid reports whether the layer is one of the five strata.
func (l Layer) IsValid() bool {
	return l >= Axioms && l <= Technical
}

func (l Layer) String() string {
	switch l {
	case Axioms:
		return "axioms"
	case Purpose:
		return "purpose"
	case Principles:
		return "principles"
	case Methodology:
		return "methodology"
	case Technical:
		return "technical"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Parse converts a layer name to a Layer.
func Parse(s string) (Layer, bool) {
	for _, l := range All() {
		if l.String() == s {
			return l, true
		}
	}
	return Axioms, false
}
