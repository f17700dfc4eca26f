// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package guardian implements the graduated-response state machine.
//
// The engine is a set of pure functions over explicit state values: it
// consumes trigger events from a closed set and computes the next response
// level plus the side-effect flags the surrounding runtime must act on
// (notify, offer alternatives, explain, preserve state). Escalation is
// strictly monotonic; de-escalation requires explicit user acknowledgment.
//
// No function in this package blocks, performs I/O, or fails: the closed
// trigger and level sets make invalid input a type-level impossibility.
// Actual notification and persistence are the responsibility of the
// collaborator consuming the returned state (see pkg/session).
package guardian

import "fmt"

// Level is an ordered severity tier governing how assertively the guardian
// intervenes. Levels form a total order: Flow < Nudge < Pause < Block < Protect.
type Level int

const (
	// Flow: no intervention, the agent proceeds normally.
	Flow Level = iota
	// Nudge: a gentle course correction, no interruption.
	Nudge
	// Pause: the agent stops and the user is notified.
	Pause
	// Block: the action is refused; alternatives and an explanation are owed.
	Block
	// Protect: imminent harm; working state is preserved before anything else.
	Protect
)

// Levels returns all levels in ascending severity order.
func Levels() []Level {
	return []Level{Flow, Nudge, Pause, Block, Protect}
}

// Rank returns the level's position in the total order.
func (l Level) Rank() int {
	return int(l)
}

// IsValid reports whether the level is one of the five named tiers.
func (l Level) IsValid() bool {
	return l >= Flow && l <= Protect
}

func (l Level) String() string {
	switch l {
	case Flow:
		return "flow"
	case Nudge:
		return "nudge"
	case Pause:
		return "pause"
	case Block:
		return "block"
	case Protect:
		return "protect"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, bool) {
	for _, l := range Levels() {
		if l.String() == s {
			return l, true
		}
	}
	return Flow, false
}

// maxLevel returns the more severe of two levels.
func maxLevel(a, b Level) Level {
	if b > a {
		return b
	}
	return a
}

// Mode is the guardian's operational mode. The guardian is Embedded while
// it observes silently and Awakened once it intervenes (level >= Pause).
type Mode string

const (
	Embedded Mode = "embedded"
	Awakened Mode = "awakened"
)
