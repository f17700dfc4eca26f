// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package layers

import "fmt"

// OpKind is the kind of access an operation requests.
type OpKind string

const (
	Read   OpKind = "read"
	Modify OpKind = "modify"
	Delete OpKind = "delete"
	Create OpKind = "create"
)

// IsValid reports whether the kind is one of the four access kinds.
func (k OpKind) IsValid() bool {
	switch k {
	case Read, Modify, Delete, Create:
		return true
	default:
		return false
	}
}

// IsWrite reports whether the kind changes layer-backed state.
func (k OpKind) IsWrite() bool {
	return k == Modify || k == Delete || k == Create
}

// Operation is an ephemeral request to access layer-backed configuration.
type Operation struct {
	Layer       Layer  `json:"layer"`
	Kind        OpKind `json:"kind"`
	Description string `json:"description,omitempty"`
}

// Result is the guard's verdict. A blocked result is an expected, named
// outcome the caller must branch on and surface to the user; it is never an
// error and never silently ignored.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allowed() Result {
	return Result{Allowed: true}
}

// blocked builds a refusal with the attached reason.
func blocked(reason string) Result {
	return Result{Allowed: false, Reason: reason}
}

// Check decides whether an operation on layer-backed configuration may
// proceed. Stateless, total, pure: a write to an immutable layer is blocked
// with a reason, everything else is allowed.
//
// Every subsystem that can write layer-backed storage must obtain its write
// capability only after Check allows it. The memory workflow routes
// approvals here; the config watcher routes reloads here.
func Check(op Operation) Result {
	if !op.Layer.IsValid() {
		return blocked(fmt.Sprintf("unknown layer %d", int(op.Layer)))
	}
	if !op.Kind.IsValid() {
		return blocked(fmt.Sprintf("unknown operation kind %q", string(op.Kind)))
	}
	if op.Layer.Immutable() && op.Kind != Read {
		return blocked(fmt.Sprintf("layer %s is immutable", op.Layer))
	}
	return allowed()
}

// Guard is the layer guard as an injectable dependency. It is stateless;
// the type exists so collaborators can accept a narrow interface and tests
// can substitute recorders.
type Guard struct{}

// Check applies the package-level Check.
func (Guard) Check(op Operation) Result {
	return Check(op)
}
