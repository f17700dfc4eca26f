// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns the per-session singletons: exactly one guardian
// state and one memory store per agent session, never shared across
// sessions.
//
// The guardian engine and the memory workflow are pure functions over
// explicit state; they provide no synchronization of their own. The session
// is where serialization happens: a single mutex guarantees at most one
// in-flight transition at a time even when multiple physical threads feed
// the same session. It is also where the pure results meet the outside
// world: flag flips, refusals, and consent gaps are delivered to the
// notification sink with their reasons.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/vigil-sh/vigil/pkg/errors"
	"github.com/vigil-sh/vigil/pkg/guardian"
	"github.com/vigil-sh/vigil/pkg/memory"
	"github.com/vigil-sh/vigil/pkg/notify"
	"github.com/vigil-sh/vigil/pkg/telemetry"
)

// Session is one agent session's guardian and memory, behind one mutex.
type Session struct {
	mu      sync.Mutex
	id      string
	state   guardian.State
	store   *memory.Store
	history []guardian.Trigger

	sink    notify.Sink
	logger  *slog.Logger
	metrics *telemetry.GuardianMetrics
}

// Option configures a Session.
type Option func(*Session)

// WithSink sets the notification sink.
func WithSink(sink notify.Sink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the guardian metrics tracker.
func WithMetrics(m *telemetry.GuardianMetrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithMemoryStore sets a pre-built memory store (for custom guards or
// persisters).
func WithMemoryStore(store *memory.Store) Option {
	return func(s *Session) {
		if store != nil {
			s.store = store
		}
	}
}

// WithID sets the session id. Used by tests for stable ids.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New creates a session starting at the guardian's initial state with an
// empty memory store.
func New(opts ...Option) *Session {
	s := &Session{
		id:     "sess-" + uuid.NewString(),
		state:  guardian.Initial(),
		store:  memory.NewStore(),
		sink:   notify.NewSlogSink(nil),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns the current guardian state.
func (s *Session) State() guardian.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Memory returns the session's memory store.
func (s *Session) Memory() *memory.Store {
	return s.store
}

// History returns a copy of the trigger sequence applied so far.
func (s *Session) History() []guardian.Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]guardian.Trigger, len(s.history))
	copy(out, s.history)
	return out
}

// Trigger applies one classified event. Flag flips are delivered to the
// sink; a trigger at an unchanged level delivers nothing.
func (s *Session) Trigger(ctx context.Context, trigger guardian.Trigger) guardian.State {
	s.mu.Lock()
	prev := s.state
	next := guardian.Transition(prev, trigger)
	s.state = next
	s.history = append(s.history, trigger)
	s.mu.Unlock()

	changes := guardian.Diff(prev, next)
	for _, c := range changes {
		ev := notify.Event{
			Kind:   notify.KindEscalation,
			Reason: c.Flag,
			Details: map[string]string{
				"trigger": trigger.String(),
				"from":    c.From.String(),
				"to":      c.To.String(),
			},
		}
		s.sink.Notify(ctx, ev)
		s.metrics.RecordNotification(ctx, string(ev.Kind))
	}

	if next.Level != prev.Level {
		s.logger.InfoContext(ctx, "guardian escalated",
			slog.String("session_id", s.id),
			slog.String("trigger", trigger.String()),
			slog.String("from", prev.Level.String()),
			slog.String("to", next.Level.String()),
		)
	}
	s.metrics.RecordTransition(ctx, s.id, trigger.String(), next.Level.String(), next.Level.Rank())
	return next
}

// Deescalate lowers the response level with the user's acknowledgment. A
// request without acknowledgment (or without a strictly lower target) is a
// no-op whose reason is surfaced to the sink: insufficient consent is
// explained, never swallowed and never an error.
func (s *Session) Deescalate(ctx context.Context, target guardian.Level, acknowledged bool) guardian.State {
	s.mu.Lock()
	prev := s.state
	next := guardian.Deescalate(prev, target, acknowledged)
	s.state = next
	s.mu.Unlock()

	if next == prev {
		reason := "de-escalation requires user acknowledgment"
		if acknowledged {
			reason = "target level does not lower the response"
		}
		ev := notify.Event{
			Kind:   notify.KindNoOp,
			Reason: reason,
			Details: map[string]string{
				"current": prev.Level.String(),
				"target":  target.String(),
			},
		}
		s.sink.Notify(ctx, ev)
		s.metrics.RecordNotification(ctx, string(ev.Kind))
		return next
	}

	ev := notify.Event{
		Kind:   notify.KindDeescalation,
		Reason: "acknowledged by user",
		Details: map[string]string{
			"from": prev.Level.String(),
			"to":   next.Level.String(),
		},
	}
	s.sink.Notify(ctx, ev)
	s.metrics.RecordNotification(ctx, string(ev.Kind))
	s.logger.InfoContext(ctx, "guardian de-escalated",
		slog.String("session_id", s.id),
		slog.String("from", prev.Level.String()),
		slog.String("to", next.Level.String()),
	)
	return next
}

// ProposeMemory proposes a candidate long-term memory through the session's
// store and counts the decision. A proposal answered from the rejected
// cache is not a new decision and is not counted.
func (s *Session) ProposeMemory(ctx context.Context, content string, source memory.Source, scope memory.Scope, opts ...memory.ProposeOption) (memory.Memory, error) {
	m, err := s.store.Propose(content, source, scope, opts...)
	if err != nil {
		return m, err
	}
	if m.Type == memory.Pending {
		s.metrics.RecordMemoryDecision(ctx, "proposed")
	}
	return m, nil
}

// ApproveMemory approves a pending memory and counts the outcome. A layer
// guard refusal counts as blocked, not approved.
func (s *Session) ApproveMemory(ctx context.Context, id string) (memory.Memory, error) {
	m, err := s.store.Approve(ctx, id)
	if err != nil {
		if errors.HasCode(err, errors.CodeLayerImmutable) {
			s.metrics.RecordMemoryDecision(ctx, "blocked")
		}
		return m, err
	}
	s.metrics.RecordMemoryDecision(ctx, "approved")
	return m, nil
}

// RejectMemory rejects a pending memory and counts the decision.
func (s *Session) RejectMemory(ctx context.Context, id string) (memory.Memory, error) {
	m, err := s.store.Reject(id)
	if err != nil {
		return m, err
	}
	s.metrics.RecordMemoryDecision(ctx, "rejected")
	return m, nil
}

// Replay re-applies a trigger sequence from the initial state without
// touching the session or its sink. Pure transitions make this
// deterministic: identical input always reproduces identical states.
func (s *Session) Replay(triggers []guardian.Trigger) guardian.State {
	return guardian.Replay(triggers)
}

// Close purges the session's episodic memories. Semantic, pending, and
// rejected records survive the session.
func (s *Session) Close(ctx context.Context) {
	s.store.ClearSession()
	s.logger.InfoContext(ctx, "session closed",
		slog.String("session_id", s.id),
		slog.String("final_level", s.State().Level.String()),
	)
}
