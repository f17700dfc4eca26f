// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify carries guardian outcomes to the human.
//
// The core computes obligations (notify, explain, offer alternatives,
// preserve state) and expected refusals (blocked layer operations,
// unacknowledged de-escalations); a Sink is how those actually reach the
// user. Refusals and no-ops are explained, never swallowed.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Kind classifies a notification event.
type Kind string

const (
	// KindEscalation: a side-effect flag flipped during a transition.
	KindEscalation Kind = "escalation"
	// KindDeescalation: the response level was lowered with consent.
	KindDeescalation Kind = "deescalation"
	// KindNoOp: a de-escalation was requested without acknowledgment.
	KindNoOp Kind = "noop"
	// KindBlocked: the layer guard refused a write.
	KindBlocked Kind = "blocked"
)

// Event is one user-facing notification.
type Event struct {
	Kind    Kind              `json:"kind"`
	Reason  string            `json:"reason"`
	Details map[string]string `json:"details,omitempty"`
}

// Sink surfaces events to the human. Implementations must not block the
// caller for long: the core assumes notification is cheap and synchronous.
type Sink interface {
	Notify(ctx context.Context, ev Event)
}

// ConsoleSink writes human-readable notifications to a writer.
type ConsoleSink struct {
	out    io.Writer
	prefix string
}

// ConsoleOption configures the console sink.
type ConsoleOption func(*ConsoleSink)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) ConsoleOption {
	return func(s *ConsoleSink) {
		if w != nil {
			s.out = w
		}
	}
}

// WithPrefix sets the line prefix.
func WithPrefix(prefix string) ConsoleOption {
	return func(s *ConsoleSink) {
		s.prefix = prefix
	}
}

// NewConsoleSink creates a console sink writing to stdout by default.
func NewConsoleSink(opts ...ConsoleOption) *ConsoleSink {
	s := &ConsoleSink{out: os.Stdout, prefix: "guardian"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify writes one line per event.
func (s *ConsoleSink) Notify(_ context.Context, ev Event) {
	fmt.Fprintf(s.out, "%s [%s] %s", s.prefix, ev.Kind, ev.Reason)
	for k, v := range ev.Details {
		fmt.Fprintf(s.out, " %s=%s", k, v)
	}
	fmt.Fprintln(s.out)
}

// SlogSink records notifications through the structured logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink backed by the given logger, or slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Notify logs the event at info level.
func (s *SlogSink) Notify(ctx context.Context, ev Event) {
	attrs := []any{slog.String("kind", string(ev.Kind)), slog.String("reason", ev.Reason)}
	for k, v := range ev.Details {
		attrs = append(attrs, slog.String(k, v))
	}
	s.logger.InfoContext(ctx, "guardian notification", attrs...)
}

// Recorder collects events for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify appends the event.
func (r *Recorder) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Multi fans one event out to several sinks.
type Multi []Sink

// Notify delivers the event to every sink in order.
func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, ev)
		}
	}
}
