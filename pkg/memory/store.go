// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigil-sh/vigil/pkg/errors"
	"github.com/vigil-sh/vigil/pkg/layers"
)

// LayerGuard decides whether a write into layer-backed configuration may
// proceed. Satisfied by layers.Guard.
type LayerGuard interface {
	Check(op layers.Operation) layers.Result
}

// Persister durably stores semantic memories. It is only ever invoked after
// the layer guard (where applicable) has allowed the write.
type Persister interface {
	SaveSemantic(ctx context.Context, m Memory) error
	LoadSemantic(ctx context.Context) ([]Memory, error)
	Close() error
}

// Store owns all memories of one session, partitioned by lifecycle state.
// Single writer per session: the store guards itself with one mutex and
// assumes at most one in-flight operation at a time from its session.
type Store struct {
	mu        sync.Mutex
	guard     LayerGuard
	persister Persister
	newID     func() string
	now       func() time.Time

	pending  map[string]*Memory
	semantic map[string]*Memory
	episodic map[string]*Memory
	rejected map[string]*Memory

	// rejectedContent maps normalized content to the rejected record's id,
	// so identical content is never proposed twice.
	rejectedContent map[string]string
}

// Option configures a Store.
type Option func(*Store)

// WithGuard sets the layer guard consulted on approval.
func WithGuard(g LayerGuard) Option {
	return func(s *Store) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithPersister sets the durable backend for semantic memories.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// WithIDGenerator overrides id generation. Used by tests for stable ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty per-session store. Without options it uses the
// real layer guard, UUID ids, and no durable persistence.
func NewStore(opts ...Option) *Store {
	s := &Store{
		guard:           layers.Guard{},
		newID:           uuid.NewString,
		now:             func() time.Time { return time.Now().UTC() },
		pending:         make(map[string]*Memory),
		semantic:        make(map[string]*Memory),
		episodic:        make(map[string]*Memory),
		rejected:        make(map[string]*Memory),
		rejectedContent: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProposeOption customizes a proposal.
type ProposeOption func(*Memory)

// TargetLayer marks the proposal as targeting layer-backed configuration.
// Approval of such a memory is routed through the layer guard.
func TargetLayer(layer layers.Layer) ProposeOption {
	return func(m *Memory) {
		m.TargetsLayer = true
		m.TargetLayer = layer
	}
}

// Propose creates a pending memory awaiting user consent.
//
// If identical content was previously rejected, the cached rejected record
// is returned instead of a fresh proposal: the user is never asked twice
// about the same content.
func (s *Store) Propose(content string, source Source, scope Scope, opts ...ProposeOption) (Memory, error) {
	key := contentKey(content)
	if key == "" {
		return Memory{}, errors.New(errors.CodeInvalidInput, "memory content must not be empty", nil)
	}
	if !source.IsValid() {
		return Memory{}, errors.Newf(errors.CodeInvalidInput, "unknown memory source %q", source)
	}
	if !scope.IsValid() {
		return Memory{}, errors.Newf(errors.CodeInvalidInput, "unknown memory scope %q", scope)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.rejectedContent[key]; ok {
		return *s.rejected[id], nil
	}

	m := &Memory{
		ID:         s.newID(),
		Content:    strings.TrimSpace(content),
		Type:       Pending,
		Source:     source,
		Scope:      scope,
		Confidence: ConfidenceFor(source),
		CreatedAt:  s.now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	s.pending[m.ID] = m
	return *m, nil
}

// Approve transitions a pending memory to semantic and marks it
// user-approved. This is structurally the only path that produces a
// semantic memory, which is what makes the consent invariant
// (semantic implies user-approved) hold for every operation sequence.
//
// Global-scoped memories that target layer-backed configuration pass the
// layer guard before committing; a blocked verdict leaves the memory
// pending and untouched. Persistence failures likewise roll back: the
// transition is all-or-nothing.
func (s *Store) Approve(ctx context.Context, id string) (Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.pending[id]
	if !ok {
		return Memory{}, s.transitionError(id, "approve")
	}

	if m.Scope == Global && m.TargetsLayer {
		res := s.guard.Check(layers.Operation{
			Layer:       m.TargetLayer,
			Kind:        layers.Modify,
			Description: "approve memory " + m.ID,
		})
		if !res.Allowed {
			return Memory{}, errors.New(errors.CodeLayerImmutable, res.Reason, nil).
				WithContext("memory_id", m.ID).
				WithContext("layer", m.TargetLayer.String())
		}
	}

	m.Type = Semantic
	m.UserApproved = true

	if s.persister != nil {
		if err := s.persister.SaveSemantic(ctx, *m); err != nil {
			m.Type = Pending
			m.UserApproved = false
			return Memory{}, errors.New(errors.CodeStorage, "persist semantic memory", err).
				WithContext("memory_id", m.ID).
				WithRecoverable(true)
		}
	}

	delete(s.pending, id)
	s.semantic[id] = m
	return *m, nil
}

// Reject transitions a pending memory to rejected. Terminal: the content is
// cached and identical proposals return the rejected record forever after.
func (s *Store) Reject(id string) (Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.pending[id]
	if !ok {
		return Memory{}, s.transitionError(id, "reject")
	}

	m.Type = Rejected
	delete(s.pending, id)
	s.rejected[id] = m
	s.rejectedContent[contentKey(m.Content)] = id
	return *m, nil
}

// RecordEpisode creates an episodic memory directly. Episodic memories skip
// the consent workflow because they never outlive the session.
func (s *Store) RecordEpisode(content string, source Source) (Memory, error) {
	if contentKey(content) == "" {
		return Memory{}, errors.New(errors.CodeInvalidInput, "memory content must not be empty", nil)
	}
	if !source.IsValid() {
		return Memory{}, errors.Newf(errors.CodeInvalidInput, "unknown memory source %q", source)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := &Memory{
		ID:         s.newID(),
		Content:    strings.TrimSpace(content),
		Type:       Episodic,
		Source:     source,
		Scope:      Project,
		Confidence: ConfidenceFor(source),
		CreatedAt:  s.now(),
	}
	s.episodic[m.ID] = m
	return *m, nil
}

// ClearSession purges all episodic memories. Pending, semantic, and
// rejected records are untouched.
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodic = make(map[string]*Memory)
}

// Get returns the memory with the given id from any partition.
func (s *Store) Get(id string) (Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.lookup(id); m != nil {
		return *m, nil
	}
	return Memory{}, errors.Newf(errors.CodeNotFound, "no memory with id %s", id)
}

// Pending returns the pending proposals, oldest first.
func (s *Store) Pending() []Memory { return s.list(s.pending) }

// Semantic returns the user-approved permanent memories, oldest first.
func (s *Store) Semantic() []Memory { return s.list(s.semantic) }

// Episodic returns the session-scoped observations, oldest first.
func (s *Store) Episodic() []Memory { return s.list(s.episodic) }

// Rejected returns the terminally rejected records, oldest first.
func (s *Store) Rejected() []Memory { return s.list(s.rejected) }

func (s *Store) list(partition map[string]*Memory) []Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Memory, 0, len(partition))
	for _, m := range partition {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) lookup(id string) *Memory {
	for _, partition := range []map[string]*Memory{s.pending, s.semantic, s.episodic, s.rejected} {
		if m, ok := partition[id]; ok {
			return m
		}
	}
	return nil
}

// transitionError distinguishes "no such id" from "id exists but is not
// pending". Callers hold the mutex.
func (s *Store) transitionError(id, op string) error {
	if existing := s.lookup(id); existing != nil {
		return errors.Newf(errors.CodeInvalidTransition,
			"cannot %s memory %s: state is %s, not %s", op, id, existing.Type, Pending)
	}
	return errors.Newf(errors.CodeNotFound, "no memory with id %s", id)
}

// contentKey normalizes content for exact-match rejected-content lookup.
// Matching is exact (modulo surrounding whitespace); similarity matching is
// deliberately out of scope.
func contentKey(content string) string {
	return strings.TrimSpace(content)
}
