// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vigil-sh/vigil/pkg/layers"

	_ "modernc.org/sqlite"
)

func unixMilliUTC(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

const semanticTable = "vigil_semantic_memories"

// SQLiteStore persists semantic memories in a SQLite database. It satisfies
// Persister; the consent workflow invokes it only after approval (and, for
// layer-targeting memories, only after the layer guard allowed the write).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed persister and ensures schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLiteStore opens (or creates) the database at path and ensures schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			source TEXT NOT NULL,
			scope TEXT NOT NULL,
			confidence INTEGER NOT NULL,
			user_approved INTEGER NOT NULL,
			targets_layer INTEGER NOT NULL DEFAULT 0,
			target_layer TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`, semanticTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_scope ON %s(scope);`, semanticTable, semanticTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created ON %s(created_at);`, semanticTable, semanticTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSemantic upserts one semantic memory.
func (s *SQLiteStore) SaveSemantic(ctx context.Context, m Memory) error {
	if m.Type != Semantic {
		return fmt.Errorf("refusing to persist %s memory %s: only semantic memories are durable", m.Type, m.ID)
	}
	if !m.UserApproved {
		return fmt.Errorf("refusing to persist semantic memory %s without user approval", m.ID)
	}

	targetsLayer := 0
	targetLayer := ""
	if m.TargetsLayer {
		targetsLayer = 1
		targetLayer = m.TargetLayer.String()
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s
		(id, content, source, scope, confidence, user_approved, targets_layer, target_layer, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET content = excluded.content`, semanticTable),
		m.ID, m.Content, string(m.Source), string(m.Scope), m.Confidence,
		targetsLayer, targetLayer, m.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save semantic memory %s: %w", m.ID, err)
	}
	return nil
}

// LoadSemantic returns all persisted semantic memories, oldest first.
func (s *SQLiteStore) LoadSemantic(ctx context.Context) ([]Memory, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT
		id, content, source, scope, confidence, targets_layer, target_layer, created_at
		FROM %s ORDER BY created_at ASC, id ASC`, semanticTable))
	if err != nil {
		return nil, fmt.Errorf("load semantic memories: %w", err)
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		var (
			m            Memory
			source       string
			scope        string
			targetsLayer int
			targetLayer  string
			createdAt    int64
		)
		if err := rows.Scan(&m.ID, &m.Content, &source, &scope, &m.Confidence,
			&targetsLayer, &targetLayer, &createdAt); err != nil {
			return nil, fmt.Errorf("scan semantic memory: %w", err)
		}
		m.Type = Semantic
		m.Source = Source(source)
		m.Scope = Scope(scope)
		m.UserApproved = true
		m.CreatedAt = unixMilliUTC(createdAt)
		if targetsLayer == 1 {
			if layer, ok := layers.Parse(targetLayer); ok {
				m.TargetsLayer = true
				m.TargetLayer = layer
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
