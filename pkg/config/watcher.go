// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/vigil-sh/vigil/pkg/layers"
)

// Watcher monitors the mutable layer definition files and reloads them on
// change. Every reload is an attempted write to layer-backed configuration
// and therefore passes the layer guard before taking effect; a blocked
// verdict leaves the running definition untouched and is reported, not
// swallowed.
type Watcher struct {
	mu          sync.RWMutex
	paths       map[layers.Layer]string
	interval    time.Duration
	lastModTime map[string]time.Time
	definitions map[layers.Layer]*layers.Definition
	listeners   []func(layers.Layer, *layers.Definition)
	onBlocked   []func(layers.Operation, layers.Result)
	stopCh      chan struct{}
	doneCh      chan struct{}
	started     bool
	logger      *slog.Logger
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval for file changes.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchLogger sets the logger for the watcher.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher over the mutable layer files named by cfg.
// Both paths are optional; an empty path leaves that stratum unwatched.
// The initial load also passes the guard (it is a Create of the in-process
// definition).
func NewWatcher(cfg LayersConfig, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		paths:       make(map[layers.Layer]string),
		interval:    1 * time.Second,
		lastModTime: make(map[string]time.Time),
		definitions: make(map[layers.Layer]*layers.Definition),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		logger:      slog.Default(),
	}
	if cfg.MethodologyPath != "" {
		w.paths[layers.Methodology] = cfg.MethodologyPath
	}
	if cfg.TechnicalPath != "" {
		w.paths[layers.Technical] = cfg.TechnicalPath
	}

	for _, opt := range opts {
		opt(w)
	}

	for layer, path := range w.paths {
		if info, err := os.Stat(path); err == nil {
			w.lastModTime[path] = info.ModTime()
		}
		if err := w.load(layer, path, layers.Create); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// OnReload registers a listener invoked after a definition is re-applied.
func (w *Watcher) OnReload(fn func(layers.Layer, *layers.Definition)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// OnBlocked registers a listener invoked when the guard refuses a reload.
func (w *Watcher) OnBlocked(fn func(layers.Operation, layers.Result)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onBlocked = append(w.onBlocked, fn)
}

// Definition returns the current definition for a mutable layer, or nil.
func (w *Watcher) Definition(layer layers.Layer) *layers.Definition {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.definitions[layer]
}

// Start begins polling until the context is cancelled or Stop is called.
// Starting twice is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go func() {
		defer close(w.doneCh)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case <-ticker.C:
				w.checkOnce()
			}
		}
	}()
}

// Stop terminates polling and waits for the loop to exit. Safe to call on a
// watcher that was never started, and safe to call more than once.
func (w *Watcher) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if started {
		<-w.doneCh
	}
}

// checkOnce scans all watched files and reloads the changed ones.
func (w *Watcher) checkOnce() {
	for layer, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		w.mu.RLock()
		last := w.lastModTime[path]
		w.mu.RUnlock()
		if !info.ModTime().After(last) {
			continue
		}
		w.mu.Lock()
		w.lastModTime[path] = info.ModTime()
		w.mu.Unlock()

		if err := w.load(layer, path, layers.Modify); err != nil {
			w.logger.Error("layer definition reload failed",
				slog.String("layer", layer.String()),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}
}

// load parses the file and applies it if the guard allows the write.
func (w *Watcher) load(layer layers.Layer, path string, kind layers.OpKind) error {
	op := layers.Operation{
		Layer:       layer,
		Kind:        kind,
		Description: "reload layer definition from " + path,
	}
	if res := layers.Check(op); !res.Allowed {
		w.logger.Warn("layer write blocked",
			slog.String("layer", layer.String()),
			slog.String("reason", res.Reason),
		)
		w.mu.RLock()
		blocked := append([]func(layers.Operation, layers.Result){}, w.onBlocked...)
		w.mu.RUnlock()
		for _, fn := range blocked {
			fn(op, res)
		}
		return nil
	}

	def, err := layers.LoadDefinition(path)
	if err != nil {
		return err
	}
	if def.TargetLayer() != layer {
		w.logger.Warn("layer definition names a different layer, ignoring",
			slog.String("expected", layer.String()),
			slog.String("declared", def.Layer),
		)
		return nil
	}

	w.mu.Lock()
	w.definitions[layer] = def
	listeners := append([]func(layers.Layer, *layers.Definition){}, w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(layer, def)
	}
	w.logger.Info("layer definition applied",
		slog.String("layer", layer.String()),
		slog.Int("version", def.Version),
	)
	return nil
}
