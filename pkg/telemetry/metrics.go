// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GuardianMetrics tracks escalations, refusals, and consent decisions for
// production monitoring.
type GuardianMetrics struct {
	// escalationCounter counts transitions by trigger and resulting level.
	escalationCounter metric.Int64Counter

	// levelGauge tracks the current response level per session.
	levelGauge metric.Int64Gauge

	// blockedOpCounter counts layer-guard refusals by layer and kind.
	blockedOpCounter metric.Int64Counter

	// memoryDecisionCounter counts consent decisions by outcome.
	memoryDecisionCounter metric.Int64Counter

	// notificationCounter counts events delivered to the sink by kind.
	notificationCounter metric.Int64Counter
}

// NewGuardianMetrics creates a guardian metrics tracker with OTEL meters.
func NewGuardianMetrics() (*GuardianMetrics, error) {
	meter := otel.Meter("vigil/guardian")

	escalationCounter, err := meter.Int64Counter(
		"vigil.guardian.escalations",
		metric.WithDescription("Guardian transitions by trigger and resulting level"),
	)
	if err != nil {
		return nil, err
	}

	levelGauge, err := meter.Int64Gauge(
		"vigil.guardian.level",
		metric.WithDescription("Current response level per session (0=flow .. 4=protect)"),
	)
	if err != nil {
		return nil, err
	}

	blockedOpCounter, err := meter.Int64Counter(
		"vigil.layers.blocked",
		metric.WithDescription("Layer operations refused by the guard"),
	)
	if err != nil {
		return nil, err
	}

	memoryDecisionCounter, err := meter.Int64Counter(
		"vigil.memory.decisions",
		metric.WithDescription("Memory consent decisions by outcome"),
	)
	if err != nil {
		return nil, err
	}

	notificationCounter, err := meter.Int64Counter(
		"vigil.notifications",
		metric.WithDescription("Notifications delivered to the sink by kind"),
	)
	if err != nil {
		return nil, err
	}

	return &GuardianMetrics{
		escalationCounter:     escalationCounter,
		levelGauge:            levelGauge,
		blockedOpCounter:      blockedOpCounter,
		memoryDecisionCounter: memoryDecisionCounter,
		notificationCounter:   notificationCounter,
	}, nil
}

// RecordTransition records one guardian transition.
func (gm *GuardianMetrics) RecordTransition(ctx context.Context, sessionID, trigger, level string, rank int) {
	if gm == nil {
		return
	}
	gm.escalationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("level", level),
	))
	gm.levelGauge.Record(ctx, int64(rank), metric.WithAttributes(
		attribute.String("session_id", sessionID),
	))
}

// RecordBlockedOp records one layer-guard refusal.
func (gm *GuardianMetrics) RecordBlockedOp(ctx context.Context, layer, kind string) {
	if gm == nil {
		return
	}
	gm.blockedOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("layer", layer),
		attribute.String("kind", kind),
	))
}

// RecordMemoryDecision records one consent decision ("approved",
// "rejected", "proposed", "blocked").
func (gm *GuardianMetrics) RecordMemoryDecision(ctx context.Context, outcome string) {
	if gm == nil {
		return
	}
	gm.memoryDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordNotification records one sink delivery.
func (gm *GuardianMetrics) RecordNotification(ctx context.Context, kind string) {
	if gm == nil {
		return
	}
	gm.notificationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}
