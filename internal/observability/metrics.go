// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

// Package observability provides Prometheus metrics for the plugin installer.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// Metrics contains the installer's Prometheus metrics.
type Metrics struct {
	DescriptorWrites *prometheus.CounterVec
	AssetCopies      *prometheus.CounterVec
	InitOutcomes     *prometheus.CounterVec
	PatternsWrapped  prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates the metrics on a private registry so repeated
// construction in tests does not collide with the global one.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		DescriptorWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_extender_descriptor_writes_total",
				Help: "Plugin descriptor writes by status",
			},
			[]string{"status"},
		),
		AssetCopies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_extender_asset_copies_total",
				Help: "Bundled asset file copies by status",
			},
			[]string{"status"},
		),
		InitOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_extender_init_total",
				Help: "Plugin initialization calls by outcome",
			},
			[]string{"outcome"},
		),
		PatternsWrapped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_extender_patterns_wrapped_total",
			Help: "Pattern engines wrapped with the extension",
		}),
		registry: registry,
	}

	registry.MustRegister(m.DescriptorWrites, m.AssetCopies, m.InitOutcomes, m.PatternsWrapped)
	return m
}

// Status label values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Gatherer exposes the metrics registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current metric values in the Prometheus text
// format, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return oops.In("observability").With("path", path).Hint("failed to write metrics textfile").Wrap(err)
	}
	return nil
}
