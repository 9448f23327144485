// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exposes ingest counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/accel_plotter/internal/accel"
)

// Line results.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultIgnored  = "ignored"
)

// Collector groups the plotter's metrics on a private registry.
type Collector struct {
	registry      *prometheus.Registry
	lines         *prometheus.CounterVec
	displayErrors prometheus.Counter
	lastSample    *prometheus.GaugeVec
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accel_lines_total",
			Help: "Lines received from the sensor, by parse result.",
		}, []string{"result"}),
		displayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accel_display_errors_total",
			Help: "Display redraws that failed.",
		}),
		lastSample: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "accel_last_sample_mg",
			Help: "Most recent accepted acceleration in milli-g.",
		}, []string{"channel"}),
	}
	c.registry.MustRegister(c.lines, c.displayErrors, c.lastSample)
	return c
}

// ObserveLine counts one processed line.
func (c *Collector) ObserveLine(result string) {
	c.lines.WithLabelValues(result).Inc()
}

// ObserveDisplayError counts one failed redraw.
func (c *Collector) ObserveDisplayError() {
	c.displayErrors.Inc()
}

// Publish records the latest sample. It lets the collector sit among the
// loop's sample sinks.
func (c *Collector) Publish(s accel.Sample) error {
	c.lastSample.WithLabelValues("x").Set(float64(s.X))
	c.lastSample.WithLabelValues("y").Set(float64(s.Y))
	c.lastSample.WithLabelValues("z").Set(float64(s.Z))
	return nil
}

// Registry returns the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
