// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

// Package metrics counts conversions with prometheus collectors. There is no
// HTTP endpoint: counters are flushed to a file in the text exposition format
// and picked up by the node exporter textfile collector.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Direction labels the conversion being counted.
type Direction string

const (
	ToDisplay Direction = "to_display"
	ToBytes   Direction = "to_bytes"
)

// Recorder owns a private registry so that it can be flushed on its own.
type Recorder struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	empty       *prometheus.CounterVec
	malformed   prometheus.Counter

	path string
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easybytes",
			Name:      "conversions_total",
			Help:      "Number of values converted.",
		}, []string{"direction"}),
		empty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easybytes",
			Name:      "empty_results_total",
			Help:      "Number of conversions that produced an empty value.",
		}, []string{"direction"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "easybytes",
			Name:      "malformed_lines_total",
			Help:      "Number of batch input lines that could not be read.",
		}),
	}

	r.registry.MustRegister(r.conversions, r.empty, r.malformed)

	// Start every series at zero instead of when first observed.
	for _, d := range []Direction{ToDisplay, ToBytes} {
		r.conversions.WithLabelValues(string(d))
		r.empty.WithLabelValues(string(d))
	}

	return r
}

// NewTextfileRecorder returns a Recorder that writes its counters to path on
// Shutdown.
func NewTextfileRecorder(path string) *Recorder {
	r := NewRecorder()
	r.path = path
	return r
}

// Observe counts conversions, empty of which produced an empty value.
func (r *Recorder) Observe(d Direction, conversions, empty int) {
	r.conversions.WithLabelValues(string(d)).Add(float64(conversions))
	r.empty.WithLabelValues(string(d)).Add(float64(empty))
}

// Malformed counts input lines rejected before conversion.
func (r *Recorder) Malformed(n int) {
	r.malformed.Add(float64(n))
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Shutdown flushes the counters to the textfile, if any. It implements
// lifecycle.GracefulShutdown and flushes even when ctx is already done.
func (r *Recorder) Shutdown(_ context.Context) error {
	if r.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("failed writing metrics to %s: %w", r.path, err)
	}
	return nil
}
