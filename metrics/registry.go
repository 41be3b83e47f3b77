// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"fmt"
	"net/http"

	"github.com/go-kit/kit/metrics"
	gokitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options is the configurable options for creating a Registry
type Options struct {
	// Namespace is the default namespace for metrics which don't define one
	Namespace string

	// Subsystem is the default subsystem for metrics which don't define one
	Subsystem string

	// Pedantic indicates whether the registry is created via NewPedanticRegistry().  Set
	// to true for testing or development.
	Pedantic bool

	// DisableGoCollector controls whether the Go Collector is registered with the Registry
	DisableGoCollector bool

	// DisableProcessCollector controls whether the Process Collector is registered with the Registry
	DisableProcessCollector bool
}

// Registry is a Prometheus registry whose preregistered metrics are available as go-kit metrics.
// Only metrics defined through modules can be obtained; asking for any other metric panics,
// since that is a programming error.
type Registry struct {
	*prometheus.Registry

	collectors map[string]prometheus.Collector
}

// NewRegistry creates a Registry and preregisters every metric from the given modules.
// Duplicate names are an error.
func NewRegistry(o Options, modules ...Module) (*Registry, error) {
	pr := prometheus.NewRegistry()
	if o.Pedantic {
		pr = prometheus.NewPedanticRegistry()
	}

	if !o.DisableGoCollector {
		pr.MustRegister(collectors.NewGoCollector())
	}

	if !o.DisableProcessCollector {
		pr.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: o.Namespace}))
	}

	r := &Registry{
		Registry:   pr,
		collectors: make(map[string]prometheus.Collector),
	}

	for _, module := range modules {
		for _, m := range module() {
			if _, ok := r.collectors[m.Name]; ok {
				return nil, fmt.Errorf("duplicate metric with name: %s", m.Name)
			}

			c, err := NewCollector(o.Namespace, o.Subsystem, m)
			if err != nil {
				return nil, err
			}

			if err := r.Register(c); err != nil {
				return nil, fmt.Errorf("Error while preregistering metric %s: %w", m.Name, err)
			}

			r.collectors[m.Name] = c
		}
	}

	return r, nil
}

// NewCounter returns a go-kit wrapper for a preregistered counter
func (r *Registry) NewCounter(name string) metrics.Counter {
	if vec, ok := r.collectors[name].(*prometheus.CounterVec); ok {
		return gokitprometheus.NewCounter(vec)
	}

	panic(fmt.Errorf("The metric %s is not a counter", name))
}

// NewGauge returns a go-kit wrapper for a preregistered gauge
func (r *Registry) NewGauge(name string) metrics.Gauge {
	if vec, ok := r.collectors[name].(*prometheus.GaugeVec); ok {
		return gokitprometheus.NewGauge(vec)
	}

	panic(fmt.Errorf("The metric %s is not a gauge", name))
}

// NewHistogram returns a go-kit wrapper for a preregistered histogram
func (r *Registry) NewHistogram(name string) metrics.Histogram {
	if vec, ok := r.collectors[name].(*prometheus.HistogramVec); ok {
		return gokitprometheus.NewHistogram(vec)
	}

	panic(fmt.Errorf("The metric %s is not a histogram", name))
}

// Handler serves this registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r, promhttp.HandlerOpts{})
}
