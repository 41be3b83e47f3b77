// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
)

const (
	MatchCounter               = "timing_match_total"
	EntriesReceivedCounter     = "timing_entries_received_total"
	RequestsReceivedCounter    = "timing_requests_received_total"
	PagesEvictedCounter        = "timing_pages_evicted_total"
	PageSessionsGauge          = "timing_page_sessions"
	BodyLengthEstimatesCounter = "body_length_estimates_total"
	RejectedConnectionsCounter = "server_rejected_connections_total"
	ActiveConnectionsGauge     = "server_active_connections"

	OutcomeLabel = "outcome"
	KindLabel    = "kind"
)

// Measured describes the metrics recorded by this service
func Measured() []Metric {
	return []Metric{
		{
			Name:       MatchCounter,
			Type:       CounterType,
			Help:       "The number of resource timing matches attempted, by outcome",
			LabelNames: []string{OutcomeLabel},
		},
		{
			Name: EntriesReceivedCounter,
			Type: CounterType,
			Help: "The number of resource timing entries received",
		},
		{
			Name: RequestsReceivedCounter,
			Type: CounterType,
			Help: "The number of traced requests received",
		},
		{
			Name: PagesEvictedCounter,
			Type: CounterType,
			Help: "The number of page sessions evicted to stay within capacity",
		},
		{
			Name: PageSessionsGauge,
			Type: GaugeType,
			Help: "The number of page sessions currently held",
		},
		{
			Name:       BodyLengthEstimatesCounter,
			Type:       CounterType,
			Help:       "The number of request body lengths estimated, by body kind and outcome",
			LabelNames: []string{KindLabel, OutcomeLabel},
		},
		{
			Name: RejectedConnectionsCounter,
			Type: CounterType,
			Help: "The number of connections rejected because the server was at its connection limit",
		},
		{
			Name: ActiveConnectionsGauge,
			Type: GaugeType,
			Help: "The number of connections currently accepted by the server",
		},
	}
}

// Measures is the set of metrics this service records
type Measures struct {
	MatchOutcomes       metrics.Counter
	EntriesReceived     metrics.Counter
	RequestsReceived    metrics.Counter
	PagesEvicted        metrics.Counter
	PageSessions        metrics.Gauge
	BodyLengthEstimates metrics.Counter
	RejectedConnections metrics.Counter
	ActiveConnections   metrics.Gauge
}

// NewMeasures obtains each metric from a Registry built with Measured
func NewMeasures(r *Registry) *Measures {
	return &Measures{
		MatchOutcomes:       r.NewCounter(MatchCounter),
		EntriesReceived:     r.NewCounter(EntriesReceivedCounter),
		RequestsReceived:    r.NewCounter(RequestsReceivedCounter),
		PagesEvicted:        r.NewCounter(PagesEvictedCounter),
		PageSessions:        r.NewGauge(PageSessionsGauge),
		BodyLengthEstimates: r.NewCounter(BodyLengthEstimatesCounter),
		RejectedConnections: r.NewCounter(RejectedConnectionsCounter),
		ActiveConnections:   r.NewGauge(ActiveConnectionsGauge),
	}
}

// NewDiscardMeasures produces Measures that record nothing
func NewDiscardMeasures() *Measures {
	return &Measures{
		MatchOutcomes:       discard.NewCounter(),
		EntriesReceived:     discard.NewCounter(),
		RequestsReceived:    discard.NewCounter(),
		PagesEvicted:        discard.NewCounter(),
		PageSessions:        discard.NewGauge(),
		BodyLengthEstimates: discard.NewCounter(),
		RejectedConnections: discard.NewCounter(),
		ActiveConnections:   discard.NewGauge(),
	}
}
