// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/resourcetiming/enrich"
	"github.com/xmidt-org/resourcetiming/matcher"
	"github.com/xmidt-org/resourcetiming/perf"
	"github.com/xmidt-org/resourcetiming/urlx"
	"github.com/xmidt-org/sallust"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	InstrumentationName = "github.com/xmidt-org/resourcetiming/ingest"

	// PreflightSpanName is the name of the child span recorded for a CORS preflight entry
	PreflightSpanName = "CORS Preflight"

	// OutcomeIgnored is reported for requests whose URL is on the ignore list
	OutcomeIgnored = "ignored"
)

// CorrelatorOptions configures a Correlator
type CorrelatorOptions struct {
	Matcher  *matcher.Matcher
	Enricher *enrich.Enricher

	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator

	// IgnoreURLs lists requests that are never traced
	IgnoreURLs []urlx.Pattern

	// Requests counts each reported request
	Requests metrics.Counter

	Logger *zap.Logger
}

// Outcome describes what was done with one reported request
type Outcome struct {
	URL     string `json:"url"`
	Outcome string `json:"outcome"`
	TraceID string `json:"traceId,omitempty"`
	SpanID  string `json:"spanId,omitempty"`
}

// Correlator records a span for each reported request, enriched with the network timing
// entries the page buffered for it
type Correlator struct {
	matcher    *matcher.Matcher
	enricher   *enrich.Enricher
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	ignore     []urlx.Pattern
	requests   metrics.Counter
	logger     *zap.Logger
}

// NewCorrelator constructs a Correlator.  Unset options fall back to the global
// OpenTelemetry provider and propagator.
func NewCorrelator(o CorrelatorOptions) *Correlator {
	c := &Correlator{
		matcher:    o.Matcher,
		enricher:   o.Enricher,
		propagator: o.Propagator,
		ignore:     o.IgnoreURLs,
		requests:   o.Requests,
		logger:     o.Logger,
	}

	if c.matcher == nil {
		c.matcher = matcher.New()
	}

	if c.enricher == nil {
		c.enricher = new(enrich.Enricher)
	}

	tp := o.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	c.tracer = tp.Tracer(InstrumentationName)

	if c.propagator == nil {
		c.propagator = otel.GetTextMapPropagator()
	}

	if c.requests == nil {
		c.requests = discard.NewCounter()
	}

	if c.logger == nil {
		c.logger = sallust.Default()
	}

	return c
}

// Correlate records the given requests against a page session, returning one Outcome per request
// in the same order.  Entries attributed to a span are marked consumed in the session.
func (c *Correlator) Correlate(ctx context.Context, s *Session, requests []Request) []Outcome {
	outcomes := make([]Outcome, 0, len(requests))
	s.Do(func(r *urlx.Resolver, entries []*perf.Entry, ignored *matcher.IgnoredSet) {
		for i := range requests {
			outcomes = append(outcomes, c.correlate(ctx, r, &requests[i], entries, ignored))
		}
	})

	c.requests.Add(float64(len(requests)))
	return outcomes
}

func (c *Correlator) correlate(ctx context.Context, r *urlx.Resolver, request *Request, entries []*perf.Entry, ignored *matcher.IgnoredSet) Outcome {
	spanURL := request.URL
	if r != nil {
		spanURL = r.Normalize(request.URL)
	}

	if urlx.MatchesAny(spanURL, c.ignore) {
		return Outcome{URL: spanURL, Outcome: OutcomeIgnored}
	}

	parent := c.propagator.Extract(ctx, request)
	spanCtx, span := c.tracer.Start(
		parent,
		"HTTP "+request.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(request.Start),
		trace.WithAttributes(
			semconv.HTTPMethodKey.String(request.Method),
			semconv.HTTPURLKey.String(spanURL),
		),
	)

	result := c.matcher.Match(
		r,
		matcher.Query{
			URL:           request.URL,
			Start:         request.Start,
			End:           request.End,
			InitiatorType: request.InitiatorType,
		},
		entries,
		ignored,
	)

	if preflight := result.CorsPreflight; preflight != nil {
		_, child := c.tracer.Start(
			spanCtx,
			PreflightSpanName,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithTimestamp(preflight.FetchStart),
			trace.WithAttributes(
				semconv.HTTPMethodKey.String("OPTIONS"),
				semconv.HTTPURLKey.String(spanURL),
			),
		)

		c.enricher.Enrich(child, preflight)
		child.End(trace.WithTimestamp(preflight.ResponseEnd))
	}

	if result.Main != nil {
		c.enricher.Enrich(span, result.Main)
	}

	ignored.Add(result.Entries()...)

	if request.BodyLength != nil {
		span.SetAttributes(semconv.HTTPRequestContentLengthKey.Int64(*request.BodyLength))
	}

	if request.StatusCode > 0 {
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(request.StatusCode))
		if request.StatusCode >= 400 {
			span.SetStatus(codes.Error, "")
		}
	}

	span.End(trace.WithTimestamp(request.End))

	sc := span.SpanContext()
	c.logger.Debug(
		"request correlated",
		zap.String("url", spanURL),
		zap.String("outcome", result.Outcome()),
		zap.Stringer("traceID", sc.TraceID()),
	)

	return Outcome{
		URL:     spanURL,
		Outcome: result.Outcome(),
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}
