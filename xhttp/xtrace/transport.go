// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xtrace

import (
	"context"
	"net/http"
	"time"

	"github.com/xmidt-org/resourcetiming/bodylength"
	"github.com/xmidt-org/resourcetiming/urlx"
	"github.com/xmidt-org/resourcetiming/xhttp"
	"github.com/xmidt-org/sallust"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// InstrumentationName is the name of the tracer obtained from a TracerProvider
	InstrumentationName = "github.com/xmidt-org/resourcetiming/xhttp/xtrace"

	// DefaultLengthWait is how long a finished request waits for its body length
	DefaultLengthWait = 100 * time.Millisecond
)

// Option configures a Transport
type Option func(*Transport)

// WithTracerProvider sets the source of the Transport's tracer.  A nil provider does nothing.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Transport) {
		if tp != nil {
			t.tracer = tp.Tracer(InstrumentationName)
		}
	}
}

// WithPropagator sets the propagator used to inject trace context headers.  A nil
// propagator does nothing.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *Transport) {
		if p != nil {
			t.propagator = p
		}
	}
}

// WithResolver sets the resolver that supplies the origin requests are compared against.
// Without a resolver, every request receives trace context headers.
func WithResolver(r *urlx.Resolver) Option {
	return func(t *Transport) {
		t.resolver = r
	}
}

// WithPropagateTraceHeaderCorsURLs sets the cross-origin URLs that may receive trace
// context headers
func WithPropagateTraceHeaderCorsURLs(p ...urlx.Pattern) Option {
	return func(t *Transport) {
		t.propagateCors = append(t.propagateCors, p...)
	}
}

// WithIgnoreURLs sets the URLs for which no span is recorded
func WithIgnoreURLs(p ...urlx.Pattern) Option {
	return func(t *Transport) {
		t.ignore = append(t.ignore, p...)
	}
}

// WithEstimator sets the estimator used for request body lengths.  A nil estimator
// disables body length recording.
func WithEstimator(e *bodylength.Estimator) Option {
	return func(t *Transport) {
		t.estimator = e
	}
}

// WithLengthWait sets how long a finished request waits for its body length before the span
// ends without it.  Nonpositive values do nothing.
func WithLengthWait(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.lengthWait = d
		}
	}
}

// WithLogger sets the logger.  A nil logger does nothing.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// Transport decorates another http.RoundTripper with client spans.  Requests matching an
// ignore pattern pass through untouched.
type Transport struct {
	next          http.RoundTripper
	tracer        trace.Tracer
	propagator    propagation.TextMapPropagator
	resolver      *urlx.Resolver
	propagateCors []urlx.Pattern
	ignore        []urlx.Pattern
	estimator     *bodylength.Estimator
	lengthWait    time.Duration
	logger        *zap.Logger
}

// NewTransport decorates next, which defaults to http.DefaultTransport when nil
func NewTransport(next http.RoundTripper, o ...Option) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}

	t := &Transport{
		next:       next,
		tracer:     otel.GetTracerProvider().Tracer(InstrumentationName),
		propagator: otel.GetTextMapPropagator(),
		estimator:  bodylength.New(),
		lengthWait: DefaultLengthWait,
		logger:     sallust.Default(),
	}

	for _, option := range o {
		option(t)
	}

	return t
}

func (t *Transport) spanURL(request *http.Request) string {
	if t.resolver != nil {
		return t.resolver.Normalize(request.URL.String())
	}

	return request.URL.String()
}

func (t *Transport) shouldPropagate(spanURL string) bool {
	return t.resolver == nil || urlx.ShouldPropagateTraceHeaders(t.resolver, spanURL, t.propagateCors)
}

// RoundTrip records a client span around the decorated RoundTripper.  The request passed
// in is never modified; a clone carrying the span's context is sent instead.
func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	spanURL := t.spanURL(request)
	if urlx.MatchesAny(spanURL, t.ignore) {
		return t.next.RoundTrip(request)
	}

	ctx, span := t.tracer.Start(
		request.Context(),
		"HTTP "+request.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPMethodKey.String(request.Method),
			semconv.HTTPURLKey.String(spanURL),
		),
	)

	defer span.End()

	outbound := request.Clone(ctx)
	var length *bodylength.Length
	if t.estimator != nil && outbound.Body != nil && outbound.Body != http.NoBody {
		_, length = t.estimator.Estimate(ctx, bodylength.Request{Request: outbound})
	}

	// the clone shares the caller's body until it is rewound onto its own reader
	if err := xhttp.Rewind(outbound); err != nil {
		t.logger.Debug("request body not rewound", zap.Error(err))
	}

	if t.shouldPropagate(spanURL) {
		t.propagator.Inject(ctx, propagation.HeaderCarrier(outbound.Header))
	}

	response, err := t.next.RoundTrip(outbound)
	t.recordLength(ctx, span, length)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return response, err
	}

	span.SetAttributes(semconv.HTTPStatusCodeKey.Int(response.StatusCode))
	if response.StatusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(response.StatusCode))
	}

	return response, nil
}

func (t *Transport) recordLength(ctx context.Context, span trace.Span, length *bodylength.Length) {
	if length == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, t.lengthWait)
	defer cancel()

	n, ok, err := length.Wait(ctx)
	switch {
	case err != nil:
		t.logger.Debug("request body length unavailable", zap.Stringer("traceID", span.SpanContext().TraceID()), zap.Error(err))
	case ok:
		span.SetAttributes(semconv.HTTPRequestContentLengthKey.Int64(n))
	}
}
