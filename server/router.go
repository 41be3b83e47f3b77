// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/xmidt-org/resourcetiming/logging"
	"github.com/xmidt-org/resourcetiming/xhttp"
	"github.com/xmidt-org/sallust"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// RouterOptions describes the ambient routes and middleware of the HTTP server
type RouterOptions struct {
	// ServiceName is the operation name given to server spans
	ServiceName string

	// Logger is decorated per request by logging.PopulateLogger.  If unset, sallust.Default() is used.
	Logger *zap.Logger

	// TracerProvider creates server spans.  If unset, the global provider is used.
	TracerProvider trace.TracerProvider

	// Propagator extracts incoming trace context.  If unset, the global propagator is used.
	Propagator propagation.TextMapPropagator

	// Health is served at HealthPath, if set
	Health http.Handler

	// Metrics is served at MetricsPath, if set
	Metrics http.Handler

	// Headers are added to every response.  When set, CORS preflight requests for any
	// path are answered with them.
	Headers http.Header

	// MaxConcurrentRequests limits in-flight requests.  Nonpositive means no limit.
	MaxConcurrentRequests int64

	// RequestTimeout is applied to each request's context, if positive
	RequestTimeout time.Duration
}

// NewRouter creates the router with the ambient routes already registered.  Application
// routes are added by the caller.
func NewRouter(o RouterOptions) *mux.Router {
	router := mux.NewRouter()
	if len(o.Headers) > 0 {
		router.Methods(http.MethodOptions).Handler(xhttp.Preflight{Header: o.Headers})
	}

	if o.Health != nil {
		router.Handle(HealthPath, o.Health).Methods(http.MethodGet)
	}

	if o.Metrics != nil {
		router.Handle(MetricsPath, o.Metrics).Methods(http.MethodGet)
	}

	return router
}

// untraced tests if a request is for one of the ambient routes, which are never traced
func untraced(request *http.Request) bool {
	return request.URL.Path != HealthPath && request.URL.Path != MetricsPath
}

// Decorate wraps the router with server spans, request logging, static headers,
// and the concurrency and timeout limits
func Decorate(router http.Handler, o RouterOptions) http.Handler {
	var (
		logger         = o.Logger
		tracerProvider = o.TracerProvider
		propagator     = o.Propagator
		serviceName    = o.ServiceName
	)

	if logger == nil {
		logger = sallust.Default()
	}

	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}

	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}

	if len(serviceName) == 0 {
		serviceName = "server"
	}

	return alice.New(
		otelhttp.NewMiddleware(
			serviceName,
			otelhttp.WithTracerProvider(tracerProvider),
			otelhttp.WithPropagators(propagator),
			otelhttp.WithFilter(untraced),
		),
		logging.PopulateLogger(logger),
		alice.Constructor(xhttp.StaticHeaders(o.Headers)),
		alice.Constructor(xhttp.Busy(o.MaxConcurrentRequests, logger)),
		alice.Constructor(xhttp.Timeout(o.RequestTimeout)),
	).Then(router)
}
