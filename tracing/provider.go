// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrUnknownProvider = errors.New("Unknown tracing provider")
	ErrMissingEndpoint = errors.New("The tracing provider requires an endpoint")
)

// Provider is a TracerProvider that must be shut down to flush spans
type Provider interface {
	trace.TracerProvider
	Shutdown(context.Context) error
}

type noopProvider struct {
	trace.TracerProvider
}

func (noopProvider) Shutdown(context.Context) error { return nil }

// NewExporter creates the span exporter for the configured provider.  The stdout exporter
// writes to output, which defaults to os.Stdout.  A nil exporter with a nil error means
// spans are not exported.
func NewExporter(ctx context.Context, c Config, output io.Writer) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(c.Provider) {
	case "", ProviderNoop:
		return nil, nil

	case ProviderStdout:
		if output == nil {
			output = os.Stdout
		}

		options := []stdouttrace.Option{stdouttrace.WithWriter(output)}
		if c.PrettyPrint {
			options = append(options, stdouttrace.WithPrettyPrint())
		}

		return stdouttrace.New(options...)

	case ProviderOTLPHTTP:
		var options []otlptracehttp.Option
		if len(c.Endpoint) > 0 {
			options = append(options, otlptracehttp.WithEndpoint(c.Endpoint))
		}

		if c.Insecure {
			options = append(options, otlptracehttp.WithInsecure())
		}

		return otlptracehttp.New(ctx, options...)

	case ProviderZipkin:
		if len(c.Endpoint) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingEndpoint, c.Provider)
		}

		return zipkin.New(c.Endpoint)

	case ProviderJaeger:
		if len(c.Endpoint) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingEndpoint, c.Provider)
		}

		return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(c.Endpoint)))

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}
}

// Sampler produces the sampler for the configured ratio
func (c Config) Sampler() sdktrace.Sampler {
	switch {
	case c.SampleRatio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case c.SampleRatio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
	}
}

// Resource describes this service to span consumers
func (c Config) Resource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(c.serviceName()),
	)
}

// NewProvider builds a TracerProvider from the configuration.  Any extra options, such as
// additional span processors, are applied after the configured exporter.
func NewProvider(ctx context.Context, c Config, output io.Writer, extra ...sdktrace.TracerProviderOption) (Provider, error) {
	exporter, err := NewExporter(ctx, c, output)
	if err != nil {
		return nil, err
	}

	if exporter == nil && len(extra) == 0 {
		return noopProvider{TracerProvider: trace.NewNoopTracerProvider()}, nil
	}

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(c.Resource()),
		sdktrace.WithSampler(c.Sampler()),
	}

	if exporter != nil {
		options = append(options, sdktrace.WithBatcher(exporter))
	}

	return sdktrace.NewTracerProvider(append(options, extra...)...), nil
}
