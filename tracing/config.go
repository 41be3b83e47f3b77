// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

const (
	// TracingKey is the Viper subkey under which tracing configuration is stored
	TracingKey = "tracing"

	ProviderStdout   = "stdout"
	ProviderOTLPHTTP = "otlphttp"
	ProviderZipkin   = "zipkin"
	ProviderJaeger   = "jaeger"
	ProviderNoop     = "noop"

	DefaultServiceName = "timingd"
)

// Config describes how spans are exported
type Config struct {
	// Provider selects the exporter.  An empty value is the same as ProviderNoop.
	Provider string

	// Endpoint is the exporter's destination.  Its form depends on the provider: a host:port
	// for otlphttp, a collector URL for zipkin and jaeger.  Unused for stdout.
	Endpoint string

	// ServiceName is reported as the service.name resource attribute
	ServiceName string

	// Insecure disables TLS for otlphttp
	Insecure bool

	// SampleRatio is the fraction of new traces sampled.  Nonpositive values sample nothing,
	// values of 1 or more sample everything.  Sampling decisions of remote parents are honored.
	SampleRatio float64

	// PrettyPrint indents stdout output
	PrettyPrint bool
}

func (c Config) serviceName() string {
	if len(c.ServiceName) > 0 {
		return c.ServiceName
	}

	return DefaultServiceName
}
