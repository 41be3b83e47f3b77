// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"time"

	"github.com/xmidt-org/resourcetiming/perf"
	"github.com/xmidt-org/sallust"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HTTPResponseContentLengthUncompressedKey is the attribute carrying the decoded size of a
// response body, set only when it differs from the transferred size.
const HTTPResponseContentLengthUncompressedKey = attribute.Key("http.response_content_length_uncompressed")

// AddNetworkEvent adds a single milestone from entry as a span event.  The event is added only
// if the milestone was reported and does not precede ref.  A zero ref means the entry's own
// FetchStart, and nothing is added when that is absent too.  The return value indicates whether an event was added.
func AddNetworkEvent(span trace.Span, name perf.TimingName, entry *perf.Entry, ref time.Time) bool {
	if span == nil || entry == nil {
		return false
	}

	ts := entry.Timing(name)
	if ts.IsZero() {
		return false
	}

	if ref.IsZero() {
		ref = entry.FetchStart
	}

	if ref.IsZero() || ts.Before(ref) {
		return false
	}

	span.AddEvent(string(name), trace.WithTimestamp(ts))
	return true
}

// Enricher decorates spans with matched entries.  The zero value is ready to use.
type Enricher struct {
	// IgnoreNetworkEvents suppresses milestone events, leaving only the size attributes
	IgnoreNetworkEvents bool

	// Logger is used for diagnostics.  If unset, sallust.Default() is used.
	Logger *zap.Logger
}

func (en *Enricher) logger() *zap.Logger {
	if en.Logger != nil {
		return en.Logger
	}

	return sallust.Default()
}

// Enrich adds the milestone events and size attributes of entry to span.  Neither a nil span
// nor a nil entry is an error; nothing is recorded in either case.
func (en *Enricher) Enrich(span trace.Span, entry *perf.Entry) {
	if span == nil || entry == nil {
		return
	}

	added := 0
	if !en.IgnoreNetworkEvents {
		secure := entry.Secure()
		for _, name := range perf.Timings {
			if name == perf.SecureConnectionStart && !secure {
				continue
			}

			if AddNetworkEvent(span, name, entry, entry.FetchStart) {
				added++
			}
		}
	}

	attributes := SizeAttributes(entry)
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}

	en.logger().Debug(
		"enriched span",
		zap.String("url", entry.Name),
		zap.Int("events", added),
		zap.Int("attributes", len(attributes)),
	)
}

// SizeAttributes produces the body size attributes for entry
func SizeAttributes(entry *perf.Entry) []attribute.KeyValue {
	var attributes []attribute.KeyValue
	if entry.EncodedBodySize != nil {
		attributes = append(attributes, semconv.HTTPResponseContentLengthKey.Int64(*entry.EncodedBodySize))
	}

	if entry.DecodedBodySize != nil &&
		(entry.EncodedBodySize == nil || *entry.EncodedBodySize != *entry.DecodedBodySize) {
		attributes = append(attributes, HTTPResponseContentLengthUncompressedKey.Int64(*entry.DecodedBodySize))
	}

	return attributes
}
