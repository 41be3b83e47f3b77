// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package perf

import (
	"strings"
	"time"
)

// TimingName identifies one of the timestamp fields of an Entry.  The values are the
// attribute names browsers use for PerformanceResourceTiming, and are also the event names
// emitted onto spans.
type TimingName string

const (
	FetchStart            TimingName = "fetchStart"
	DomainLookupStart     TimingName = "domainLookupStart"
	DomainLookupEnd       TimingName = "domainLookupEnd"
	ConnectStart          TimingName = "connectStart"
	SecureConnectionStart TimingName = "secureConnectionStart"
	ConnectEnd            TimingName = "connectEnd"
	RequestStart          TimingName = "requestStart"
	ResponseStart         TimingName = "responseStart"
	ResponseEnd           TimingName = "responseEnd"
)

// Timings lists every TimingName in the order the milestones occur during a request.
var Timings = []TimingName{
	FetchStart,
	DomainLookupStart,
	DomainLookupEnd,
	ConnectStart,
	SecureConnectionStart,
	ConnectEnd,
	RequestStart,
	ResponseStart,
	ResponseEnd,
}

const (
	InitiatorXMLHTTPRequest = "xmlhttprequest"
	InitiatorFetch          = "fetch"
)

// Entry is a single resource timing record.  Entries are treated as immutable once created,
// and are compared by identity when tracking which ones have already been consumed.
type Entry struct {
	// Name is the absolute URL of the request, exactly as the browser recorded it
	Name string

	// InitiatorType is the browser subsystem that issued the request, e.g. "fetch"
	InitiatorType string

	FetchStart            time.Time
	DomainLookupStart     time.Time
	DomainLookupEnd       time.Time
	ConnectStart          time.Time
	SecureConnectionStart time.Time
	ConnectEnd            time.Time
	RequestStart          time.Time
	ResponseStart         time.Time
	ResponseEnd           time.Time

	// EncodedBodySize is the size of the response payload as transferred, before
	// content decoding.  Nil when the browser did not report it.
	EncodedBodySize *int64

	// DecodedBodySize is the size of the response payload after content decoding.
	// Nil when the browser did not report it.
	DecodedBodySize *int64
}

// Timing returns the timestamp for the given milestone.  The returned time is zero
// if the milestone was not reported or the name is unrecognized.
func (e *Entry) Timing(n TimingName) time.Time {
	switch n {
	case FetchStart:
		return e.FetchStart
	case DomainLookupStart:
		return e.DomainLookupStart
	case DomainLookupEnd:
		return e.DomainLookupEnd
	case ConnectStart:
		return e.ConnectStart
	case SecureConnectionStart:
		return e.SecureConnectionStart
	case ConnectEnd:
		return e.ConnectEnd
	case RequestStart:
		return e.RequestStart
	case ResponseStart:
		return e.ResponseStart
	case ResponseEnd:
		return e.ResponseEnd
	default:
		return time.Time{}
	}
}

// Secure tests if this entry's URL uses the https scheme.
func (e *Entry) Secure() bool {
	return len(e.Name) >= 6 && strings.EqualFold(e.Name[:6], "https:")
}

// Duration is the elapsed time between FetchStart and ResponseEnd, or zero if either is missing.
func (e *Entry) Duration() time.Duration {
	if e.FetchStart.IsZero() || e.ResponseEnd.IsZero() {
		return 0
	}

	return e.ResponseEnd.Sub(e.FetchStart)
}

// Size is a convenience for producing the optional body size fields.
func Size(v int64) *int64 {
	return &v
}
