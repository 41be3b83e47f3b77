// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cast"
	"github.com/xmidt-org/resourcetiming/perf"
)

var (
	ErrMissingTimeOrigin = errors.New("A report requires a timeOrigin")
	ErrMissingURL        = errors.New("A request requires a url")
	ErrInvalidWindow     = errors.New("A request requires a start and an end no earlier than its start")
)

// Request is a traced request reported by a page
type Request struct {
	// URL is the request URL as the page's code supplied it.  It may be relative.
	URL string

	Method        string
	InitiatorType string

	// Start and End bound the request as the page observed it
	Start time.Time
	End   time.Time

	// StatusCode is the response status, or zero if no response was received
	StatusCode int

	// TraceParent and TraceState are the W3C trace context of the request, if it had one
	TraceParent string
	TraceState  string

	// BodyLength is the request payload length measured by the page, if known
	BodyLength *int64
}

// Get and Set satisfy propagation.TextMapCarrier so the request's trace context can be extracted
func (r *Request) Get(key string) string {
	switch strings.ToLower(key) {
	case "traceparent":
		return r.TraceParent
	case "tracestate":
		return r.TraceState
	default:
		return ""
	}
}

func (r *Request) Set(key, value string) {
	switch strings.ToLower(key) {
	case "traceparent":
		r.TraceParent = value
	case "tracestate":
		r.TraceState = value
	}
}

func (r *Request) Keys() []string {
	return []string{"traceparent", "tracestate"}
}

// Report is a batch of timing data from one page
type Report struct {
	// PageID identifies the page session.  A new one is generated when the page sends none.
	PageID string

	// Origin is the page's origin, e.g. https://app.example.com
	Origin string

	// BaseURL is the document base URL.  If unset, the origin is used.
	BaseURL string

	// TimeOrigin is the instant all of the report's relative times are measured from
	TimeOrigin time.Time

	Entries  []*perf.Entry
	Requests []Request
}

// Base returns the URL relative request URLs resolve against
func (r *Report) Base() string {
	if len(r.BaseURL) > 0 {
		return r.BaseURL
	}

	if len(r.Origin) > 0 {
		return r.Origin + "/"
	}

	return ""
}

// DecodeReport reads a report in the given format.  Times are sent as milliseconds relative to
// timeOrigin, which is itself milliseconds since the Unix epoch.
func DecodeReport(input io.Reader, f perf.Format) (*Report, error) {
	var raw map[string]interface{}
	if err := perf.NewDecoder(input, f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("unable to decode report: %w", err)
	}

	if raw["timeOrigin"] == nil {
		return nil, ErrMissingTimeOrigin
	}

	timeOrigin, err := perf.TimeOrigin(raw["timeOrigin"])
	if err != nil {
		return nil, err
	}

	report := &Report{
		PageID:     cast.ToString(raw["pageId"]),
		Origin:     strings.TrimSuffix(cast.ToString(raw["origin"]), "/"),
		BaseURL:    cast.ToString(raw["baseUrl"]),
		TimeOrigin: timeOrigin,
	}

	if len(report.PageID) == 0 {
		report.PageID = ksuid.New().String()
	}

	rawEntries, err := cast.ToSliceE(raw["entries"])
	if err != nil {
		return nil, fmt.Errorf("invalid entries: %w", err)
	}

	for i, v := range rawEntries {
		m, err := cast.ToStringMapE(v)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %d: %w", i, err)
		}

		e, err := perf.DecodeEntry(m, timeOrigin)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %d: %w", i, err)
		}

		report.Entries = append(report.Entries, e)
	}

	rawRequests, err := cast.ToSliceE(raw["requests"])
	if err != nil {
		return nil, fmt.Errorf("invalid requests: %w", err)
	}

	for i, v := range rawRequests {
		m, err := cast.ToStringMapE(v)
		if err != nil {
			return nil, fmt.Errorf("invalid request %d: %w", i, err)
		}

		r, err := decodeRequest(m, timeOrigin)
		if err != nil {
			return nil, fmt.Errorf("invalid request %d: %w", i, err)
		}

		report.Requests = append(report.Requests, r)
	}

	return report, nil
}

func decodeRequest(raw map[string]interface{}, timeOrigin time.Time) (r Request, err error) {
	r = Request{
		URL:           strings.TrimSpace(cast.ToString(raw["url"])),
		Method:        strings.ToUpper(cast.ToString(raw["method"])),
		InitiatorType: cast.ToString(raw["initiatorType"]),
		TraceParent:   cast.ToString(raw["traceparent"]),
		TraceState:    cast.ToString(raw["tracestate"]),
	}

	if len(r.URL) == 0 {
		return Request{}, ErrMissingURL
	}

	if len(r.Method) == 0 {
		r.Method = http.MethodGet
	}

	if r.Start, err = perf.RelativeTime(timeOrigin, raw["start"]); err != nil {
		return Request{}, fmt.Errorf("invalid start: %w", err)
	}

	if r.End, err = perf.RelativeTime(timeOrigin, raw["end"]); err != nil {
		return Request{}, fmt.Errorf("invalid end: %w", err)
	}

	if r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start) {
		return Request{}, ErrInvalidWindow
	}

	if raw["status"] != nil {
		if r.StatusCode, err = cast.ToIntE(raw["status"]); err != nil {
			return Request{}, fmt.Errorf("invalid status: %w", err)
		}
	}

	if raw["bodyLength"] != nil {
		n, err := cast.ToInt64E(raw["bodyLength"])
		if err != nil {
			return Request{}, fmt.Errorf("invalid bodyLength: %w", err)
		}

		r.BodyLength = &n
	}

	return r, nil
}
