// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"strings"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/resourcetiming/perf"
	"github.com/xmidt-org/resourcetiming/urlx"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const (
	// DefaultInitiatorType is the initiator type matched when a Query does not specify one
	DefaultInitiatorType = perf.InitiatorXMLHTTPRequest

	// OutcomeLabel is the label used on the outcome counter
	OutcomeLabel = "outcome"

	OutcomeNone      = "none"
	OutcomeSingle    = "single"
	OutcomeMain      = "main"
	OutcomePreflight = "preflight"
)

// Query describes the span for which performance entries are sought
type Query struct {
	// URL is the request URL as the instrumented code supplied it.  It may be relative.
	URL string

	// Start is the time the span started.  Matching entries must not start before this.
	Start time.Time

	// End is the time the span ended.  Matching entries must not end after this.
	End time.Time

	// InitiatorType is the initiator type of matching entries.  If unset, the Matcher's
	// configured default is used.
	InitiatorType string
}

// Result is the outcome of a match attempt
type Result struct {
	// Main is the entry for the span's request, or nil if nothing matched
	Main *perf.Entry

	// CorsPreflight is the entry for the browser-issued OPTIONS request that preceded Main,
	// if there was one
	CorsPreflight *perf.Entry

	// Candidates is the number of entries that satisfied the query before disambiguation
	Candidates int
}

// Found tests if a main request was matched
func (r Result) Found() bool {
	return r.Main != nil
}

// Entries returns the matched entries, preflight first.  Callers add these to their
// IgnoredSet once they have used the result.
func (r Result) Entries() []*perf.Entry {
	var entries []*perf.Entry
	if r.CorsPreflight != nil {
		entries = append(entries, r.CorsPreflight)
	}

	if r.Main != nil {
		entries = append(entries, r.Main)
	}

	return entries
}

// Outcome classifies this result for metrics and logging
func (r Result) Outcome() string {
	switch {
	case r.Main == nil:
		return OutcomeNone
	case r.CorsPreflight != nil:
		return OutcomePreflight
	case r.Candidates == 1:
		return OutcomeSingle
	default:
		return OutcomeMain
	}
}

// Option configures a Matcher
type Option func(*Matcher)

// WithInitiatorType sets the default initiator type.  An empty value does nothing.
func WithInitiatorType(initiatorType string) Option {
	return func(m *Matcher) {
		if len(initiatorType) > 0 {
			m.initiatorType = initiatorType
		}
	}
}

// WithOutcomes sets the counter incremented with an OutcomeLabel for each match.  A nil
// counter does nothing.
func WithOutcomes(c metrics.Counter) Option {
	return func(m *Matcher) {
		if c != nil {
			m.outcomes = c
		}
	}
}

// WithLogger sets the logger used for match diagnostics.  A nil logger does nothing.
func WithLogger(l *zap.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// Matcher finds the performance entries that correspond to a span's network request.
// A Matcher holds no per-page state and is safe for concurrent use.
type Matcher struct {
	initiatorType string
	outcomes      metrics.Counter
	logger        *zap.Logger
}

// New constructs a Matcher
func New(o ...Option) *Matcher {
	m := &Matcher{
		initiatorType: DefaultInitiatorType,
		outcomes:      discard.NewCounter(),
		logger:        sallust.Default(),
	}

	for _, option := range o {
		option(m)
	}

	return m
}

// Match searches entries for the request described by q.  The resolver supplies the page's
// base URL and origin, and may be nil if neither is known, in which case q.URL must already
// be absolute and the request is treated as same-origin.
//
// Neither entries nor ignored are modified.  Entries in ignored are never selected.
func (m *Matcher) Match(r *urlx.Resolver, q Query, entries []*perf.Entry, ignored *IgnoredSet) Result {
	spanURL := q.URL
	if r != nil {
		spanURL = r.Normalize(q.URL)
	}

	initiatorType := q.InitiatorType
	if len(initiatorType) == 0 {
		initiatorType = m.initiatorType
	}

	var (
		candidates = filter(spanURL, initiatorType, q.Start, q.End, entries, ignored)
		result     = disambiguate(crossOrigin(r, spanURL), q.End, candidates)
	)

	m.outcomes.With(OutcomeLabel, result.Outcome()).Add(1)
	m.logger.Debug(
		"resource timing match",
		zap.String("url", spanURL),
		zap.String("initiatorType", initiatorType),
		zap.Int("candidates", result.Candidates),
		zap.String(OutcomeLabel, result.Outcome()),
	)

	return result
}

func crossOrigin(r *urlx.Resolver, spanURL string) bool {
	return r != nil && len(r.Origin()) > 0 && !r.SameOrigin(spanURL)
}

// filter returns the entries for spanURL that lie entirely within [start, end]
func filter(spanURL, initiatorType string, start, end time.Time, entries []*perf.Entry, ignored *IgnoredSet) []*perf.Entry {
	var candidates []*perf.Entry
	for _, e := range entries {
		switch {
		case e == nil:
		case e.Name != spanURL:
		case !strings.EqualFold(e.InitiatorType, initiatorType):
		case e.FetchStart.IsZero() || e.ResponseEnd.IsZero():
		case e.FetchStart.Before(start) || e.ResponseEnd.After(end):
		case ignored.Has(e):
		default:
			candidates = append(candidates, e)
		}
	}

	return candidates
}

func disambiguate(crossOrigin bool, end time.Time, candidates []*perf.Entry) Result {
	switch len(candidates) {
	case 0:
		return Result{}

	case 1:
		return Result{Main: candidates[0], Candidates: 1}
	}

	// candidates is private to this match, so sorting in place leaves the caller's slice alone
	slices.SortStableFunc(candidates, func(a, b *perf.Entry) int {
		return a.FetchStart.Compare(b.FetchStart)
	})

	if !crossOrigin {
		return Result{Main: candidates[0], Candidates: len(candidates)}
	}

	var (
		preflight = candidates[0]
		main      = findMain(candidates, preflight.ResponseEnd, end)
	)

	if main.FetchStart.Before(preflight.ResponseEnd) {
		// the earliest entry overlaps the others, so it was not a preflight
		return Result{Main: preflight, Candidates: len(candidates)}
	}

	return Result{CorsPreflight: preflight, Main: main, Candidates: len(candidates)}
}

// findMain chooses, among the candidates after the first that started once the preflight
// finished, the one whose end is closest to the span's end.  Ties go to the earlier candidate.
// If none qualifies, the second candidate is returned.
func findMain(sorted []*perf.Entry, preflightEnd, spanEnd time.Time) *perf.Entry {
	var (
		main    = sorted[1]
		bestGap time.Duration
		haveGap bool
	)

	for _, e := range sorted[1:] {
		if e.FetchStart.Before(preflightEnd) {
			continue
		}

		if gap := spanEnd.Sub(e.ResponseEnd); !haveGap || gap < bestGap {
			main, bestGap, haveGap = e, gap, true
		}
	}

	return main
}
