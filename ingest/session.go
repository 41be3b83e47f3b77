// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"sync"
	"time"

	"github.com/xmidt-org/resourcetiming/matcher"
	"github.com/xmidt-org/resourcetiming/perf"
	"github.com/xmidt-org/resourcetiming/urlx"
)

// Session is the state kept for one page.  All access goes through the session's lock,
// which also serializes correlation passes so an entry is never attributed twice.
type Session struct {
	id       string
	lock     sync.Mutex
	base     string
	resolver *urlx.Resolver
	origin   time.Time
	buffer   *perf.Buffer
	ignored  *matcher.IgnoredSet
	updated  time.Time
}

// NewSession creates an empty page session.  The resolver for base is built on first use.
func NewSession(id, base string, capacity int) *Session {
	return &Session{
		id:      id,
		base:    base,
		buffer:  perf.NewBuffer(capacity),
		ignored: matcher.NewIgnoredSet(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Update applies a report's page-level fields.  The first base URL seen for a page wins.
func (s *Session) Update(base string, timeOrigin time.Time, now time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.base) == 0 {
		s.base = base
		s.resolver = nil
	}

	if s.origin.IsZero() {
		s.origin = timeOrigin
	}

	s.updated = now
}

// TimeOrigin returns the time origin of the first report for this page
func (s *Session) TimeOrigin() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.origin
}

// Updated returns the last time a report was applied to this session
func (s *Session) Updated() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.updated
}

// AddEntries buffers entries for matching and returns the number evicted to make room.
// Consumed entries that fall out of the buffer are forgotten.
func (s *Session) AddEntries(entries ...*perf.Entry) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	evicted := s.buffer.Add(entries...)
	if evicted > 0 {
		kept := make(map[*perf.Entry]bool, s.buffer.Len())
		for _, e := range s.buffer.Entries() {
			kept[e] = true
		}

		s.ignored.Retain(func(e *perf.Entry) bool { return kept[e] })
	}

	return evicted
}

// Consumed tests if an entry has already been attributed to a span
func (s *Session) Consumed(e *perf.Entry) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ignored.Has(e)
}

// Select returns the buffered entries for which the predicate returns true, oldest first.
// The predicate is also told whether each entry has been consumed.
func (s *Session) Select(p func(e *perf.Entry, consumed bool) bool) []*perf.Entry {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.buffer.Select(func(e *perf.Entry) bool {
		return p(e, s.ignored.Has(e))
	})
}

// Len returns the number of buffered entries
func (s *Session) Len() int {
	return s.buffer.Len()
}

// Do runs f with exclusive access to the session's matching state.  The resolver
// is created here, on first use.
func (s *Session) Do(f func(*urlx.Resolver, []*perf.Entry, *matcher.IgnoredSet)) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.resolver == nil && len(s.base) > 0 {
		s.resolver = urlx.NewResolver(s.base)
	}

	f(s.resolver, s.buffer.Entries(), s.ignored)
}
