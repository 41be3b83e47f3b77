// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package matcher

import "github.com/xmidt-org/resourcetiming/perf"

// IgnoredSet tracks entries that have already been attributed to a span, so that a single
// network timing record is never attributed twice.  Membership is by identity.  The set
// does not own the entries, and it is not safe for concurrent use: the owner of a page
// session is expected to serialize match passes.
type IgnoredSet struct {
	entries map[*perf.Entry]struct{}
}

// NewIgnoredSet creates an empty IgnoredSet
func NewIgnoredSet() *IgnoredSet {
	return &IgnoredSet{
		entries: make(map[*perf.Entry]struct{}),
	}
}

// Has tests if the given entry has been consumed.  A nil IgnoredSet contains nothing.
func (s *IgnoredSet) Has(e *perf.Entry) bool {
	if s == nil {
		return false
	}

	_, ok := s.entries[e]
	return ok
}

// Add marks entries as consumed.  Nil entries are skipped.
func (s *IgnoredSet) Add(entries ...*perf.Entry) {
	for _, e := range entries {
		if e != nil {
			s.entries[e] = struct{}{}
		}
	}
}

// Len returns the number of consumed entries
func (s *IgnoredSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.entries)
}

// Retain drops every consumed entry for which keep returns false.  Page sessions use this to
// forget entries that have been evicted from their buffer.
func (s *IgnoredSet) Retain(keep func(*perf.Entry) bool) {
	for e := range s.entries {
		if !keep(e) {
			delete(s.entries, e)
		}
	}
}
