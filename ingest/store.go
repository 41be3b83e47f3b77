// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/xmidt-org/resourcetiming/metrics"
	"github.com/xmidt-org/resourcetiming/perf"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const DefaultMaxPages = 1024

// StoreOptions configures a Store
type StoreOptions struct {
	// MaxPages is the number of page sessions held before the least recently used is evicted
	MaxPages int

	// MaxEntriesPerPage is the buffer capacity of each session
	MaxEntriesPerPage int

	Logger   *zap.Logger
	Measures *metrics.Measures

	// Now is the clock used to stamp session updates.  Defaults to time.Now.
	Now func() time.Time
}

// Store holds page sessions, bounded by an LRU policy
type Store struct {
	lock     sync.Mutex
	cache    *lru.Cache
	capacity int
	logger   *zap.Logger
	measures *metrics.Measures
	now      func() time.Time
}

// NewStore constructs a Store
func NewStore(o StoreOptions) (*Store, error) {
	s := &Store{
		capacity: o.MaxEntriesPerPage,
		logger:   o.Logger,
		measures: o.Measures,
		now:      o.Now,
	}

	if s.capacity < 1 {
		s.capacity = perf.DefaultBufferCapacity
	}

	if s.logger == nil {
		s.logger = sallust.Default()
	}

	if s.measures == nil {
		s.measures = metrics.NewDiscardMeasures()
	}

	if s.now == nil {
		s.now = time.Now
	}

	maxPages := o.MaxPages
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}

	var err error
	s.cache, err = lru.NewWithEvict(maxPages, s.onEvict)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) onEvict(key, _ interface{}) {
	s.measures.PagesEvicted.Add(1)
	s.logger.Debug("page session evicted", zap.Any("pageID", key))
}

// Get returns an existing session
func (s *Store) Get(id string) (*Session, bool) {
	if v, ok := s.cache.Get(id); ok {
		return v.(*Session), true
	}

	return nil, false
}

// Load returns the session for a page, creating it if necessary, and applies the page-level
// fields of a report to it.
func (s *Store) Load(id, base string, timeOrigin time.Time) *Session {
	s.lock.Lock()
	session, ok := s.Get(id)
	if !ok {
		session = NewSession(id, base, s.capacity)
		s.cache.Add(id, session)
		s.measures.PageSessions.Set(float64(s.cache.Len()))
	}

	s.lock.Unlock()
	session.Update(base, timeOrigin, s.now())
	return session
}

// Len returns the number of sessions held
func (s *Store) Len() int {
	return s.cache.Len()
}
