// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"testing"
	"time"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/resourcetiming/matcher"
	"github.com/xmidt-org/resourcetiming/metrics"
	"github.com/xmidt-org/resourcetiming/perf"
	"github.com/xmidt-org/resourcetiming/urlx"
)

func newTestEntry(name string, fetchStart, responseEnd time.Duration) *perf.Entry {
	return &perf.Entry{
		Name:          name,
		InitiatorType: perf.InitiatorXMLHTTPRequest,
		FetchStart:    testTimeOrigin.Add(fetchStart),
		ResponseEnd:   testTimeOrigin.Add(responseEnd),
	}
}

func testSessionUpdate(t *testing.T) {
	var (
		assert  = assert.New(t)
		session = NewSession("page", "", 10)
		now     = time.Now()
	)

	assert.Equal("page", session.ID())
	session.Update("https://first.example.com/", testTimeOrigin, now)
	session.Update("https://second.example.com/", testTimeOrigin.Add(time.Hour), now.Add(time.Minute))

	assert.True(testTimeOrigin.Equal(session.TimeOrigin()))
	assert.Equal(now.Add(time.Minute), session.Updated())

	var origin string
	session.Do(func(r *urlx.Resolver, _ []*perf.Entry, _ *matcher.IgnoredSet) {
		origin = r.Origin()
	})

	assert.Equal("https://first.example.com", origin)
}

func testSessionNoBase(t *testing.T) {
	var (
		assert   = assert.New(t)
		session  = NewSession("page", "", 10)
		resolver = urlx.NewResolver("unused")
	)

	session.Do(func(r *urlx.Resolver, _ []*perf.Entry, _ *matcher.IgnoredSet) {
		resolver = r
	})

	assert.Nil(resolver)
}

func testSessionEviction(t *testing.T) {
	var (
		assert  = assert.New(t)
		session = NewSession("page", "https://app.example.com/", 2)
		first   = newTestEntry("https://app.example.com/1", 0, time.Millisecond)
		second  = newTestEntry("https://app.example.com/2", 0, time.Millisecond)
		third   = newTestEntry("https://app.example.com/3", 0, time.Millisecond)
	)

	assert.Zero(session.AddEntries(first, second))
	session.Do(func(_ *urlx.Resolver, entries []*perf.Entry, ignored *matcher.IgnoredSet) {
		assert.Equal([]*perf.Entry{first, second}, entries)
		ignored.Add(first, second)
	})

	assert.True(session.Consumed(first))
	assert.Equal(1, session.AddEntries(third))
	assert.Equal(2, session.Len())

	// the evicted entry is no longer tracked as consumed
	assert.False(session.Consumed(first))
	assert.True(session.Consumed(second))
	assert.False(session.Consumed(third))

	unconsumed := session.Select(func(_ *perf.Entry, consumed bool) bool { return !consumed })
	assert.Equal([]*perf.Entry{third}, unconsumed)
}

func TestSession(t *testing.T) {
	t.Run("Update", testSessionUpdate)
	t.Run("NoBase", testSessionNoBase)
	t.Run("Eviction", testSessionEviction)
}

func testStoreDefaults(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	store, err := NewStore(StoreOptions{})
	require.NoError(err)
	require.NotNil(store)

	_, ok := store.Get("missing")
	assert.False(ok)

	session := store.Load("page", "https://app.example.com/", testTimeOrigin)
	require.NotNil(session)
	assert.Equal(1, store.Len())

	existing, ok := store.Get("page")
	assert.True(ok)
	assert.Same(session, existing)
	assert.Same(session, store.Load("page", "", testTimeOrigin))
	assert.Equal(1, store.Len())
	assert.Zero(session.Len())
}

func testStoreEviction(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		evicted  = generic.NewCounter("evicted")
		sessions = generic.NewGauge("sessions")
		measures = metrics.NewDiscardMeasures()
		now      = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	)

	measures.PagesEvicted = evicted
	measures.PageSessions = sessions

	store, err := NewStore(StoreOptions{
		MaxPages:          2,
		MaxEntriesPerPage: 3,
		Measures:          measures,
		Now:               func() time.Time { return now },
	})

	require.NoError(err)

	first := store.Load("first", "", testTimeOrigin)
	store.Load("second", "", testTimeOrigin)
	assert.Equal(2.0, sessions.Value())
	assert.Zero(evicted.Value())
	assert.Equal(now, first.Updated())

	// touching first makes second the least recently used
	_, ok := store.Get("first")
	require.True(ok)
	store.Load("third", "", testTimeOrigin)

	assert.Equal(2, store.Len())
	assert.Equal(1.0, evicted.Value())

	_, ok = store.Get("second")
	assert.False(ok)
	_, ok = store.Get("first")
	assert.True(ok)

	third, ok := store.Get("third")
	require.True(ok)
	for i := 0; i < 5; i++ {
		third.AddEntries(newTestEntry("https://app.example.com/x", 0, time.Millisecond))
	}

	assert.Equal(3, third.Len())
}

func TestStore(t *testing.T) {
	t.Run("Defaults", testStoreDefaults)
	t.Run("Eviction", testStoreEviction)
}
