// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package perf

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntries(count int) []*Entry {
	entries := make([]*Entry, count)
	for i := range entries {
		entries[i] = &Entry{
			Name:          fmt.Sprintf("https://example.com/%d", i),
			InitiatorType: InitiatorFetch,
		}
	}

	return entries
}

func TestNewBuffer(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(DefaultBufferCapacity, NewBuffer(0).Capacity())
	assert.Equal(DefaultBufferCapacity, NewBuffer(-1).Capacity())
	assert.Equal(17, NewBuffer(17).Capacity())
	assert.Zero(NewBuffer(17).Len())
	assert.Empty(NewBuffer(17).Entries())
}

func testBufferAddUnderCapacity(t *testing.T) {
	var (
		assert  = assert.New(t)
		b       = NewBuffer(5)
		entries = newEntries(3)
	)

	assert.Zero(b.Add(entries...))
	assert.Zero(b.Add(nil))
	assert.Equal(3, b.Len())
	assert.Equal(entries, b.Entries())
}

func testBufferAddEvicts(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		b       = NewBuffer(3)
		entries = newEntries(5)
	)

	assert.Zero(b.Add(entries[:2]...))
	assert.Equal(2, b.Add(entries[2:]...))

	actual := b.Entries()
	require.Len(actual, 3)
	for i, e := range actual {
		assert.True(entries[i+2] == e)
	}
}

func testBufferEntriesIsSnapshot(t *testing.T) {
	var (
		assert = assert.New(t)
		b      = NewBuffer(3)
	)

	b.Add(newEntries(2)...)
	snapshot := b.Entries()
	snapshot[0] = nil

	assert.NotNil(b.Entries()[0])
}

func TestBufferAdd(t *testing.T) {
	t.Run("UnderCapacity", testBufferAddUnderCapacity)
	t.Run("Evicts", testBufferAddEvicts)
	t.Run("Snapshot", testBufferEntriesIsSnapshot)
}

func TestBufferSelect(t *testing.T) {
	var (
		assert  = assert.New(t)
		b       = NewBuffer(10)
		entries = newEntries(4)
	)

	entries[1].InitiatorType = InitiatorXMLHTTPRequest
	entries[3].InitiatorType = InitiatorXMLHTTPRequest
	b.Add(entries...)

	assert.Equal(
		[]*Entry{entries[1], entries[3]},
		b.Select(func(e *Entry) bool { return e.InitiatorType == InitiatorXMLHTTPRequest }),
	)

	assert.Empty(b.Select(func(*Entry) bool { return false }))
}

func TestBufferConcurrentAdd(t *testing.T) {
	var (
		assert = assert.New(t)
		b      = NewBuffer(100)
		wg     sync.WaitGroup
	)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, e := range newEntries(20) {
				b.Add(e)
			}
		}()
	}

	wg.Wait()
	assert.Equal(100, b.Len())
}
