// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package perf

import (
	"sync"

	"golang.org/x/exp/slices"
)

// DefaultBufferCapacity mirrors the default size of a browser's resource timing buffer.
const DefaultBufferCapacity = 250

// Buffer holds the most recent entries reported for a page.  When the buffer is full, the
// oldest entries are evicted first.  A Buffer is safe for concurrent use.
type Buffer struct {
	lock     sync.RWMutex
	capacity int
	entries  []*Entry
}

// NewBuffer creates a Buffer with the given capacity.  A nonpositive capacity
// means DefaultBufferCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultBufferCapacity
	}

	return &Buffer{
		capacity: capacity,
		entries:  make([]*Entry, 0, capacity),
	}
}

// Capacity returns the maximum number of entries this buffer retains
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Len returns the number of entries currently held
func (b *Buffer) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.entries)
}

// Add appends entries to this buffer, returning the number of entries evicted to make room.
// Nil entries are skipped.
func (b *Buffer) Add(entries ...*Entry) int {
	b.lock.Lock()
	defer b.lock.Unlock()

	for _, e := range entries {
		if e != nil {
			b.entries = append(b.entries, e)
		}
	}

	evicted := len(b.entries) - b.capacity
	if evicted <= 0 {
		return 0
	}

	// allocate a new slice so the evicted entries can be collected
	kept := make([]*Entry, b.capacity, b.capacity)
	copy(kept, b.entries[evicted:])
	b.entries = kept
	return evicted
}

// Entries returns a snapshot of the buffered entries, oldest first.  The returned slice
// is owned by the caller, but the entries themselves are shared.
func (b *Buffer) Entries() []*Entry {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return slices.Clone(b.entries)
}

// Select returns the buffered entries for which the predicate returns true, oldest first.
func (b *Buffer) Select(p func(*Entry) bool) []*Entry {
	b.lock.RLock()
	defer b.lock.RUnlock()

	var selected []*Entry
	for _, e := range b.entries {
		if p(e) {
			selected = append(selected, e)
		}
	}

	return selected
}
