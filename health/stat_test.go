// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/c9s/goprocinfo/linux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone(t *testing.T) {
	var (
		assert  = assert.New(t)
		initial = Stats{CurrentMemoryUtilizationHeapSys: 123}
		cloned  = initial.Clone()
	)

	assert.Equal(initial, cloned)
	cloned[CurrentMemoryUtilizationActive] = 123211
	assert.NotEqual(initial, cloned)
}

func TestApply(t *testing.T) {
	testData := []struct {
		name     string
		options  []Option
		initial  Stats
		expected Stats
	}{
		{
			name:     "Inc",
			options:  []Option{Inc(ReportsAccepted, 1), Inc(ReportsAccepted, 2)},
			initial:  Stats{},
			expected: Stats{ReportsAccepted: 3},
		},
		{
			name:     "Ensure",
			options:  []Option{EntriesReceived, RequestsMatched},
			initial:  Stats{EntriesReceived: 12},
			expected: Stats{EntriesReceived: 12, RequestsMatched: 0},
		},
		{
			name:     "Stats",
			options:  []Option{Stats{ReportsRejected: 4}},
			initial:  Stats{ReportsRejected: 1, ReportsAccepted: 2},
			expected: Stats{ReportsRejected: 4, ReportsAccepted: 2},
		},
		{
			name:     "Options",
			options:  []Option{Options(Inc(RequestsCorrelated, 5), Inc(RequestsMatched, 3))},
			initial:  Stats{},
			expected: Stats{RequestsCorrelated: 5, RequestsMatched: 3},
		},
	}

	for _, record := range testData {
		t.Run(record.name, func(t *testing.T) {
			record.initial.Apply(record.options...)
			assert.Equal(t, record.expected, record.initial)
		})
	}
}

func TestUpdateMemStats(t *testing.T) {
	var (
		assert = assert.New(t)
		stats  = Stats{}
	)

	stats.UpdateMemStats(&runtime.MemStats{Alloc: 100, HeapSys: 200})
	assert.Equal(100, stats[CurrentMemoryUtilizationAlloc])
	assert.Equal(200, stats[MaxMemoryUtilizationHeapSys])

	stats.UpdateMemStats(&runtime.MemStats{Alloc: 50, HeapSys: 300})
	assert.Equal(50, stats[CurrentMemoryUtilizationAlloc])
	assert.Equal(100, stats[MaxMemoryUtilizationAlloc])
	assert.Equal(300, stats[CurrentMemoryUtilizationHeapSys])
	assert.Equal(300, stats[MaxMemoryUtilizationHeapSys])
}

func TestUpdateMemInfo(t *testing.T) {
	var (
		assert = assert.New(t)
		stats  = Stats{}
	)

	stats.UpdateMemInfo(&linux.MemInfo{Active: 2})
	stats.UpdateMemInfo(&linux.MemInfo{Active: 1})
	assert.Equal(1024, stats[CurrentMemoryUtilizationActive])
	assert.Equal(2048, stats[MaxMemoryUtilizationActive])
}

func TestMemInfoReader(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		location = filepath.Join(t.TempDir(), "meminfo")
	)

	require.NoError(os.WriteFile(location, []byte("MemTotal: 1000 kB\nActive: 300 kB\n"), 0o600))

	memInfo, err := (&MemInfoReader{Location: location}).Read()
	require.NoError(err)
	assert.Equal(uint64(300), memInfo.Active)

	stats := Stats{}
	stats.UpdateMemory(&MemInfoReader{Location: location})
	assert.Equal(300*1024, stats[CurrentMemoryUtilizationActive])
	assert.Positive(stats[CurrentMemoryUtilizationAlloc])

	_, err = (&MemInfoReader{Location: filepath.Join(t.TempDir(), "missing")}).Read()
	assert.Error(err)
}
