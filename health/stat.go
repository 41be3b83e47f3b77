// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"runtime"

	"github.com/c9s/goprocinfo/linux"
)

const (
	CurrentMemoryUtilizationAlloc   Stat = "CurrentMemoryUtilizationAlloc"
	CurrentMemoryUtilizationHeapSys Stat = "CurrentMemoryUtilizationHeapSys"
	CurrentMemoryUtilizationActive  Stat = "CurrentMemoryUtilizationActive"
	MaxMemoryUtilizationAlloc       Stat = "MaxMemoryUtilizationAlloc"
	MaxMemoryUtilizationHeapSys     Stat = "MaxMemoryUtilizationHeapSys"
	MaxMemoryUtilizationActive      Stat = "MaxMemoryUtilizationActive"

	TotalRequestsReceived           Stat = "TotalRequestsReceived"
	TotalRequestsSuccessfullyServed Stat = "TotalRequestsSuccessfullyServed"
	TotalRequestsDenied             Stat = "TotalRequestsDenied"

	ReportsAccepted    Stat = "ReportsAccepted"
	ReportsRejected    Stat = "ReportsRejected"
	EntriesReceived    Stat = "EntriesReceived"
	RequestsCorrelated Stat = "RequestsCorrelated"
	RequestsMatched    Stat = "RequestsMatched"
)

// commonStats seeds every Health
var commonStats = Stats{
	CurrentMemoryUtilizationAlloc:   0,
	CurrentMemoryUtilizationHeapSys: 0,
	CurrentMemoryUtilizationActive:  0,
	MaxMemoryUtilizationAlloc:       0,
	MaxMemoryUtilizationHeapSys:     0,
	MaxMemoryUtilizationActive:      0,
	TotalRequestsReceived:           0,
	TotalRequestsSuccessfullyServed: 0,
	TotalRequestsDenied:             0,
}

// Option describes an option that can be set on a Stats map
type Option interface {
	Set(Stats)
}

// Stat is a named piece of data to be tracked
type Stat string

// Set creates the stat with a zero value, leaving any existing value alone
func (s Stat) Set(stats Stats) {
	if _, ok := stats[s]; !ok {
		stats[s] = 0
	}
}

// HealthFunc functions are allowed to modify the passed-in stats
type HealthFunc func(Stats)

func (f HealthFunc) Set(stats Stats) {
	f(stats)
}

// Options aggregates a sequence of options so they are applied atomically
func Options(options ...Option) HealthFunc {
	return func(stats Stats) {
		for _, option := range options {
			option.Set(stats)
		}
	}
}

// Inc increments the given stat
func Inc(stat Stat, value int) HealthFunc {
	return func(stats Stats) {
		stats[stat] += value
	}
}

// Stats is mapping of Stat to value
type Stats map[Stat]int

func (s Stats) Set(stats Stats) {
	for key, value := range s {
		stats[key] = value
	}
}

// Clone returns a distinct copy of this Stats object
func (s Stats) Clone() Stats {
	clone := make(Stats, len(s))
	for key, value := range s {
		clone[key] = value
	}

	return clone
}

// Apply invokes each Option.Set() on this stats map
func (s Stats) Apply(options ...Option) {
	for _, option := range options {
		option.Set(s)
	}
}

func (s Stats) setWithMax(current, max Stat, value int) {
	s[current] = value
	if value > s[max] {
		s[max] = value
	}
}

// UpdateMemInfo records the active memory from a linux meminfo, which reports kilobytes
func (s Stats) UpdateMemInfo(memInfo *linux.MemInfo) {
	s.setWithMax(CurrentMemoryUtilizationActive, MaxMemoryUtilizationActive, int(memInfo.Active*1024))
}

// UpdateMemStats records the heap figures from the go runtime
func (s Stats) UpdateMemStats(memStats *runtime.MemStats) {
	s.setWithMax(CurrentMemoryUtilizationAlloc, MaxMemoryUtilizationAlloc, int(memStats.Alloc))
	s.setWithMax(CurrentMemoryUtilizationHeapSys, MaxMemoryUtilizationHeapSys, int(memStats.HeapSys))
}

// UpdateMemory updates all the memory statistics.  Active memory is only available
// where the meminfo file can be read.
func (s Stats) UpdateMemory(reader *MemInfoReader) {
	if memInfo, err := reader.Read(); err == nil {
		s.UpdateMemInfo(memInfo)
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	s.UpdateMemStats(&memStats)
}
