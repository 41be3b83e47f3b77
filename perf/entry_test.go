// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryTiming(t *testing.T) {
	var (
		assert = assert.New(t)
		base   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		e      = new(Entry)
	)

	fields := map[TimingName]*time.Time{
		FetchStart:            &e.FetchStart,
		DomainLookupStart:     &e.DomainLookupStart,
		DomainLookupEnd:       &e.DomainLookupEnd,
		ConnectStart:          &e.ConnectStart,
		SecureConnectionStart: &e.SecureConnectionStart,
		ConnectEnd:            &e.ConnectEnd,
		RequestStart:          &e.RequestStart,
		ResponseStart:         &e.ResponseStart,
		ResponseEnd:           &e.ResponseEnd,
	}

	assert.Len(fields, len(Timings))
	for i, name := range Timings {
		*fields[name] = base.Add(time.Duration(i) * time.Millisecond)
	}

	for i, name := range Timings {
		assert.Equal(base.Add(time.Duration(i)*time.Millisecond), e.Timing(name), string(name))
	}

	assert.True(e.Timing("nosuch").IsZero())
}

func TestEntrySecure(t *testing.T) {
	testData := []struct {
		name     string
		expected bool
	}{
		{"https://example.com/api", true},
		{"HTTPS://example.com/api", true},
		{"http://example.com/api", false},
		{"wss://example.com/socket", false},
		{"https", false},
		{"", false},
	}

	for _, record := range testData {
		t.Run(record.name, func(t *testing.T) {
			e := &Entry{Name: record.name}
			assert.Equal(t, record.expected, e.Secure())
		})
	}
}

func TestEntryDuration(t *testing.T) {
	var (
		assert = assert.New(t)
		base   = time.Now()
	)

	assert.Zero((&Entry{}).Duration())
	assert.Zero((&Entry{FetchStart: base}).Duration())
	assert.Zero((&Entry{ResponseEnd: base}).Duration())
	assert.Equal(
		150*time.Millisecond,
		(&Entry{FetchStart: base, ResponseEnd: base.Add(150 * time.Millisecond)}).Duration(),
	)
}
