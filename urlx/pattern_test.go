// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package urlx

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternMatches(t *testing.T) {
	var (
		assert = assert.New(t)
		exact  = Exact("https://api.example.com/items")
		re     = Regexp(regexp.MustCompile(`^https://[a-z]+\.example\.com/`))
	)

	assert.True(exact.Matches("https://api.example.com/items"))
	assert.False(exact.Matches("https://api.example.com/items/1"))
	assert.Equal("https://api.example.com/items", exact.String())

	assert.True(re.Matches("https://api.example.com/items/1"))
	assert.False(re.Matches("https://api.other.com/"))
	assert.Equal(`/^https://[a-z]+\.example\.com//`, re.String())
}

func TestParsePattern(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	p, err := ParsePattern("/\\.example\\.com/")
	require.NoError(err)
	assert.True(p.Matches("https://api.example.com/"))
	assert.False(p.Matches("https://api.example.org/"))

	p, err = ParsePattern("https://api.example.com/")
	require.NoError(err)
	assert.True(p.Matches("https://api.example.com/"))
	assert.False(p.Matches("https://api.example.com/x"))

	// a lone slash or pair of slashes is a literal value
	p, err = ParsePattern("//")
	require.NoError(err)
	assert.True(p.Matches("//"))

	_, err = ParsePattern("/[/")
	assert.Error(err)
}

func TestParsePatterns(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	patterns, err := ParsePatterns()
	require.NoError(err)
	assert.Empty(patterns)

	patterns, err = ParsePatterns("https://a.example.com/", "/b\\.example/")
	require.NoError(err)
	assert.Len(patterns, 2)

	patterns, err = ParsePatterns("https://a.example.com/", "/(/")
	assert.Error(err)
	assert.Nil(patterns)
}

func TestMatchesAny(t *testing.T) {
	var (
		assert   = assert.New(t)
		patterns = []Pattern{
			Exact("https://a.example.com/health"),
			Regexp(regexp.MustCompile(`/metrics$`)),
		}
	)

	assert.False(MatchesAny("https://a.example.com/health", nil))
	assert.True(MatchesAny("https://a.example.com/health", patterns))
	assert.True(MatchesAny("https://b.example.com/metrics", patterns))
	assert.False(MatchesAny("https://b.example.com/metrics/1", patterns))
}

func TestShouldPropagateTraceHeaders(t *testing.T) {
	var (
		r     = NewResolver("https://app.example.com/index.html")
		allow = []Pattern{
			Exact("https://partner.example.org/api"),
			Regexp(regexp.MustCompile(`^https://[a-z]+\.example\.com/`)),
		}
	)

	testData := []struct {
		url      string
		allow    []Pattern
		expected bool
	}{
		{"/api/items", nil, true},
		{"https://app.example.com/api", nil, true},
		{"https://api.example.com/items", nil, false},
		{"https://api.example.com/items", allow, true},
		{"https://partner.example.org/api", allow, true},
		{"https://partner.example.org/api/v2", allow, false},
		{"http://app.example.com/api", nil, false},
	}

	for _, record := range testData {
		t.Run(record.url, func(t *testing.T) {
			assert.Equal(t, record.expected, ShouldPropagateTraceHeaders(r, record.url, record.allow))
		})
	}
}
