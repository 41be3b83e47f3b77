// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package urlx

import (
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverNormalize(t *testing.T) {
	r := NewResolver("https://App.Example.com:443/app/page.html?x=1")

	testData := []struct {
		raw      string
		expected string
	}{
		{"/api/items", "https://app.example.com/api/items"},
		{"items?id=3", "https://app.example.com/app/items?id=3"},
		{"../up", "https://app.example.com/up"},
		{"//cdn.example.com/lib.js", "https://cdn.example.com/lib.js"},
		{"https://api.example.com", "https://api.example.com/"},
		{"HTTP://API.example.com:80/x", "http://api.example.com/x"},
		{"http://api.example.com:8080/x", "http://api.example.com:8080/x"},
		{"  /trimmed  ", "https://app.example.com/trimmed"},
		{"%zz", "%zz"},
	}

	for _, record := range testData {
		t.Run(record.raw, func(t *testing.T) {
			assert.Equal(t, record.expected, r.Normalize(record.raw))
		})
	}
}

func testResolverBadBase(t *testing.T, base string) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		r       = NewResolver(base)
	)

	u, err := r.Base()
	assert.Nil(u)
	assert.Error(err)
	assert.Empty(r.Origin())

	// absolute URLs still resolve
	assert.Equal("https://example.com/a", r.Normalize("https://example.com/a"))
	parsed, err := r.Parse("https://EXAMPLE.com/a")
	require.NoError(err)
	assert.Equal("example.com", parsed.Host)

	// relative ones cannot
	assert.Equal("/a", r.Normalize("/a"))
	_, err = r.Parse("/a")
	assert.Error(err)
	assert.False(r.SameOrigin("/a"))
}

func TestResolverBadBase(t *testing.T) {
	t.Run("Relative", func(t *testing.T) { testResolverBadBase(t, "/relative/only") })
	t.Run("Empty", func(t *testing.T) { testResolverBadBase(t, "") })
	t.Run("Unparseable", func(t *testing.T) { testResolverBadBase(t, "http://[::1") })
}

func TestResolverOrigin(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("https://app.example.com", NewResolver("https://app.example.com/a/b").Origin())
	assert.Equal("http://localhost:3000", NewResolver("http://localhost:3000/").Origin())
	assert.Equal("https://[::1]", NewResolver("https://[::1]:443/").Origin())
}

func TestResolverSameOrigin(t *testing.T) {
	var (
		assert = assert.New(t)
		r      = NewResolver("https://app.example.com/index.html")
	)

	assert.True(r.SameOrigin("/api"))
	assert.True(r.SameOrigin("https://app.example.com:443/api"))
	assert.False(r.SameOrigin("http://app.example.com/api"))
	assert.False(r.SameOrigin("https://api.example.com/api"))
	assert.False(r.SameOrigin("https://app.example.com:8443/api"))
}

func TestResolverConcurrentInit(t *testing.T) {
	var (
		r  = NewResolver("https://app.example.com/")
		wg sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "https://app.example.com/x", r.Normalize("x"))
		}()
	}

	wg.Wait()
}

func TestOrigin(t *testing.T) {
	assert := assert.New(t)

	assert.Empty(Origin(nil))
	assert.Empty(Origin(&url.URL{Path: "/relative"}))
	assert.Empty(Origin(&url.URL{Scheme: "mailto", Opaque: "someone@example.com"}))
	assert.Equal("wss://socket.example.com", Origin(&url.URL{Scheme: "WSS", Host: "Socket.example.com:443"}))
}
