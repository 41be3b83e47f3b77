// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net"
	"testing"
	"time"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type acceptResult struct {
	c   net.Conn
	err error
}

func accept(l net.Listener) <-chan acceptResult {
	results := make(chan acceptResult, 1)
	go func() {
		c, err := l.Accept()
		results <- acceptResult{c, err}
	}()

	return results
}

func testListenerUnlimited(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	next, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	l := NewListener(next, ListenerOptions{})
	defer l.Close()

	results := accept(l)
	client, err := net.Dial("tcp", l.Addr().String())
	require.NoError(err)
	defer client.Close()

	r := <-results
	require.NoError(r.err)
	assert.NoError(r.c.Close())
	assert.NoError(r.c.Close())
}

func testListenerLimited(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		rejected = generic.NewCounter("rejected")
		active   = generic.NewGauge("active")
	)

	next, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	l := NewListener(next, ListenerOptions{
		MaxConnections: 1,
		Rejected:       rejected,
		Active:         active,
		Logger:         zaptest.NewLogger(t),
	})

	defer l.Close()

	results := accept(l)
	first, err := net.Dial("tcp", l.Addr().String())
	require.NoError(err)
	defer first.Close()

	r := <-results
	require.NoError(r.err)
	assert.Equal(1.0, active.Value())

	// the second connection is rejected while the first holds the only slot
	results = accept(l)
	second, err := net.Dial("tcp", l.Addr().String())
	require.NoError(err)
	defer second.Close()

	require.Eventually(func() bool { return rejected.Value() == 1.0 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(r.c.Close())
	assert.Equal(0.0, active.Value())

	third, err := net.Dial("tcp", l.Addr().String())
	require.NoError(err)
	defer third.Close()

	select {
	case r = <-results:
		require.NoError(r.err)
		assert.Equal(1.0, active.Value())
		r.c.Close()
	case <-time.After(5 * time.Second):
		assert.Fail("no connection was accepted after a slot was released")
	}
}

func testListenerClosed(t *testing.T) {
	next, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	l := NewListener(next, ListenerOptions{Logger: zaptest.NewLogger(t)})
	require.NoError(t, l.Close())

	c, err := l.Accept()
	assert.Nil(t, c)
	assert.ErrorIs(t, err, net.ErrClosed)
}

func TestListener(t *testing.T) {
	t.Run("Unlimited", testListenerUnlimited)
	t.Run("Limited", testListenerLimited)
	t.Run("Closed", testListenerClosed)
}
