// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestContext(t *testing.T) {
	var (
		assert = assert.New(t)
		logger = zaptest.NewLogger(t)
		ctx    = WithLogger(context.Background(), logger)
	)

	assert.True(logger == GetLogger(ctx))
	assert.True(logger == FromContext(ctx, zap.NewNop()))
	assert.True(sallust.Default() == GetLogger(context.Background()))

	fallback := zap.NewNop()
	assert.True(fallback == FromContext(context.Background(), fallback))
	assert.True(fallback == FromContext(WithLogger(context.Background(), nil), fallback))
}

type contextual map[string]interface{}

func (c contextual) Metadata() map[string]interface{} { return c }

func TestEnrich(t *testing.T) {
	var (
		assert     = assert.New(t)
		core, logs = observer.New(zap.DebugLevel)
		logger     = zap.New(core)
	)

	assert.True(logger == Enrich(logger))
	assert.True(logger == Enrich(logger, 123, "nothing"))

	Enrich(
		logger,
		contextual{"pageId": "abc"},
		map[string]interface{}{"count": 2},
		map[string]string{"b": "2", "a": "1"},
	).Info("enriched")

	require.Equal(t, 1, logs.Len())
	context := logs.All()[0].ContextMap()
	assert.Equal("abc", context["pageId"])
	assert.Equal(int64(2), context["count"])
	assert.Equal("1", context["a"])
	assert.Equal("2", context["b"])
}

func TestNew(t *testing.T) {
	t.Run("NoSection", func(t *testing.T) {
		logger, err := New(viper.New())
		assert.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("NilViper", func(t *testing.T) {
		logger, err := New(nil)
		assert.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("Configured", func(t *testing.T) {
		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(`
log:
  level: debug
  encoding: json
  outputPaths: ["stdout"]
  errorOutputPaths: ["stderr"]
`)))

		c, err := FromViper(Sub(v))
		require.NoError(t, err)
		assert.Equal(t, []string{"stdout"}, c.OutputPaths)

		logger, err := New(v)
		assert.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("NilSub", func(t *testing.T) {
		assert.Nil(t, Sub(nil))
		c, err := FromViper(nil)
		assert.NoError(t, err)
		assert.Empty(t, c.OutputPaths)
	})
}

func testPopulateLogger(t *testing.T, base *zap.Logger) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		response = httptest.NewRecorder()
		request  = httptest.NewRequest("GET", "/v1/pages", nil)

		nextCalled = false
		next       = http.HandlerFunc(func(rw http.ResponseWriter, request *http.Request) {
			nextCalled = true
			assert.Equal(response, rw)
			assert.NotNil(GetLogger(request.Context()))
			GetLogger(request.Context()).Info("handled")
		})

		constructor = PopulateLogger(base)
	)

	require.NotNil(constructor)

	decorated := constructor(next)
	require.NotNil(decorated)

	decorated.ServeHTTP(response, request)
	assert.True(nextCalled)
}

func TestPopulateLogger(t *testing.T) {
	t.Run("NilBase", func(t *testing.T) {
		testPopulateLogger(t, nil)
	})

	t.Run("CustomBase", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		testPopulateLogger(t, zap.New(core))

		require.Equal(t, 1, logs.Len())
		context := logs.All()[0].ContextMap()
		assert.Equal(t, "GET", context[RequestMethodKey])
		assert.Equal(t, "/v1/pages", context[RequestURIKey])
		assert.Equal(t, "HTTP/1.1", context[RequestProtoKey])
		assert.Equal(t, "192.0.2.1:1234", context[RemoteAddrKey])
	})
}
