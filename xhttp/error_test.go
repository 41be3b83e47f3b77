// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xhttp

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	var (
		assert    = assert.New(t)
		httpError = &Error{Code: 503, Header: http.Header{"Foo": []string{"Bar"}}, Text: `a "quoted" fubar`}
	)

	assert.Equal(503, httpError.StatusCode())
	assert.Equal(http.Header{"Foo": []string{"Bar"}}, httpError.Headers())
	assert.Equal(`a "quoted" fubar`, httpError.Error())

	json, err := httpError.MarshalJSON()
	assert.NoError(err)
	assert.JSONEq(`{"code": 503, "message": "a \"quoted\" fubar"}`, string(json))

	assert.Equal(&Error{Code: 404, Text: "no page abc"}, NewError(404, "no page %s", "abc"))
}

func TestWriteErrorf(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		testData = []struct {
			code         int
			format       string
			parameters   []interface{}
			expectedJSON string
		}{
			{
				http.StatusInternalServerError,
				"some message followed by an int: %d",
				[]interface{}{47},
				`{"code": 500, "message": "some message followed by an int: 47"}`,
			},
			{
				412,
				"this message has no parameters",
				nil,
				`{"code": 412, "message": "this message has no parameters"}`,
			},
		}
	)

	for _, record := range testData {
		var (
			response   = httptest.NewRecorder()
			count, err = WriteErrorf(response, record.code, record.format, record.parameters...)
		)

		assert.True(count > 0)
		assert.NoError(err)
		assert.Equal(record.code, response.Code)
		assert.Equal("application/json", response.Header().Get("Content-Type"))

		actualJSON, err := io.ReadAll(response.Body)
		require.NoError(err)
		assert.JSONEq(record.expectedJSON, string(actualJSON))
	}
}

func TestWriteErrorValue(t *testing.T) {
	var (
		assert   = assert.New(t)
		response = httptest.NewRecorder()
	)

	WriteErrorValue(response, http.StatusBadRequest, &Error{Code: 415, Header: http.Header{"Accept": {"application/json"}}, Text: "unsupported"})
	assert.Equal(415, response.Code)
	assert.Equal("application/json", response.Header().Get("Accept"))
	assert.JSONEq(`{"code": 415, "message": "unsupported"}`, response.Body.String())

	response = httptest.NewRecorder()
	WriteErrorValue(response, http.StatusBadRequest, errors.New("plain"))
	assert.Equal(http.StatusBadRequest, response.Code)
	assert.JSONEq(`{"code": 400, "message": "plain"}`, response.Body.String())
}
