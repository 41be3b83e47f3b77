// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package bodylength

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func TestClassify(t *testing.T) {
	var (
		request = mustNewRequest()
		node    = &html.Node{Type: html.DocumentNode}
		reader  = strings.NewReader("stream")
		blob    = &Blob{Size: 12, Type: "image/png"}
		form    = []FormField{{Name: "a", Value: "b"}}
		values  = url.Values{"a": {"b"}}
	)

	testData := []struct {
		name     string
		value    interface{}
		expected Body
	}{
		{"Nil", nil, NoBody{}},
		{"HTTPNoBody", http.NoBody, NoBody{}},
		{"String", "hello", String("hello")},
		{"Bytes", []byte{1, 2}, Bytes{1, 2}},
		{"Blob", blob, Blob{Size: 12, Type: "image/png"}},
		{"NilBlob", (*Blob)(nil), NoBody{}},
		{"Form", form, Form(form)},
		{"Values", values, Values(values)},
		{"Document", node, Document{Node: node}},
		{"NilDocument", (*html.Node)(nil), NoBody{}},
		{"Request", request, Request{Request: request}},
		{"Stream", reader, Stream{Reader: reader}},
		{"Body", String("already"), String("already")},
		{"Unknown", 42, Unknown{Value: 42}},
	}

	for _, record := range testData {
		t.Run(record.name, func(t *testing.T) {
			actual := Classify(record.value)
			assert.Equal(t, record.expected, actual)
			assert.Equal(t, record.expected.Kind(), actual.Kind())
		})
	}
}

// mustNewRequest produces a POST with a small body, panicking on error
func mustNewRequest() *http.Request {
	r, err := http.NewRequest(http.MethodPost, "https://api.example.com/", bytes.NewBufferString("payload"))
	if err != nil {
		panic(err)
	}

	return r
}

func TestFormFieldLength(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(int64(9), FormField{Name: "name", Value: "value"}.length())
	assert.Equal(int64(1004), FormField{Name: "file", Value: "ignored", File: &Blob{Size: 1000}}.length())
}
