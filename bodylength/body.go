// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package bodylength

import (
	"io"
	"net/http"
	"net/url"

	"golang.org/x/net/html"
)

// Kind names a Body variant.  Kinds are used as metric label values.
type Kind string

const (
	KindNone     Kind = "none"
	KindStream   Kind = "stream"
	KindRequest  Kind = "request"
	KindString   Kind = "string"
	KindBytes    Kind = "bytes"
	KindBlob     Kind = "blob"
	KindForm     Kind = "form"
	KindValues   Kind = "values"
	KindDocument Kind = "document"
	KindUnknown  Kind = "unknown"
)

// Body is an outgoing request payload.  The set of implementations is closed; use Classify
// to obtain a Body from an arbitrary value.
type Body interface {
	Kind() Kind
	body()
}

// NoBody is the absence of a payload.  It has no length.
type NoBody struct{}

func (NoBody) Kind() Kind { return KindNone }
func (NoBody) body()      {}

// String is a text payload, measured in bytes of its UTF-8 encoding
type String string

func (String) Kind() Kind { return KindString }
func (String) body()      {}

// Bytes is a raw binary payload
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }
func (Bytes) body()      {}

// Blob is an opaque payload whose size is declared up front, such as a file
type Blob struct {
	Size int64
	Type string
}

func (Blob) Kind() Kind { return KindBlob }
func (Blob) body()      {}

// FormField is a single multipart form entry.  When File is set, Value is ignored and the
// file's declared size is used.
type FormField struct {
	Name  string
	Value string
	File  *Blob
}

func (ff FormField) length() int64 {
	n := int64(len(ff.Name))
	if ff.File != nil {
		return n + ff.File.Size
	}

	return n + int64(len(ff.Value))
}

// Form is a multipart form payload
type Form []FormField

func (Form) Kind() Kind { return KindForm }
func (Form) body()      {}

// Values is a URL-encoded form payload
type Values url.Values

func (Values) Kind() Kind { return KindValues }
func (Values) body()      {}

// Document is a markup payload, measured by its rendered form
type Document struct {
	Node *html.Node
}

func (Document) Kind() Kind { return KindDocument }
func (Document) body()      {}

// Stream is a payload that can only be read once
type Stream struct {
	Reader io.Reader
}

func (Stream) Kind() Kind { return KindStream }
func (Stream) body()      {}

// Request is a payload carried by an outgoing *http.Request
type Request struct {
	Request *http.Request
}

func (Request) Kind() Kind { return KindRequest }
func (Request) body()      {}

// Unknown wraps a value that no other variant describes
type Unknown struct {
	Value interface{}
}

func (Unknown) Kind() Kind { return KindUnknown }
func (Unknown) body()      {}

// Classify inspects an untyped payload and returns the Body variant describing it.
// A value that is already a Body is returned as is.
func Classify(v interface{}) Body {
	if v == http.NoBody {
		return NoBody{}
	}

	switch b := v.(type) {
	case nil:
		return NoBody{}
	case Body:
		return b
	case string:
		return String(b)
	case []byte:
		return Bytes(b)
	case *Blob:
		if b == nil {
			return NoBody{}
		}

		return *b
	case []FormField:
		return Form(b)
	case url.Values:
		return Values(b)
	case *html.Node:
		if b == nil {
			return NoBody{}
		}

		return Document{Node: b}
	case *http.Request:
		if b == nil {
			return NoBody{}
		}

		return Request{Request: b}
	case io.Reader:
		return Stream{Reader: b}
	default:
		return Unknown{Value: v}
	}
}
