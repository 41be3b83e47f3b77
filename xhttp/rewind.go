// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xhttp

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

var errNotRewindable = errors.New("That request is not rewindable")

// NewRewind extracts all remaining bytes from an io.Reader, then uses NewRewindBytes
// to produce a body and a get body function.  If r is an io.Closer, it is closed once
// drained.  If any error occurred during reading, that error is returned and the other
// return values will be nil.
func NewRewind(r io.Reader) (io.ReadCloser, func() (io.ReadCloser, error), error) {
	b, err := io.ReadAll(r)
	if c, ok := r.(io.Closer); ok {
		c.Close()
	}

	if err != nil {
		return nil, nil, err
	}

	body, getBody := NewRewindBytes(b)
	return body, getBody, nil
}

// NewRewindBytes produces both an io.ReadCloser that returns the given bytes
// and a function that produces a new io.ReadCloser that returns those same bytes.
// Each reader is independent of the others, so a body obtained from the get body function
// can be consumed while the original is still in use.
//
// Both return values from this function are appropriate for http.Request.Body and
// http.Request.GetBody, respectively.
func NewRewindBytes(b []byte) (io.ReadCloser, func() (io.ReadCloser, error)) {
	return io.NopCloser(bytes.NewReader(b)),
		func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		}
}

// EnsureRewindable configures the given request's contents to be restreamed in the event
// of a redirect or other arbitrary code that must resubmit or inspect a request.  If this
// function is successful, Rewind can be used to rewind the request and GetBody can be used
// to obtain an independent copy of the body.
//
// If a GetBody function is already present on the request, this function does nothing
// as the given request is already rewindable.  Additionally, if there is no Body on the request,
// this function does nothing as there's no body to rewind.
func EnsureRewindable(r *http.Request) error {
	if r.GetBody != nil || r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	body, getBody, err := NewRewind(r.Body)
	if err != nil {
		return err
	}

	r.Body = body
	r.GetBody = getBody
	return nil
}

// Rewind prepares a request body to be replayed.  If a GetBody function is present,
// that function is invoked.  An error is returned if this function could not rewind the request.
func Rewind(r *http.Request) error {
	if r.GetBody != nil {
		b, err := r.GetBody()
		if err != nil {
			return err
		}

		r.Body = b
		return nil
	}

	if r.Body == nil || r.Body == http.NoBody {
		// this request has no body, so it is always "rewound"
		return nil
	}

	return errNotRewindable
}
