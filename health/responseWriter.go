// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// Wrap returns a *health.ResponseWriter which wraps the given http.ResponseWriter
func Wrap(delegate http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: delegate,
	}
}

// ResponseWriter is a wrapper type for an http.ResponseWriter that exposes the status code
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// StatusCode returns the status written, which is http.StatusOK if the handler
// never called WriteHeader
func (r *ResponseWriter) StatusCode() int {
	if r.statusCode == 0 {
		return http.StatusOK
	}

	return r.statusCode
}

func (r *ResponseWriter) WriteHeader(statusCode int) {
	if r.statusCode == 0 {
		r.statusCode = statusCode
	}

	r.ResponseWriter.WriteHeader(statusCode)
}

// Hijack delegates to the wrapped ResponseWriter
func (r *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := r.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}

	return nil, nil, errors.New("Wrapped response does not implement http.Hijacker")
}

// Flush delegates to the wrapped ResponseWriter, if it supports flushing
func (r *ResponseWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Middleware counts each request the decorated handler serves.  Status codes below 400
// count as served, the rest as denied.
func (h *Health) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		h.SendEvent(Inc(TotalRequestsReceived, 1))

		wrapped := Wrap(response)
		next.ServeHTTP(wrapped, request)

		if wrapped.StatusCode() < 400 {
			h.SendEvent(Inc(TotalRequestsSuccessfullyServed, 1))
		} else {
			h.SendEvent(Inc(TotalRequestsDenied, 1))
		}
	})
}
