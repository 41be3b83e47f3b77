// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xhttp

import (
	"context"
	"net/http"
	"net/textproto"
	"time"

	"github.com/xmidt-org/resourcetiming/logging"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Constructor is an Alice-style decorator
type Constructor func(http.Handler) http.Handler

func undecorated(next http.Handler) http.Handler {
	return next
}

// canonicalHeader rekeys a header, which matters for headers read from configuration
// where keys are often lowercased
func canonicalHeader(h http.Header) http.Header {
	canonical := make(http.Header, len(h))
	for k, v := range h {
		canonical[textproto.CanonicalMIMEHeaderKey(k)] = v
	}

	return canonical
}

// StaticHeaders emits a fixed set of headers into every response.  An empty set of
// headers does no decoration.
func StaticHeaders(extra http.Header) Constructor {
	if len(extra) == 0 {
		return undecorated
	}

	extra = canonicalHeader(extra)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			header := response.Header()
			for k, v := range extra {
				header[k] = v
			}

			next.ServeHTTP(response, request)
		})
	}
}

// Preflight answers CORS preflight requests with 204 and the given headers.  Browsers send
// these before cross-origin POSTs of JSON, which is how most pages deliver reports.
type Preflight struct {
	Header http.Header
}

func (p Preflight) ServeHTTP(response http.ResponseWriter, _ *http.Request) {
	header := response.Header()
	for k, v := range canonicalHeader(p.Header) {
		header[k] = v
	}

	response.WriteHeader(http.StatusNoContent)
}

// Busy limits the number of concurrent transactions through the decorated handler.  A request
// waits for a slot until its context is canceled, and then gets http.StatusServiceUnavailable.
// A nonpositive limit does no decoration.
func Busy(maxTransactions int64, logger *zap.Logger) Constructor {
	if maxTransactions < 1 {
		return undecorated
	}

	if logger == nil {
		logger = sallust.Default()
	}

	s := semaphore.NewWeighted(maxTransactions)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			if err := s.Acquire(ctx, 1); err != nil {
				logging.FromContext(ctx, logger).Error("server busy", zap.Error(err))
				WriteErrorf(response, http.StatusServiceUnavailable, "Server busy")
				return
			}

			defer s.Release(1)
			next.ServeHTTP(response, request)
		})
	}
}

// Timeout applies a timeout to request contexts.  Decorated handlers are responsible for
// honoring it.  A nonpositive timeout does no decoration.
func Timeout(timeout time.Duration) Constructor {
	if timeout <= 0 {
		return undecorated
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			ctx, cancel := context.WithTimeout(request.Context(), timeout)
			defer cancel()

			next.ServeHTTP(response, request.WithContext(ctx))
		})
	}
}
