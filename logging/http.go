// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"net/http"

	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	RequestProtoKey  = "requestProto"
	RequestMethodKey = "requestMethod"
	RequestURIKey    = "requestURI"
	RemoteAddrKey    = "remoteAddr"
)

// PopulateLogger produces an Alice-style decorator that emits a decorated logger into the request
// context.  The supplied base logger is decorated for each request with information about the
// request.  Downstream code can then use this logger via GetLogger(request.Context()).
//
// If the base parameter is nil, the default logger is decorated for each request.
func PopulateLogger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = sallust.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, request *http.Request) {
			ctx := WithLogger(
				request.Context(),
				base.With(
					zap.String(RequestProtoKey, request.Proto),
					zap.String(RequestMethodKey, request.Method),
					zap.String(RequestURIKey, request.RequestURI),
					zap.String(RemoteAddrKey, request.RemoteAddr),
				),
			)

			next.ServeHTTP(rw, request.WithContext(ctx))
		})
	}
}
