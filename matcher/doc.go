// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package matcher correlates a span describing an HTTP request with the resource timing entries
a browser recorded for it.

Browsers record timings independently of any instrumentation, so the only link between a span
and its entry is the request URL and the span's time window.  When several entries fit, the
earliest is examined as a possible CORS preflight: a cross-origin request may be preceded by an
OPTIONS request to the same URL, and that request finishes before the real one begins.
*/
package matcher
