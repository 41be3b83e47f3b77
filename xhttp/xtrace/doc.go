// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xtrace provides an http.RoundTripper that records a client span for each outgoing
request.
*/
package xtrace
