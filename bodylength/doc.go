// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package bodylength measures outgoing request payloads without consuming them.

A payload is described by a Body, a closed set of variants produced directly or by
Classify.  Most variants have a length that is known immediately.  Streams and
*http.Request bodies are measured by reading an independent copy in the background,
so their Length resolves later.
*/
package bodylength
