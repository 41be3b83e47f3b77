// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package ingest receives page reports from browsers and correlates the traced requests they
describe with the page's resource timing entries.

Each page has a Session holding its recent entries and the set of entries already attributed
to a span.  For every reported request, the Correlator records a client span, matches it
against the session's entries, and enriches it with the matched timings.
*/
package ingest
