// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package perf models the resource timing records a browser collects for each network request,
along with a bounded buffer of those records and the wire decoding used when a page reports them.

Timestamps on an Entry are absolute.  Browsers report them in milliseconds relative to the page's
time origin; DecodeEntry performs that conversion.  A zero time.Time means the browser did not
report the milestone.
*/
package perf
