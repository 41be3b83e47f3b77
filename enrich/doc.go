// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package enrich decorates spans with the network milestones and payload sizes of a matched
resource timing entry.

Each milestone becomes a span event named after the timing field, timestamped with the
entry's own value for that field rather than the time the event was added.  Body sizes
become span attributes.
*/
package enrich
