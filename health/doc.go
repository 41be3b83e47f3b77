// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package health provides the heartbeat endpoint for the timing collector.

A Health owns a map of named integer statistics.  All updates are funneled through a single
goroutine as HealthFuncs, and the current statistics, including memory utilization, are
served as JSON.
*/
package health
