// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package metrics preregisters Prometheus metrics from descriptors and hands them out as
go-kit metrics.  The Measures type bundles the metrics this service records.
*/
package metrics
