// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package tracing builds the OpenTelemetry TracerProvider from configuration.
*/
package tracing
