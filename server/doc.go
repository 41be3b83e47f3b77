// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package server provides the configuration conventions, HTTP routing, and lifecycle for the
timing collector's HTTP server.
*/
package server
