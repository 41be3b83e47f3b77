// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package logging carries zap loggers through contexts and HTTP requests, and builds the
application logger from configuration.
*/
package logging
