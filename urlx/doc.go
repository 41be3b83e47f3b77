// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package urlx resolves and compares request URLs the way a browser does, and decides which
cross-origin requests may carry trace context headers.
*/
package urlx
