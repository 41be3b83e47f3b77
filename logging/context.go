// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"

	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

type contextKey struct{}

// WithLogger adds the given Logger to the context so that it can be retrieved with GetLogger
func WithLogger(parent context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(parent, contextKey{}, logger)
}

// FromContext retrieves the logger associated with the context.  If no logger is present,
// fallback is returned.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}

	return fallback
}

// GetLogger retrieves the logger associated with the context.  If no logger is
// present in the context, sallust.Default() is returned instead.
func GetLogger(ctx context.Context) *zap.Logger {
	return FromContext(ctx, sallust.Default())
}
