// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"sort"

	"go.uber.org/zap"
)

// Contextual describes an object which can describe itself with metadata for logging.
// Implementing this interface allows code to carry logging context data across API
// boundaries without compromising encapsulation.
type Contextual interface {
	Metadata() map[string]interface{}
}

// Enrich adds contextual information to a logger.  The given set of objects are examined to see
// if they contain any metadata.  Objects that do not contain metadata are simply ignored.
//
// An object contains metadata if it implements Contextual, is a map[string]interface{}, or is a
// map[string]string.  Keys are emitted in sorted order.
func Enrich(logger *zap.Logger, objects ...interface{}) *zap.Logger {
	var fields []zap.Field
	for _, e := range objects {
		switch m := e.(type) {
		case Contextual:
			fields = appendAny(fields, m.Metadata())

		case map[string]interface{}:
			fields = appendAny(fields, m)

		case map[string]string:
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}

			sort.Strings(keys)
			for _, k := range keys {
				fields = append(fields, zap.String(k, m[k]))
			}
		}
	}

	if len(fields) > 0 {
		return logger.With(fields...)
	}

	return logger
}

func appendAny(fields []zap.Field, m map[string]interface{}) []zap.Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, m[k]))
	}

	return fields
}
