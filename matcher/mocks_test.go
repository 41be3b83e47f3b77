// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"github.com/go-kit/kit/metrics"
	"github.com/stretchr/testify/mock"
)

type mockCounter struct {
	mock.Mock
}

func (m *mockCounter) With(labelValues ...string) metrics.Counter {
	return m.Called(labelValues).Get(0).(metrics.Counter)
}

func (m *mockCounter) Add(delta float64) {
	m.Called(delta)
}
