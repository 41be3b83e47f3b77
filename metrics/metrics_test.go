// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{Pedantic: true, DisableGoCollector: true, DisableProcessCollector: true}
}

func TestNewCollector(t *testing.T) {
	testData := []struct {
		metric   Metric
		expected interface{}
	}{
		{Metric{Name: "c", Type: CounterType}, new(prometheus.CounterVec)},
		{Metric{Name: "g", Type: GaugeType, Help: "a gauge"}, new(prometheus.GaugeVec)},
		{Metric{Name: "h", Type: HistogramType, Buckets: []float64{1, 2}}, new(prometheus.HistogramVec)},
	}

	for _, record := range testData {
		t.Run(record.metric.Name, func(t *testing.T) {
			c, err := NewCollector("ns", "sub", record.metric)
			require.NoError(t, err)
			assert.IsType(t, record.expected, c)
		})
	}

	t.Run("Errors", func(t *testing.T) {
		_, err := NewCollector("", "", Metric{Type: CounterType})
		assert.Equal(t, ErrMissingName, err)

		_, err = NewCollector("", "", Metric{Name: "s", Type: "summary"})
		assert.Error(t, err)
	})
}

func TestNewRegistry(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	r, err := NewRegistry(testOptions(), Measured)
	require.NoError(err)

	m := NewMeasures(r)
	m.MatchOutcomes.With(OutcomeLabel, "single").Add(1)
	m.MatchOutcomes.With(OutcomeLabel, "single").Add(1)
	m.EntriesReceived.Add(3)
	m.PageSessions.Set(2)
	m.BodyLengthEstimates.With(KindLabel, "string", OutcomeLabel, "immediate").Add(1)

	assert.Equal(2.0, testutil.ToFloat64(r.collectors[MatchCounter].(*prometheus.CounterVec).WithLabelValues("single")))
	assert.Equal(3.0, testutil.ToFloat64(r.collectors[EntriesReceivedCounter].(*prometheus.CounterVec).WithLabelValues()))
	assert.Equal(2.0, testutil.ToFloat64(r.collectors[PageSessionsGauge].(*prometheus.GaugeVec).WithLabelValues()))

	response := httptest.NewRecorder()
	r.Handler().ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(http.StatusOK, response.Code)
	assert.Contains(response.Body.String(), MatchCounter)
	assert.Contains(response.Body.String(), BodyLengthEstimatesCounter)

	assert.Panics(func() { r.NewCounter(PageSessionsGauge) })
	assert.Panics(func() { r.NewGauge("nosuch") })
	assert.Panics(func() { r.NewHistogram(MatchCounter) })
}

func TestNewRegistryErrors(t *testing.T) {
	_, err := NewRegistry(testOptions(), Measured, Measured)
	assert.Error(t, err)

	_, err = NewRegistry(testOptions(), func() []Metric { return []Metric{{Name: "bad", Type: "nosuch"}} })
	assert.Error(t, err)
}

func TestNewRegistryCollectors(t *testing.T) {
	r, err := NewRegistry(Options{Namespace: "timing"})
	require.NoError(t, err)

	families, err := r.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewDiscardMeasures(t *testing.T) {
	m := NewDiscardMeasures()
	assert.NotPanics(t, func() {
		m.MatchOutcomes.With(OutcomeLabel, "none").Add(1)
		m.PageSessions.Add(1)
	})
}
