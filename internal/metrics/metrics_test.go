package metrics_test

import (
	"testing"

	"employee-directory/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	m := metrics.NewMetrics(reg)
	m.EmployeeMutations.WithLabelValues("create").Inc()
	m.ImageUploads.Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(m.EmployeeMutations.WithLabelValues("create")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ImageUploads), 0)
}

func TestNewMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = metrics.NewMetrics(reg)

	assert.Panics(t, func() { metrics.NewMetrics(reg) })
}
