package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the API server.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec   // Requests served, by method, route and status
	HTTPDuration      *prometheus.HistogramVec // Request latency, by method and route
	EmployeeMutations *prometheus.CounterVec   // Successful writes, by operation
	ImageUploads      prometheus.Counter       // Profile images stored
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "directory_http_requests_total",
			Help: "Total number of HTTP requests served",
		}, []string{"method", "route", "status"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "directory_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		EmployeeMutations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "directory_employee_mutations_total",
			Help: "Employee writes that reached the store",
		}, []string{"operation"}), // operation: create, update, delete, toggle_status
		ImageUploads: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "directory_image_uploads_total",
			Help: "Total number of profile images stored",
		}),
	}
}
