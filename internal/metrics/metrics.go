package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "carshare_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	rentalOps            *prometheus.CounterVec
	paymentOps           *prometheus.CounterVec
	providerLatency      *prometheus.HistogramVec
	notificationFailures *prometheus.CounterVec
	jobRuns              *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpLatency          *prometheus.HistogramVec
)

// Init registers the service metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		rentalOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rental_operations_total",
				Help: "Rental operations by operation and result",
			},
			[]string{"operation", "result"},
		)
		paymentOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_operations_total",
				Help: "Payment operations by operation and result",
			},
			[]string{"operation", "result"},
		)
		providerLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payment_provider_latency_seconds",
				Help:    "Payment provider call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		notificationFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notification_failures_total",
				Help: "Notifications that could not be delivered",
			},
			[]string{"event"},
		)
		jobRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "scheduled_job_runs_total",
				Help: "Scheduled job runs by job and result",
			},
			[]string{"job", "result"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)

		prometheus.MustRegister(
			rentalOps,
			paymentOps,
			providerLatency,
			notificationFailures,
			jobRuns,
			httpRequests,
			httpLatency,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// IncRentalOp counts a rental operation.
func IncRentalOp(operation, result string) {
	if rentalOps != nil {
		rentalOps.WithLabelValues(operation, result).Inc()
	}
}

// IncPaymentOp counts a payment operation.
func IncPaymentOp(operation, result string) {
	if paymentOps != nil {
		paymentOps.WithLabelValues(operation, result).Inc()
	}
}

// ObserveProvider records the latency of a payment provider call.
func ObserveProvider(result string, duration time.Duration) {
	if providerLatency != nil {
		providerLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncNotificationFailure counts a notification that was not delivered.
func IncNotificationFailure(event string) {
	if notificationFailures != nil {
		notificationFailures.WithLabelValues(event).Inc()
	}
}

// IncJobRun counts a scheduled job run.
func IncJobRun(job, result string) {
	if jobRuns != nil {
		jobRuns.WithLabelValues(job, result).Inc()
	}
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route, code string, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, code).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}
