// Package metrics exposes the Prometheus instrumentation for the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casaloop_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casaloop_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	paymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casaloop_payment_verifications_total",
			Help: "Payment verification attempts by outcome.",
		},
		[]string{"outcome"},
	)

	paymentVerifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "casaloop_payment_verification_duration_seconds",
			Help:    "End-to-end payment verification latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casaloop_notifications_sent_total",
			Help: "Notifications written by type.",
		},
		[]string{"type"},
	)
)

// Middleware records request counts and latencies per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// ObservePaymentVerification records the outcome and latency of one
// verification attempt.
func ObservePaymentVerification(d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	paymentVerifications.WithLabelValues(outcome).Inc()
	paymentVerifyDuration.Observe(d.Seconds())
}

// CountNotification records one notification write.
func CountNotification(notifType string) {
	notificationsSent.WithLabelValues(notifType).Inc()
}
