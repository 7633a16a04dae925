// Package metrics holds the Prometheus collectors of the gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Backend call latency (seconds)
	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsview_upstream_call_duration_seconds",
			Help:    "Duration of calls to the news backend in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"op", "status"},
	)

	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"route", "status"},
	)

	// Problems worked around while decomposing articles
	ArticleDefects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsview_article_defects_total",
			Help: "Total number of malformed article structures recovered from",
		},
	)
)

// RecordUpstreamCall records one backend call. status is "ok" or "error".
func RecordUpstreamCall(op, status string, duration time.Duration) {
	UpstreamCallDuration.WithLabelValues(op, status).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(route, status).Observe(duration.Seconds())
}

// AddArticleDefects counts recovered article defects.
func AddArticleDefects(n int) {
	if n > 0 {
		ArticleDefects.Add(float64(n))
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
