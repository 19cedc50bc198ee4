// Package metrics は通知サービスのPrometheusメトリクスを定義する。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal はHTTPリクエスト数。pathにはルートテンプレートを使う。
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration はHTTPリクエストの処理時間。
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DBQueryDuration はデータベースへの1往復にかかった時間。
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_db_query_duration_seconds",
			Help:    "Duration of database round trips",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"op", "result"},
	)
)

// ObserveQuery はDB操作の所要時間を結果ラベル付きで記録する。
func ObserveQuery(op string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DBQueryDuration.WithLabelValues(op, result).Observe(seconds)
}
