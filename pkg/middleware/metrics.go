package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はHTTPリクエスト数と処理時間を記録するGinミドルウェアを返す。
// pathラベルにはカーディナリティを抑えるためルートテンプレート（/notifications/:id）を使う。
func Metrics(requests *prometheus.CounterVec, duration *prometheus.HistogramVec) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		requests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
