package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/redmac135/banshee-training/pkg/metrics"
)

// Metrics Prometheus 请求计数与耗时；m 为 nil 时不记录
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
