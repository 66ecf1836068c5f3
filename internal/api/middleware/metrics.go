package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classhub/backend/pkg/metrics"
)

// Metrics Prometheus 指标采集中间件
// 使用路由模板（c.FullPath）作为 path 标签，避免路径参数导致标签爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
