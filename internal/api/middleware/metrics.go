package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ad_reward_server/internal/pkg/metrics"
)

// Metrics 记录请求计数和耗时，path 取路由模板
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
