package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"llm-controller/cmd/internal/logger"
)

// RequestLoggingMiddleware 는 요청 진입부터 응답까지 걸린 시간을 debug 레벨로 남긴다.
// 스트리밍 응답은 마지막 조각을 보낸 시점까지 포함된다.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Log.Debugf(
			"api_request method=%s path=%s status=%d bytes=%d duration_ms=%d",
			method,
			path,
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start).Milliseconds(),
		)
	}
}
