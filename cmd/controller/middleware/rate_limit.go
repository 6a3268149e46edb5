package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/ratelimit"
	"llm-controller/cmd/controller/services"
	"llm-controller/cmd/controller/trace"
	"llm-controller/cmd/internal/logger"
)

// RateLimit 은 클라이언트 IP 단위로 요청을 허용하거나 429 로 거절한다.
// 거절된 요청은 handler 에 도달하지 않으므로 backend 호출도 없다.
// limiter 저장소 장애 시에는 요청을 통과시키고 에러만 남긴다.
func RateLimit(limiter ratelimit.Limiter, counters *services.Counters) gin.HandlerFunc {
	return func(c *gin.Context) {
		counters.RecordRequest()
		key := c.ClientIP()

		decision, err := limiter.Admit(c.Request.Context(), key)
		if err != nil {
			logger.ErrorWithFields("rate limiter unavailable, allowing request", trace.Fields(c.Request.Context(), logger.Fields{
				"stage":     services.StageRateLimit,
				"client_ip": key,
				"error":     err.Error(),
			}))
			c.Next()
			return
		}

		if decision.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(max(decision.Remaining, 0)))
		}

		if !decision.Allowed {
			counters.RecordRateLimited()
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(retryAfter, 1)))

			logger.WarnWithFields("rate limit exceeded", trace.Fields(c.Request.Context(), logger.Fields{
				"stage":     services.StageRateLimit,
				"client_ip": key,
			}))
			rejected := services.RateLimitError()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(rejected.ErrorCode, rejected.Detail, trace.RequestIDFromContext(c.Request.Context())))
			return
		}

		c.Next()
	}
}
