package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/services"
	"llm-controller/cmd/controller/trace"
	"llm-controller/cmd/internal/logger"
)

const maxBodyLog = 1024

// MaxRequestBody 는 요청 바디 상한이다. 메시지 100개 × 10000자(UTF-8 최대 4바이트)를 담을 수 있다.
const MaxRequestBody = 8 << 20

// RequestTrace는 모든 inbound HTTP 요청에 대해 Request ID와 Span ID를 보장하고,
// 이를 컨텍스트/헤더에 저장한 뒤 완료 로그에 포함시킨다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		requestID := req.Header.Get(trace.HeaderRequestID)
		if requestID == "" {
			requestID = trace.GenerateID()
		}

		// inbound 로그는 span_id=0, backend 호출은 1,2,3,... 로 증가한다.
		ctxWithTrace := trace.WithRequestAndSpan(req.Context(), requestID, 0)
		c.Request = req.WithContext(ctxWithTrace)
		req = c.Request

		currentSpan := trace.CurrentSpanID(ctxWithTrace)
		c.Request.Header.Set(trace.HeaderRequestID, requestID)
		c.Request.Header.Set(trace.HeaderSpanID, currentSpan)
		c.Writer.Header().Set(trace.HeaderRequestID, requestID)
		c.Writer.Header().Set(trace.HeaderSpanID, currentSpan)

		var bodySnippet string
		if req.Body != nil {
			req.Body = http.MaxBytesReader(c.Writer, req.Body, MaxRequestBody)
		}
		if req.Body != nil && req.ContentLength != 0 &&
			(req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch || req.Method == http.MethodDelete) {
			bodyBytes, err := io.ReadAll(req.Body)
			if err != nil {
				rejectBody(c, err)
			} else {
				if len(bodyBytes) > maxBodyLog {
					bodySnippet = string(bodyBytes[:maxBodyLog])
				} else {
					bodySnippet = string(bodyBytes)
				}
				// gin 핸들러에서 다시 읽을 수 있도록 Body 를 복원한다.
				req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		if !c.IsAborted() {
			c.Next()
		}

		fields := logger.Fields{
			"method":     req.Method,
			"path":       req.URL.Path,
			"client_ip":  c.ClientIP(),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": requestID,
			"span_id":    trace.CurrentSpanID(c.Request.Context()),
		}
		if bodySnippet != "" {
			fields["body"] = bodySnippet
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		logger.InfoWithFields("completed request", fields)
	}
}

// rejectBody 는 읽을 수 없거나 상한을 넘는 바디를 검증 실패와 같은 400 으로 응답한다.
func rejectBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	detail := "request body could not be read"
	if errors.As(err, &tooLarge) {
		detail = fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
	}
	invalid := services.ValidationError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(invalid.StatusCode, dto.NewErrorResponse(invalid.ErrorCode, detail, trace.RequestIDFromContext(c.Request.Context())))
}
