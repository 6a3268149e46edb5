package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/services"
	"llm-controller/cmd/controller/trace"
	"llm-controller/cmd/internal/logger"
)

const (
	contentTypeText   = "text/plain; charset=utf-8"
	contentTypeNDJSON = "application/x-ndjson"
)

func requestID(c *gin.Context) string {
	return trace.RequestIDFromContext(c.Request.Context())
}

// writeError 는 services.Error 를 공통 에러 바디로 응답한다.
func writeError(c *gin.Context, err *services.Error) {
	if err.Cause != nil {
		_ = c.Error(err.Cause)
	}
	if err.StatusCode == services.StatusClientClosedRequest {
		// 응답을 받을 상대가 없다. 상태만 남긴다.
		c.AbortWithStatus(err.StatusCode)
		return
	}
	c.AbortWithStatusJSON(err.StatusCode, dto.NewErrorResponse(err.ErrorCode, err.Detail, requestID(c)))
}

// bindJSON 은 요청 바디를 검증한다. 실패하면 400 을 응답하고 false 를 반환한다.
func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		invalid := services.ValidationError(err)
		_ = c.Error(err)
		c.AbortWithStatusJSON(invalid.StatusCode, dto.NewErrorResponse(invalid.ErrorCode, err.Error(), requestID(c)))
		return false
	}
	return true
}

// writeStream 은 조각을 받는 즉시 flush 한다. 헤더를 이미 보냈으므로 중간 실패는
// "\n[Error] <stage>: <detail>" 마커로 본문에 덧붙인다.
func writeStream(c *gin.Context, contentType string, chunks <-chan services.StreamChunk) {
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for chunk := range chunks {
		if chunk.Err != nil {
			_, _ = fmt.Fprintf(c.Writer, "\n[Error] %s: %s", chunk.Err.Stage, chunk.Err.Detail)
			c.Writer.Flush()
			logger.WarnWithFields("stream ended with error marker", trace.Fields(c.Request.Context(), logger.Fields{
				"stage":      chunk.Err.Stage,
				"error_code": chunk.Err.ErrorCode,
			}))
			continue
		}
		if _, err := io.WriteString(c.Writer, chunk.Text); err != nil {
			// 클라이언트가 떠났다. ctx 취소로 producer 가 멈출 때까지 비운다.
			continue
		}
		c.Writer.Flush()
	}
}
