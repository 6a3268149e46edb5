package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/ratelimit"
	"llm-controller/cmd/controller/services"
	"llm-controller/cmd/controller/trace"
)

type failingLimiter struct{}

func (failingLimiter) Admit(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis: connection refused")
}

func (failingLimiter) ActiveKeys(context.Context) (int, error) { return 0, nil }

func newEngine(limiter ratelimit.Limiter, counters *services.Counters, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTrace(), RateLimit(limiter, counters))
	r.GET("/ping", func(c *gin.Context) {
		*hits++
		c.String(http.StatusOK, trace.RequestIDFromContext(c.Request.Context()))
	})
	return r
}

func get(r http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitPerClientIP(t *testing.T) {
	limiter, err := ratelimit.New(ratelimit.DriverMemory, 2, time.Minute)
	require.NoError(t, err)
	counters := services.NewCounters()
	hits := 0
	r := newEngine(limiter, counters, &hits)

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1001").Code)

	rejected := get(r, "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "60", rejected.Header().Get("Retry-After"))
	assert.Equal(t, "0", rejected.Header().Get("X-RateLimit-Remaining"))

	// 다른 클라이언트는 영향을 받지 않는다.
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2:1000").Code)

	assert.Equal(t, 3, hits)
	assert.Equal(t, int64(4), counters.Requests())
	assert.Equal(t, int64(1), counters.RateLimited())
}

func TestRateLimitFailsOpenOnLimiterError(t *testing.T) {
	hits := 0
	r := newEngine(failingLimiter{}, services.NewCounters(), &hits)

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1000").Code)
	assert.Equal(t, 1, hits)
}

func TestRequestTraceKeepsIncomingRequestID(t *testing.T) {
	limiter, err := ratelimit.New(ratelimit.DriverMemory, 0, time.Minute)
	require.NoError(t, err)
	hits := 0
	r := newEngine(limiter, services.NewCounters(), &hits)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(trace.HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(trace.HeaderRequestID))
	assert.Equal(t, "0", rec.Header().Get(trace.HeaderSpanID))
	assert.Equal(t, "abc-123", rec.Body.String())

	generated := get(r, "10.0.0.1:1000")
	assert.Len(t, generated.Header().Get(trace.HeaderRequestID), 32)
}

func TestRequestTraceRejectsOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTrace())
	called := false
	r.POST("/echo", func(c *gin.Context) {
		called = true
		body, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.String(http.StatusOK, "%d", len(body))
	})

	oversized := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", MaxRequestBody+1)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, oversized)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
	var body dto.ErrorResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_request", body.Error)
	assert.Contains(t, body.Detail, "exceeds")
	assert.NotEmpty(t, body.RequestID)

	exact := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", MaxRequestBody)))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, exact)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, strconv.Itoa(MaxRequestBody), rec.Body.String())
}
