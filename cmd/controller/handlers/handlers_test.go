package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"llm-controller/cmd/controller/clients/backendclient"
	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/health"
	"llm-controller/cmd/controller/services"
	"llm-controller/cmd/controller/session"
)

type alwaysHealthy struct{}

func (alwaysHealthy) Ping(context.Context) error { return nil }

func newTestChatService(t *testing.T, generate http.HandlerFunc) (*services.ChatService, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		generate(w, r)
	}))
	t.Cleanup(srv.Close)

	backend := backendclient.New(backendclient.Config{
		BaseURL:         srv.URL,
		ShortTimeout:    time.Second,
		GenerateTimeout: time.Second,
		StreamTimeout:   5 * time.Second,
	})
	monitor := health.NewMonitor(alwaysHealthy{}, time.Minute, time.Second)
	return services.NewChatService(backend, monitor, session.NewStore(), services.NewCounters(), "qwen2.5:0.5b"), &calls
}

func newTestGinContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	ginCtx, _ := gin.CreateTestContext(recorder)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ginCtx.Request = req
	return ginCtx, recorder
}

func TestChatCompletionsHandlerRejectsInvalidBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	longContent := strings.Repeat("a", 10001)
	testCases := []struct {
		name string
		body string
	}{
		{name: "not json", body: `hello`},
		{name: "missing messages", body: `{}`},
		{name: "empty messages", body: `{"messages":[]}`},
		{name: "unknown role", body: `{"messages":[{"role":"tool","content":"hi"}]}`},
		{name: "empty content", body: `{"messages":[{"role":"user","content":""}]}`},
		{name: "blank content", body: `{"messages":[{"role":"user","content":"  \t "}]}`},
		{name: "content too long", body: `{"messages":[{"role":"user","content":"` + longContent + `"}]}`},
		{name: "temperature out of range", body: `{"messages":[{"role":"user","content":"hi"}],"temperature":2.5}`},
		{name: "top_p out of range", body: `{"messages":[{"role":"user","content":"hi"}],"top_p":1.5}`},
		{name: "max_tokens out of range", body: `{"messages":[{"role":"user","content":"hi"}],"max_tokens":0}`},
	}

	svc, calls := newTestChatService(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ginCtx, recorder := newTestGinContext(http.MethodPost, "/v1/chat/completions", testCase.body)
			ChatCompletionsHandler(svc)(ginCtx)

			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d (%s)", http.StatusBadRequest, recorder.Code, recorder.Body.String())
			}
			var body dto.ErrorResponseDTO
			if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body.Error != "invalid_request" {
				t.Fatalf("expected invalid_request, got %q", body.Error)
			}
		})
	}

	if n := calls.Load(); n != 0 {
		t.Fatalf("expected no backend calls, got %d", n)
	}
}

func TestChatCompletionsHandlerStreamAppendsErrorMarker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc, _ := newTestChatService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{\"response\":\"Hel\",\"done\":false}\n{\"response\":\"lo\",\"done\":false}\n")
		w.(http.Flusher).Flush()
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		conn.Close()
	})

	ginCtx, recorder := newTestGinContext(http.MethodPost, "/v1/chat/completions",
		`{"messages":[{"role":"user","content":"hi"}],"stream":true}`)
	ChatCompletionsHandler(svc)(ginCtx)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	want := "Hello\n[Error] stream_relay: backend stream interrupted"
	if got := recorder.Body.String(); got != want {
		t.Fatalf("expected body %q, got %q", want, got)
	}
	if ct := recorder.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", ct)
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name       string
		err        *services.Error
		wantStatus int
		wantBody   bool
	}{
		{name: "unavailable", err: services.BackendUnavailableError(), wantStatus: http.StatusServiceUnavailable, wantBody: true},
		{name: "rate limited", err: services.RateLimitError(), wantStatus: http.StatusTooManyRequests, wantBody: true},
		{name: "internal", err: services.InternalError(services.StageBackendCall, fmt.Errorf("boom")), wantStatus: http.StatusInternalServerError, wantBody: true},
		{name: "client closed", err: &services.Error{StatusCode: services.StatusClientClosedRequest, ErrorCode: "request_canceled"}, wantStatus: services.StatusClientClosedRequest},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ginCtx, recorder := newTestGinContext(http.MethodGet, "/", "")
			writeError(ginCtx, testCase.err)

			if !ginCtx.IsAborted() {
				t.Fatalf("expected request to be aborted")
			}
			if recorder.Code != testCase.wantStatus {
				t.Fatalf("expected status %d, got %d", testCase.wantStatus, recorder.Code)
			}
			if !testCase.wantBody {
				if recorder.Body.Len() != 0 {
					t.Fatalf("expected empty body, got %q", recorder.Body.String())
				}
				return
			}
			var body dto.ErrorResponseDTO
			if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body.Error != testCase.err.ErrorCode {
				t.Fatalf("expected error %q, got %q", testCase.err.ErrorCode, body.Error)
			}
			if strings.Contains(recorder.Body.String(), "boom") {
				t.Fatalf("cause leaked into response body: %s", recorder.Body.String())
			}
		})
	}
}

func TestDeleteSessionHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := services.NewSessionService(session.NewStore())

	ginCtx, recorder := newTestGinContext(http.MethodDelete, "/sessions/ghost", "")
	ginCtx.Params = gin.Params{{Key: "id", Value: "ghost"}}
	DeleteSessionHandler(svc)(ginCtx)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
}
