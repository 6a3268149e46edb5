package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-controller/cmd/controller/trace"
)

func TestNewRequestRejectsQueryInPath(t *testing.T) {
	base := NewBaseClient("http://backend:11434")

	_, err := base.NewRequest(context.Background(), http.MethodGet, "/api/tags?x=1", nil, nil)
	assert.Error(t, err)
}

func TestNewRequestJoinsPathAndQuery(t *testing.T) {
	base := NewBaseClient("http://backend:8000/root")

	req, err := base.NewRequest(context.Background(), http.MethodGet, "/v1/models", url.Values{"a": {"b"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8000/root/v1/models?a=b", req.URL.String())
}

func TestRoundTripperPropagatesTraceHeadersAndBody(t *testing.T) {
	var gotRequestID, gotSpanID, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(trace.HeaderRequestID)
		gotSpanID = r.Header.Get(trace.HeaderSpanID)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	base := NewBaseClientWithClient(New(Config{Timeout: time.Second}), srv.URL)
	ctx := trace.WithRequestAndSpan(context.Background(), "req-42", 0)

	req, err := base.NewRequest(ctx, http.MethodPost, "/api/generate", nil, strings.NewReader(`{"prompt":"hi"}`))
	require.NoError(t, err)
	resp, err := base.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "1", gotSpanID)
	assert.Equal(t, `{"prompt":"hi"}`, gotBody)
}
