package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-controller/cmd/controller/clients/backendclient"
	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/prompt"
	"llm-controller/cmd/controller/session"
)

const testModel = "qwen2.5:0.5b"

func newTestChatService(backend *fakeBackend, healthy bool) (*ChatService, *session.Store, *Counters) {
	store := session.NewStore()
	counters := NewCounters()
	return NewChatService(backend, newFakeHealth(healthy), store, counters, testModel), store, counters
}

func userHi() dto.ChatCompletionRequestDTO {
	return dto.ChatCompletionRequestDTO{Messages: []dto.ChatMessageDTO{{Role: "user", Content: "hi"}}}
}

func drain(t *testing.T, chunks <-chan StreamChunk) (string, *Error) {
	t.Helper()
	var sb strings.Builder
	var last *Error
	for chunk := range chunks {
		if chunk.Err != nil {
			last = chunk.Err
			continue
		}
		sb.WriteString(chunk.Text)
	}
	return sb.String(), last
}

func TestCompleteFormatsPromptAndAppliesDefaults(t *testing.T) {
	backend := &fakeBackend{reply: "Hello! How can I help?"}
	svc, _, _ := newTestChatService(backend, true)

	resp, err := svc.Complete(context.Background(), userHi())
	require.Nil(t, err)

	assert.Equal(t, "User: hi\nAssistant:", backend.lastPrompt())
	require.Len(t, backend.params, 1)
	params := backend.params[0]
	assert.Equal(t, testModel, params.Model)
	assert.Equal(t, DefaultTemperature, params.Temperature)
	assert.Equal(t, DefaultTopP, params.TopP)
	assert.Equal(t, DefaultMaxTokens, params.MaxTokens)
	assert.Equal(t, prompt.StopSequences, params.Stop)

	assert.True(t, strings.HasPrefix(resp.ID, "chatcmpl-"))
	assert.Equal(t, "chat.completion", resp.Object)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "assistant", resp.Choices[0].Message.Role)
	assert.Equal(t, "Hello! How can I help?", resp.Choices[0].Message.Content)
	assert.Equal(t, 2, resp.Usage.PromptTokens)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestCompleteUsesRequestOptions(t *testing.T) {
	backend := &fakeBackend{reply: "ok"}
	svc, _, _ := newTestChatService(backend, true)

	temperature, topP, maxTokens := 0.1, 0.5, 32
	req := userHi()
	req.Model = "llama3"
	req.Temperature, req.TopP, req.MaxTokens = &temperature, &topP, &maxTokens

	_, err := svc.Complete(context.Background(), req)
	require.Nil(t, err)

	params := backend.params[0]
	assert.Equal(t, "llama3", params.Model)
	assert.Equal(t, 0.1, params.Temperature)
	assert.Equal(t, 0.5, params.TopP)
	assert.Equal(t, 32, params.MaxTokens)
}

func TestCompleteHealthGateSkipsBackend(t *testing.T) {
	backend := &fakeBackend{reply: "unused"}
	svc, _, _ := newTestChatService(backend, false)

	_, err := svc.Complete(context.Background(), userHi())
	require.NotNil(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
	assert.Equal(t, "backend_unavailable", err.ErrorCode)
	assert.Equal(t, StageHealthGate, err.Stage)
	assert.Zero(t, backend.calls.Load())

	_, streamErr := svc.StreamComplete(context.Background(), userHi())
	require.NotNil(t, streamErr)
	assert.Zero(t, backend.calls.Load())
}

func TestCompleteBackendErrorMapping(t *testing.T) {
	testCases := []struct {
		name           string
		kind           error
		wantStatus     int
		wantCode       string
		wantErrorCount int64
	}{
		{"unreachable", backendclient.ErrUnreachable, http.StatusServiceUnavailable, "backend_unavailable", 1},
		{"timeout", backendclient.ErrTimeout, http.StatusGatewayTimeout, "backend_timeout", 1},
		{"protocol", backendclient.ErrProtocol, http.StatusBadGateway, "backend_protocol_error", 1},
		{"model not found", backendclient.ErrModelNotFound, http.StatusNotFound, "model_not_found", 1},
		{"canceled", backendclient.ErrCanceled, StatusClientClosedRequest, "request_canceled", 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cause := &backendclient.Error{Kind: testCase.kind, Op: "complete", Err: fmt.Errorf("dial tcp 10.0.0.1:11434: connection refused")}
			backend := &fakeBackend{err: cause}
			svc, _, counters := newTestChatService(backend, true)

			_, err := svc.Complete(context.Background(), userHi())
			require.NotNil(t, err)
			assert.Equal(t, testCase.wantStatus, err.StatusCode)
			assert.Equal(t, testCase.wantCode, err.ErrorCode)
			assert.Equal(t, StageBackendCall, err.Stage)
			assert.NotContains(t, err.Detail, "10.0.0.1")
			assert.ErrorIs(t, err, testCase.kind)
			assert.Equal(t, testCase.wantErrorCount, counters.BackendErrors())
		})
	}
}

func TestChatInferenceMergesSessionHistory(t *testing.T) {
	backend := &fakeBackend{reply: "Hello Alice"}
	svc, store, _ := newTestChatService(backend, true)
	ctx := context.Background()

	first, err := svc.ChatInference(ctx, dto.ChatInferenceRequestDTO{
		ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: "I am Alice"}},
		SessionID: "s1",
	})
	require.Nil(t, err)
	assert.Equal(t, []dto.SessionMessageDTO{
		{Role: "user", Content: "I am Alice"},
		{Role: "assistant", Content: "Hello Alice"},
	}, first.ChatOutput)

	backend.reply = "You are Alice"
	second, err := svc.ChatInference(ctx, dto.ChatInferenceRequestDTO{
		ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: "Who am I?"}},
		SessionID: "s1",
	})
	require.Nil(t, err)

	assert.Equal(t, "User: I am Alice\nAssistant: Hello Alice\nUser: Who am I?\nAssistant:", backend.lastPrompt())
	assert.Len(t, second.ChatOutput, 4)
	assert.Len(t, store.GetHistory("s1"), 4)
	assert.Empty(t, store.GetHistory(session.DefaultKey))

	params := backend.params[0]
	assert.Equal(t, 0.7, params.Temperature)
	assert.Equal(t, 0.9, params.TopP)
	assert.Equal(t, testModel, params.Model)
}

func TestChatInferenceDefaultsSessionKey(t *testing.T) {
	backend := &fakeBackend{reply: "hey"}
	svc, store, _ := newTestChatService(backend, true)

	_, err := svc.ChatInference(context.Background(), dto.ChatInferenceRequestDTO{
		ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: "hi"}},
	})
	require.Nil(t, err)
	assert.Len(t, store.GetHistory(session.DefaultKey), 2)
}

func TestChatInferenceFailureLeavesSessionUntouched(t *testing.T) {
	backend := &fakeBackend{err: &backendclient.Error{Kind: backendclient.ErrTimeout, Op: "complete"}}
	svc, store, _ := newTestChatService(backend, true)

	_, err := svc.ChatInference(context.Background(), dto.ChatInferenceRequestDTO{
		ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: "hi"}},
		SessionID: "s1",
	})
	require.NotNil(t, err)
	assert.Equal(t, http.StatusGatewayTimeout, err.StatusCode)
	assert.Empty(t, store.GetHistory("s1"))
}

func TestChatInferenceSerializesTurnsPerSession(t *testing.T) {
	backend := &fakeBackend{
		reply:   "ack",
		block:   make(chan struct{}),
		entered: make(chan struct{}, 2),
	}
	svc, store, _ := newTestChatService(backend, true)

	var wg sync.WaitGroup
	send := func(content string) {
		defer wg.Done()
		_, err := svc.ChatInference(context.Background(), dto.ChatInferenceRequestDTO{
			ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: content}},
			SessionID: "shared",
		})
		assert.Nil(t, err)
	}

	wg.Add(1)
	go send("first")
	<-backend.entered

	wg.Add(1)
	go send("second")

	select {
	case <-backend.entered:
		t.Fatalf("second turn reached the backend while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(backend.block)
	wg.Wait()

	history := store.GetHistory("shared")
	require.Len(t, history, 4)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[2].Content)
	assert.Equal(t, "User: first\nAssistant: ack\nUser: second\nAssistant:", backend.lastPrompt())
}

func TestChatInferenceStreamAppendsOnCompletion(t *testing.T) {
	backend := &fakeBackend{fragments: []string{"Hel", "lo", " there "}}
	svc, store, _ := newTestChatService(backend, true)

	chunks, err := svc.ChatInferenceStream(context.Background(), dto.ChatInferenceRequestDTO{
		ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: "hi"}},
		SessionID: "s1",
	})
	require.Nil(t, err)

	text, streamErr := drain(t, chunks)
	assert.Nil(t, streamErr)
	assert.Equal(t, "Hello there ", text)
	assert.Equal(t, []prompt.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "Hello there"},
	}, store.GetHistory("s1"))

	// 턴이 해제되었으므로 다음 요청이 바로 진행된다.
	backend.reply = "again"
	_, err = svc.ChatInference(context.Background(), dto.ChatInferenceRequestDTO{
		ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: "more"}},
		SessionID: "s1",
	})
	require.Nil(t, err)
	assert.Len(t, store.GetHistory("s1"), 4)
}

func TestChatInferenceStreamInterruptedDoesNotAppend(t *testing.T) {
	backend := &fakeBackend{
		fragments: []string{"partial"},
		streamErr: &backendclient.Error{Kind: backendclient.ErrStreamInterrupted, Op: "stream"},
	}
	svc, store, counters := newTestChatService(backend, true)

	chunks, err := svc.ChatInferenceStream(context.Background(), dto.ChatInferenceRequestDTO{
		ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: "hi"}},
		SessionID: "s1",
	})
	require.Nil(t, err)

	text, streamErr := drain(t, chunks)
	assert.Equal(t, "partial", text)
	require.NotNil(t, streamErr)
	assert.Equal(t, StageStreamRelay, streamErr.Stage)
	assert.Equal(t, "backend_stream_interrupted", streamErr.ErrorCode)
	assert.Empty(t, store.GetHistory("s1"))
	assert.Equal(t, int64(1), counters.StreamInterruptions())
}

func TestChatInferenceStreamCanceledDoesNotAppend(t *testing.T) {
	backend := &fakeBackend{fragments: []string{"a", "b", "c"}}
	svc, store, _ := newTestChatService(backend, true)

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := svc.ChatInferenceStream(ctx, dto.ChatInferenceRequestDTO{
		ChatInput: []dto.SessionMessageDTO{{Role: "user", Content: "hi"}},
		SessionID: "s1",
	})
	require.Nil(t, err)

	first := <-chunks
	assert.Equal(t, "a", first.Text)
	cancel()
	for range chunks {
	}

	assert.Empty(t, store.GetHistory("s1"))

	release, turnErr := store.AcquireTurn(context.Background(), "s1")
	require.NoError(t, turnErr)
	release()
}

func TestStreamCompleteRelaysFragmentsInOrder(t *testing.T) {
	backend := &fakeBackend{fragments: []string{"F1", "F2", "F3"}}
	svc, _, _ := newTestChatService(backend, true)

	chunks, err := svc.StreamComplete(context.Background(), userHi())
	require.Nil(t, err)

	var got []string
	for chunk := range chunks {
		require.Nil(t, chunk.Err)
		got = append(got, chunk.Text)
	}
	assert.Equal(t, []string{"F1", "F2", "F3"}, got)
	assert.Equal(t, "User: hi\nAssistant:", backend.lastPrompt())
}

func TestStreamCompleteFirstReadFailure(t *testing.T) {
	backend := &fakeBackend{err: &backendclient.Error{Kind: backendclient.ErrUnreachable, Op: "stream"}}
	svc, _, _ := newTestChatService(backend, true)

	chunks, err := svc.StreamComplete(context.Background(), userHi())
	assert.Nil(t, chunks)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
}
