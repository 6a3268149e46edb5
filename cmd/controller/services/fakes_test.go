package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"llm-controller/cmd/controller/clients/backendclient"
	"llm-controller/cmd/controller/health"
)

type fakeBackend struct {
	mu      sync.Mutex
	prompts []string
	params  []backendclient.Params

	calls atomic.Int32

	reply     string
	err       error
	fragments []string
	streamErr error
	// block 가 nil 이 아니면 Complete 는 채널이 닫힐 때까지 기다린다.
	block   chan struct{}
	entered chan struct{}

	pullOut backendclient.RawMessage
}

func (f *fakeBackend) record(prompt string, params backendclient.Params) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	f.mu.Unlock()
}

func (f *fakeBackend) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeBackend) Complete(ctx context.Context, prompt string, params backendclient.Params) (backendclient.Completion, error) {
	f.record(prompt, params)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return backendclient.Completion{}, f.err
	}
	return backendclient.Completion{
		Model:            params.Model,
		Text:             f.reply,
		PromptTokens:     backendclient.CountWords(prompt),
		CompletionTokens: backendclient.CountWords(f.reply),
		TotalTokens:      backendclient.CountWords(prompt) + backendclient.CountWords(f.reply),
	}, nil
}

func (f *fakeBackend) Stream(ctx context.Context, prompt string, params backendclient.Params) (<-chan backendclient.StreamEvent, error) {
	f.record(prompt, params)
	if f.err != nil {
		return nil, f.err
	}
	events := make(chan backendclient.StreamEvent)
	go func() {
		defer close(events)
		for _, fragment := range f.fragments {
			select {
			case events <- backendclient.StreamEvent{Fragment: fragment}:
			case <-ctx.Done():
				return
			}
		}
		if f.streamErr != nil {
			select {
			case events <- backendclient.StreamEvent{Err: f.streamErr}:
			case <-ctx.Done():
			}
		}
	}()
	return events, nil
}

func (f *fakeBackend) Generate(ctx context.Context, req backendclient.GenerateRequest) (backendclient.RawMessage, error) {
	f.record(req.Prompt, backendclient.Params{Model: req.Model})
	if f.err != nil {
		return nil, f.err
	}
	return backendclient.RawMessage(`{"response":"` + f.reply + `","done":true}`), nil
}

func (f *fakeBackend) GenerateStream(ctx context.Context, req backendclient.GenerateRequest) (<-chan backendclient.StreamEvent, error) {
	return f.Stream(ctx, req.Prompt, backendclient.Params{Model: req.Model})
}

func (f *fakeBackend) ListModels(ctx context.Context) (backendclient.RawMessage, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return backendclient.RawMessage(`{"object":"list","data":[{"id":"qwen2.5:0.5b","object":"model"}]}`), nil
}

func (f *fakeBackend) Tags(ctx context.Context) (backendclient.RawMessage, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return backendclient.RawMessage(`{"models":[]}`), nil
}

func (f *fakeBackend) Pull(ctx context.Context, name string) (backendclient.RawMessage, error) {
	f.calls.Add(1)
	return f.pullOut, f.err
}

func (f *fakeBackend) DeleteModel(ctx context.Context, name string) error {
	f.calls.Add(1)
	return f.err
}

type fakeHealth struct {
	healthy atomic.Bool
	checks  atomic.Int32
	last    time.Time
}

func newFakeHealth(healthy bool) *fakeHealth {
	h := &fakeHealth{last: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	h.healthy.Store(healthy)
	return h
}

func (h *fakeHealth) IsHealthy(ctx context.Context) bool {
	h.checks.Add(1)
	return h.healthy.Load()
}

func (h *fakeHealth) Snapshot() health.State {
	return health.State{Healthy: h.healthy.Load(), LastChecked: h.last}
}
