package services

import (
	"context"

	"llm-controller/cmd/controller/clients/backendclient"
	"llm-controller/cmd/controller/health"
	"llm-controller/cmd/controller/prompt"
)

// Backend 는 *backendclient.Client 가 구현한다.
type Backend interface {
	Complete(ctx context.Context, prompt string, params backendclient.Params) (backendclient.Completion, error)
	Stream(ctx context.Context, prompt string, params backendclient.Params) (<-chan backendclient.StreamEvent, error)
	Generate(ctx context.Context, req backendclient.GenerateRequest) (backendclient.RawMessage, error)
	GenerateStream(ctx context.Context, req backendclient.GenerateRequest) (<-chan backendclient.StreamEvent, error)
	ListModels(ctx context.Context) (backendclient.RawMessage, error)
	Tags(ctx context.Context) (backendclient.RawMessage, error)
	Pull(ctx context.Context, name string) (backendclient.RawMessage, error)
	DeleteModel(ctx context.Context, name string) error
}

// HealthChecker 는 *health.Monitor 가 구현한다.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
	Snapshot() health.State
}

// SessionStore 는 *session.Store 가 구현한다.
type SessionStore interface {
	GetHistory(key string) []prompt.Message
	Append(key string, messages ...prompt.Message)
	Clear(key string) bool
	Len() int
	AcquireTurn(ctx context.Context, key string) (func(), error)
}
