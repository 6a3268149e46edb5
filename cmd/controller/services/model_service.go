package services

import (
	"context"
	"encoding/json"
	"fmt"

	"llm-controller/cmd/controller/clients/backendclient"
	"llm-controller/cmd/controller/dto"
)

// ModelService 는 모델 목록/생성/다운로드/삭제를 backend 로 그대로 프록시한다.
// 프롬프트 가공과 헬스 게이트는 하지 않는다.
type ModelService struct {
	chat    *ChatService
	backend Backend
}

// NewModelService 는 에러 집계와 스트림 중계를 ChatService 와 공유한다.
func NewModelService(backend Backend, chat *ChatService) *ModelService {
	return &ModelService{chat: chat, backend: backend}
}

func (s *ModelService) ListModels(ctx context.Context) (backendclient.RawMessage, *Error) {
	out, err := s.backend.ListModels(ctx)
	if err != nil {
		return nil, s.chat.backendFailure(ctx, StageBackendCall, err)
	}
	return out, nil
}

// LocalModels 는 Ollama 로컬 저장소의 모델 목록이다.
func (s *ModelService) LocalModels(ctx context.Context) (backendclient.RawMessage, *Error) {
	out, err := s.backend.Tags(ctx)
	if err != nil {
		return nil, s.chat.backendFailure(ctx, StageBackendCall, err)
	}
	return out, nil
}

func (s *ModelService) Generate(ctx context.Context, req dto.GenerateRequestDTO) (backendclient.RawMessage, *Error) {
	out, err := s.backend.Generate(ctx, backendclient.GenerateRequest{Model: req.Model, Prompt: req.Prompt})
	if err != nil {
		return nil, s.chat.backendFailure(ctx, StageBackendCall, err)
	}
	return out, nil
}

// GenerateStream 은 backend 의 스트림 줄을 변형 없이 중계한다.
func (s *ModelService) GenerateStream(ctx context.Context, req dto.GenerateRequestDTO) (<-chan StreamChunk, *Error) {
	events, err := s.backend.GenerateStream(ctx, backendclient.GenerateRequest{Model: req.Model, Prompt: req.Prompt, Stream: true})
	if err != nil {
		return nil, s.chat.backendFailure(ctx, StageBackendCall, err)
	}
	return s.chat.relay(ctx, events, nil, nil), nil
}

// Pull 은 다운로드가 끝날 때까지 기다린 뒤 마지막 상태를 반환한다.
// backend 가 상태 줄을 하나도 보내지 않으면 완료 메시지를 만들어 반환한다.
func (s *ModelService) Pull(ctx context.Context, name string) (backendclient.RawMessage, *Error) {
	out, err := s.backend.Pull(ctx, name)
	if err != nil {
		return nil, s.chat.backendFailure(ctx, StageBackendCall, err)
	}
	if len(out) == 0 {
		fallback, marshalErr := json.Marshal(map[string]string{
			"status":  "completed",
			"message": fmt.Sprintf("Model %s pulled", name),
		})
		if marshalErr != nil {
			return nil, InternalError(StageBackendCall, marshalErr)
		}
		return fallback, nil
	}
	return out, nil
}

func (s *ModelService) Delete(ctx context.Context, name string) (dto.MessageResponseDTO, *Error) {
	if err := s.backend.DeleteModel(ctx, name); err != nil {
		return dto.MessageResponseDTO{}, s.chat.backendFailure(ctx, StageBackendCall, err)
	}
	return dto.MessageResponseDTO{Message: fmt.Sprintf("Model %s deleted", name)}, nil
}
