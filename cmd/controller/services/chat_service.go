package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"llm-controller/cmd/controller/clients/backendclient"
	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/prompt"
	"llm-controller/cmd/controller/session"
	"llm-controller/cmd/controller/trace"
	"llm-controller/cmd/internal/logger"
)

// /v1/chat/completions 기본 생성 옵션
const (
	DefaultTemperature = 0.7
	DefaultTopP        = 0.8
	DefaultMaxTokens   = 512
)

// /chatinference 는 고정 옵션을 사용한다.
const (
	inferenceTemperature = 0.7
	inferenceTopP        = 0.9
)

// StreamChunk 는 handler 로 전달되는 스트림 조각이다.
// Err 가 채워진 조각은 항상 마지막이다.
type StreamChunk struct {
	Text string
	Err  *Error
}

type ChatService struct {
	backend      Backend
	health       HealthChecker
	sessions     SessionStore
	counters     *Counters
	defaultModel string
	now          func() time.Time
}

func NewChatService(backend Backend, health HealthChecker, sessions SessionStore, counters *Counters, defaultModel string) *ChatService {
	if counters == nil {
		counters = NewCounters()
	}
	return &ChatService{
		backend:      backend,
		health:       health,
		sessions:     sessions,
		counters:     counters,
		defaultModel: defaultModel,
		now:          time.Now,
	}
}

// Complete 는 OpenAI 호환 unary 채팅이다. 세션을 사용하지 않는다.
func (s *ChatService) Complete(ctx context.Context, req dto.ChatCompletionRequestDTO) (dto.ChatCompletionResponseDTO, *Error) {
	if err := s.gate(ctx); err != nil {
		return dto.ChatCompletionResponseDTO{}, err
	}

	messages := fromChatMessages(req.Messages)
	params := s.completionParams(req)
	completion, err := s.backend.Complete(ctx, prompt.Format(messages), params)
	if err != nil {
		return dto.ChatCompletionResponseDTO{}, s.backendFailure(ctx, StageBackendCall, err)
	}

	return dto.ChatCompletionResponseDTO{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: s.now().Unix(),
		Model:   completion.Model,
		Choices: []dto.ChatCompletionChoiceDTO{{
			Index:        0,
			Message:      dto.ChatMessageDTO{Role: prompt.RoleAssistant, Content: completion.Text},
			FinishReason: "stop",
		}},
		Usage: dto.UsageDTO{
			PromptTokens:     completion.PromptTokens,
			CompletionTokens: completion.CompletionTokens,
			TotalTokens:      completion.TotalTokens,
		},
	}, nil
}

// StreamComplete 는 Complete 의 스트리밍 버전이다. 첫 응답 전 실패는 *Error 로 반환한다.
func (s *ChatService) StreamComplete(ctx context.Context, req dto.ChatCompletionRequestDTO) (<-chan StreamChunk, *Error) {
	if err := s.gate(ctx); err != nil {
		return nil, err
	}

	events, err := s.backend.Stream(ctx, prompt.Format(fromChatMessages(req.Messages)), s.completionParams(req))
	if err != nil {
		return nil, s.backendFailure(ctx, StageBackendCall, err)
	}
	return s.relay(ctx, events, nil, nil), nil
}

// ChatInference 는 세션 이력을 합쳐 응답을 생성하고, 입력과 응답을 세션에 추가한다.
// 같은 세션의 요청은 한 턴씩 직렬화된다.
func (s *ChatService) ChatInference(ctx context.Context, req dto.ChatInferenceRequestDTO) (dto.ChatInferenceResponseDTO, *Error) {
	if err := s.gate(ctx); err != nil {
		return dto.ChatInferenceResponseDTO{}, err
	}

	key := sessionKey(req.SessionID)
	release, err := s.sessions.AcquireTurn(ctx, key)
	if err != nil {
		return dto.ChatInferenceResponseDTO{}, newError(StatusClientClosedRequest, "request_canceled", StageSession, "request canceled while waiting for session", err)
	}
	defer release()

	input := fromSessionMessages(req.ChatInput)
	history := append(s.sessions.GetHistory(key), input...)

	completion, callErr := s.backend.Complete(ctx, prompt.Format(history), s.inferenceParams(req.Model))
	if callErr != nil {
		return dto.ChatInferenceResponseDTO{}, s.backendFailure(ctx, StageBackendCall, callErr)
	}

	reply := prompt.Message{Role: prompt.RoleAssistant, Content: completion.Text}
	s.sessions.Append(key, append(input, reply)...)

	return dto.ChatInferenceResponseDTO{ChatOutput: toSessionMessages(append(history, reply))}, nil
}

// ChatInferenceStream 은 응답 조각을 흘려보내고, 스트림이 정상 종료된 경우에만
// 입력과 재구성한 응답을 세션에 추가한다. 세션 턴은 스트림이 끝날 때 해제된다.
func (s *ChatService) ChatInferenceStream(ctx context.Context, req dto.ChatInferenceRequestDTO) (<-chan StreamChunk, *Error) {
	if err := s.gate(ctx); err != nil {
		return nil, err
	}

	key := sessionKey(req.SessionID)
	release, err := s.sessions.AcquireTurn(ctx, key)
	if err != nil {
		return nil, newError(StatusClientClosedRequest, "request_canceled", StageSession, "request canceled while waiting for session", err)
	}

	input := fromSessionMessages(req.ChatInput)
	history := append(s.sessions.GetHistory(key), input...)

	events, callErr := s.backend.Stream(ctx, prompt.Format(history), s.inferenceParams(req.Model))
	if callErr != nil {
		release()
		return nil, s.backendFailure(ctx, StageBackendCall, callErr)
	}

	onComplete := func(reply string) {
		s.sessions.Append(key, append(input, prompt.Message{Role: prompt.RoleAssistant, Content: reply})...)
	}
	return s.relay(ctx, events, onComplete, release), nil
}

// relay 는 backend 이벤트를 StreamChunk 로 바꿔 전달한다.
// onComplete 는 스트림이 중단이나 취소 없이 끝난 경우에만 호출되고,
// finally 는 어떤 경우든 마지막에 한 번 호출된다.
func (s *ChatService) relay(ctx context.Context, events <-chan backendclient.StreamEvent, onComplete func(reply string), finally func()) <-chan StreamChunk {
	out := make(chan StreamChunk)

	go func() {
		defer close(out)
		if finally != nil {
			defer finally()
		}
		// 소비자가 먼저 떠난 경우 producer 가 연결을 닫고 끝날 때까지 기다린다.
		defer func() {
			for range events {
			}
		}()

		var reply strings.Builder
		for ev := range events {
			if ev.Err != nil {
				failure := s.streamFailure(ctx, ev.Err)
				select {
				case out <- StreamChunk{Err: failure}:
				case <-ctx.Done():
				}
				return
			}
			reply.WriteString(ev.Fragment)
			select {
			case out <- StreamChunk{Text: ev.Fragment}:
			case <-ctx.Done():
				return
			}
		}

		if ctx.Err() != nil {
			logger.InfoWithFields("stream canceled by client", trace.Fields(ctx, logger.Fields{"stage": StageStreamRelay}))
			return
		}
		if onComplete != nil {
			onComplete(strings.TrimSpace(reply.String()))
		}
	}()

	return out
}

func (s *ChatService) gate(ctx context.Context) *Error {
	if s.health == nil || s.health.IsHealthy(ctx) {
		return nil
	}
	logger.WarnWithFields("backend unhealthy, rejecting request", trace.Fields(ctx, logger.Fields{"stage": StageHealthGate}))
	return BackendUnavailableError()
}

func (s *ChatService) backendFailure(ctx context.Context, stage string, err error) *Error {
	failure := normalizeBackendError(stage, err)
	if errors.Is(err, backendclient.ErrCanceled) {
		logger.InfoWithFields("client canceled request", trace.Fields(ctx, logger.Fields{"stage": stage}))
		return failure
	}
	s.counters.RecordBackendError()
	logger.ErrorWithFields("backend call failed", trace.Fields(ctx, logger.Fields{
		"stage":      failure.Stage,
		"error_code": failure.ErrorCode,
		"error":      err.Error(),
	}))
	return failure
}

func (s *ChatService) streamFailure(ctx context.Context, err error) *Error {
	s.counters.RecordStreamInterruption()
	failure := s.backendFailure(ctx, StageStreamRelay, err)
	failure.Stage = StageStreamRelay
	return failure
}

func (s *ChatService) model(requested string) string {
	if requested != "" {
		return requested
	}
	return s.defaultModel
}

func (s *ChatService) completionParams(req dto.ChatCompletionRequestDTO) backendclient.Params {
	params := backendclient.Params{
		Model:       s.model(req.Model),
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
		Stop:        prompt.StopSequences,
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		params.TopP = *req.TopP
	}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}
	return params
}

func (s *ChatService) inferenceParams(model string) backendclient.Params {
	return backendclient.Params{
		Model:       s.model(model),
		Temperature: inferenceTemperature,
		TopP:        inferenceTopP,
		Stop:        prompt.StopSequences,
	}
}

func sessionKey(id string) string {
	if strings.TrimSpace(id) == "" {
		return session.DefaultKey
	}
	return id
}

func fromChatMessages(in []dto.ChatMessageDTO) []prompt.Message {
	out := make([]prompt.Message, 0, len(in))
	for _, m := range in {
		out = append(out, prompt.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func fromSessionMessages(in []dto.SessionMessageDTO) []prompt.Message {
	out := make([]prompt.Message, 0, len(in))
	for _, m := range in {
		out = append(out, prompt.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func toSessionMessages(in []prompt.Message) []dto.SessionMessageDTO {
	out := make([]dto.SessionMessageDTO, 0, len(in))
	for _, m := range in {
		out = append(out, dto.SessionMessageDTO{Role: m.Role, Content: m.Content})
	}
	return out
}
