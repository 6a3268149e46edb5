package dto

// ChatMessageDTO 는 OpenAI 형식의 대화 메시지 한 건이다.
type ChatMessageDTO struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant" example:"user"`
	Content string `json:"content" binding:"required,notblank,max=10000" example:"hi"`
}

// ChatCompletionRequestDTO 는 POST /v1/chat/completions 요청이다.
// 생략된 생성 옵션은 서버 기본값(temperature 0.7, top_p 0.8, max_tokens 512)으로 채운다.
type ChatCompletionRequestDTO struct {
	Model       string           `json:"model,omitempty" example:"qwen2.5:0.5b"`
	Messages    []ChatMessageDTO `json:"messages" binding:"required,min=1,max=100,dive"`
	Temperature *float64         `json:"temperature,omitempty" binding:"omitempty,gte=0,lte=2" example:"0.7"`
	TopP        *float64         `json:"top_p,omitempty" binding:"omitempty,gte=0,lte=1" example:"0.8"`
	MaxTokens   *int             `json:"max_tokens,omitempty" binding:"omitempty,gte=1,lte=4096" example:"512"`
	Stream      bool             `json:"stream"`
}

type ChatCompletionChoiceDTO struct {
	Index        int            `json:"index"`
	Message      ChatMessageDTO `json:"message"`
	FinishReason string         `json:"finish_reason" example:"stop"`
}

// UsageDTO 의 토큰 수는 공백 기준 단어 수 근사치다.
type UsageDTO struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponseDTO 는 OpenAI chat.completion 객체 형식이다.
type ChatCompletionResponseDTO struct {
	ID      string                    `json:"id" example:"chatcmpl-6f1c2d4e-8a7b-4c3d-9e2f-1a2b3c4d5e6f"`
	Object  string                    `json:"object" example:"chat.completion"`
	Created int64                     `json:"created" example:"1760000000"`
	Model   string                    `json:"model" example:"qwen2.5:0.5b"`
	Choices []ChatCompletionChoiceDTO `json:"choices"`
	Usage   UsageDTO                  `json:"usage"`
}

// SessionMessageDTO 는 /chatinference 와 세션 조회에서 쓰는 메시지다.
// 알 수 없는 role 은 프롬프트에서 User 로 취급된다.
type SessionMessageDTO struct {
	Role    string `json:"role" binding:"required,max=32" example:"user"`
	Content string `json:"content" binding:"required,notblank,max=10000" example:"hello"`
}

// ChatInferenceRequestDTO 는 POST /chatinference 요청이다.
// session_id 를 생략하면 "default" 세션을 사용한다.
type ChatInferenceRequestDTO struct {
	ChatInput []SessionMessageDTO `json:"CHAT_INPUT" binding:"required,min=1,max=100,dive"`
	Model     string              `json:"model,omitempty" example:"qwen2.5:0.5b"`
	SessionID string              `json:"session_id,omitempty" binding:"omitempty,max=256" example:"default"`
	Stream    bool                `json:"stream"`
}

// ChatInferenceResponseDTO 의 CHAT_OUTPUT 은 저장된 이력 + 이번 입력 + 응답 순서다.
type ChatInferenceResponseDTO struct {
	ChatOutput []SessionMessageDTO `json:"CHAT_OUTPUT"`
}
