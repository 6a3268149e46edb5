package backendclient

import (
	"encoding/json"
	"strings"
)

// Params 는 생성 호출 옵션이다. MaxTokens 가 0 이면 backend 기본값을 쓴다.
type Params struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
}

// Completion 은 unary 생성 결과다. 토큰 수는 공백 기준 단어 수로 근사한 값이며
// 실제 토크나이저 결과가 아니다.
type Completion struct {
	Model            string
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StreamEvent 는 스트림의 한 조각이다. Err 는 스트림이 중단된 경우 마지막 이벤트에만 채워진다.
type StreamEvent struct {
	Fragment string
	Err      error
}

// CountWords 는 토큰 수 근사치로 쓰는 공백 기준 단어 수다.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func newCompletion(model, prompt, text string) Completion {
	text = strings.TrimSpace(text)
	promptTokens := CountWords(prompt)
	completionTokens := CountWords(text)
	return Completion{
		Model:            model,
		Text:             text,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}

// -------------------- Ollama --------------------

type ollamaOptions struct {
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

// ollamaGenerateResponse 는 /api/generate 응답(unary) 과 스트림 한 줄의 공통 형태다.
// Response 는 필수 필드라 포인터로 받아 누락을 구분한다.
type ollamaGenerateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
	Error    string  `json:"error,omitempty"`
}

type ollamaModelRequest struct {
	Name string `json:"name"`
}

// -------------------- vLLM (OpenAI completions) --------------------

type vllmCompletionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	Stream      bool     `json:"stream"`
}

type vllmChoice struct {
	Text         *string `json:"text"`
	FinishReason *string `json:"finish_reason"`
}

type vllmCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []vllmChoice `json:"choices"`
}

// GenerateRequest 는 /generate 단순 프록시 요청이다.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// RawMessage 는 backend 응답을 변형 없이 전달할 때 사용한다.
type RawMessage = json.RawMessage
