package backendclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"llm-controller/cmd/controller/httpclient"
)

const (
	FlavorOllama = "ollama"
	FlavorVLLM   = "vllm"
)

const (
	pathModels       = "/v1/models"
	pathOllamaGen    = "/api/generate"
	pathOllamaTags   = "/api/tags"
	pathOllamaPull   = "/api/pull"
	pathOllamaDelete = "/api/delete"
	pathVLLMComplete = "/v1/completions"

	maxBodySize     = 5 * 1024 * 1024
	maxErrorSnippet = 2048
)

// Config 는 backend 종류와 호출 종류별 타임아웃이다.
type Config struct {
	Flavor  string
	BaseURL string
	// ShortTimeout 은 헬스체크/모델 목록/삭제에 사용한다.
	ShortTimeout    time.Duration
	GenerateTimeout time.Duration
	StreamTimeout   time.Duration
	PullTimeout     time.Duration
	// Transport 는 테스트에서 교체할 때만 지정한다.
	Transport http.RoundTripper
}

// Client 는 Ollama 또는 vLLM 서버를 호출하는 얇은 클라이언트다.
// 모든 실패는 *Error 로 정규화되어 반환된다.
//
// baseURL 예: http://ollama:11434, http://vllm_openai_container:8000
type Client struct {
	flavor   string
	short    *httpclient.BaseClient
	generate *httpclient.BaseClient
	stream   *httpclient.BaseClient
	pull     *httpclient.BaseClient
}

func New(cfg Config) *Client {
	if cfg.Flavor == "" {
		cfg.Flavor = FlavorOllama
	}
	base := func(timeout time.Duration) *httpclient.BaseClient {
		hc := httpclient.New(httpclient.Config{Timeout: timeout, Transport: cfg.Transport})
		return httpclient.NewBaseClientWithClient(hc, cfg.BaseURL)
	}
	return &Client{
		flavor:   cfg.Flavor,
		short:    base(cfg.ShortTimeout),
		generate: base(cfg.GenerateTimeout),
		stream:   base(cfg.StreamTimeout),
		pull:     base(cfg.PullTimeout),
	}
}

func (c *Client) Flavor() string { return c.flavor }

// Ping 은 모델 목록 엔드포인트를 호출해 200 이면 nil 을 반환한다. 다른 2xx 도 실패다.
func (c *Client) Ping(ctx context.Context) error {
	const op = "ping"
	resp, err := c.send(ctx, c.short, op, http.MethodGet, pathModels, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: ErrProtocol, Op: op, StatusCode: resp.StatusCode}
	}
	return nil
}

// ListModels 는 OpenAI 형식 모델 목록을 그대로 반환한다.
func (c *Client) ListModels(ctx context.Context) (RawMessage, error) {
	return c.doJSON(ctx, c.short, "list_models", http.MethodGet, pathModels, nil)
}

// Tags 는 Ollama 의 로컬 모델 목록(/api/tags)을 그대로 반환한다.
func (c *Client) Tags(ctx context.Context) (RawMessage, error) {
	if c.flavor != FlavorOllama {
		return nil, &Error{Kind: ErrUnsupported, Op: "tags"}
	}
	return c.doJSON(ctx, c.short, "tags", http.MethodGet, pathOllamaTags, nil)
}

// Complete 는 프롬프트로 unary 생성을 수행하고 앞뒤 공백을 제거한 텍스트를 반환한다.
func (c *Client) Complete(ctx context.Context, prompt string, params Params) (Completion, error) {
	const op = "complete"
	path, payload := c.generationPayload(prompt, params, false)

	body, err := c.doJSON(ctx, c.generate, op, http.MethodPost, path, payload)
	if err != nil {
		return Completion{}, err
	}

	switch c.flavor {
	case FlavorVLLM:
		var out vllmCompletionResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return Completion{}, protocolError(op, http.StatusOK, snippet(body), err)
		}
		if len(out.Choices) == 0 || out.Choices[0].Text == nil {
			return Completion{}, protocolError(op, http.StatusOK, snippet(body), fmt.Errorf("missing field choices[0].text"))
		}
		model := out.Model
		if model == "" {
			model = params.Model
		}
		return newCompletion(model, prompt, *out.Choices[0].Text), nil
	default:
		var out ollamaGenerateResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return Completion{}, protocolError(op, http.StatusOK, snippet(body), err)
		}
		if out.Response == nil {
			return Completion{}, protocolError(op, http.StatusOK, snippet(body), fmt.Errorf("missing field response"))
		}
		model := out.Model
		if model == "" {
			model = params.Model
		}
		return newCompletion(model, prompt, *out.Response), nil
	}
}

// Generate 는 /generate 프록시용 unary 호출이다. 응답은 backend 원본 그대로다.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (RawMessage, error) {
	req.Stream = false
	path, payload := c.rawGenerationPayload(req)
	return c.doJSON(ctx, c.generate, "generate", http.MethodPost, path, payload)
}

// DeleteModel 은 Ollama 로컬 저장소에서 모델을 삭제한다.
func (c *Client) DeleteModel(ctx context.Context, name string) error {
	const op = "delete_model"
	if c.flavor != FlavorOllama {
		return &Error{Kind: ErrUnsupported, Op: op}
	}

	resp, err := c.send(ctx, c.short, op, http.MethodDelete, pathOllamaDelete, ollamaModelRequest{Name: name})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	return nil
}

func (c *Client) generationPayload(prompt string, params Params, stream bool) (string, any) {
	if c.flavor == FlavorVLLM {
		return pathVLLMComplete, vllmCompletionRequest{
			Model:       params.Model,
			Prompt:      prompt,
			Temperature: params.Temperature,
			TopP:        params.TopP,
			MaxTokens:   params.MaxTokens,
			Stop:        params.Stop,
			Stream:      stream,
		}
	}
	return pathOllamaGen, ollamaGenerateRequest{
		Model:  params.Model,
		Prompt: prompt,
		Stream: stream,
		Options: ollamaOptions{
			Temperature: params.Temperature,
			TopP:        params.TopP,
			NumPredict:  params.MaxTokens,
			Stop:        params.Stop,
		},
	}
}

func (c *Client) rawGenerationPayload(req GenerateRequest) (string, any) {
	if c.flavor == FlavorVLLM {
		return pathVLLMComplete, req
	}
	return pathOllamaGen, req
}

// send 는 요청을 보내고 2xx 응답만 돌려준다. 그 외는 모두 *Error 다.
// 호출자는 성공 시 resp.Body 를 닫아야 한다.
func (c *Client) send(ctx context.Context, base *httpclient.BaseClient, op, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("backend %s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := base.NewRequest(ctx, method, path, nil, body)
	if err != nil {
		return nil, fmt.Errorf("backend %s: build request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := base.Do(req)
	if err != nil {
		return nil, classifyTransport(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
		kind := ErrProtocol
		if resp.StatusCode == http.StatusNotFound && op == "delete_model" {
			kind = ErrModelNotFound
		}
		return nil, &Error{Kind: kind, Op: op, StatusCode: resp.StatusCode, Body: string(errBody)}
	}
	return resp, nil
}

// doJSON 은 응답 바디를 모두 읽어 JSON 인지 확인한 뒤 그대로 반환한다.
func (c *Client) doJSON(ctx context.Context, base *httpclient.BaseClient, op, method, path string, payload any) (RawMessage, error) {
	resp, err := c.send(ctx, base, op, method, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	if !json.Valid(body) {
		return nil, protocolError(op, resp.StatusCode, snippet(body), fmt.Errorf("response is not valid JSON"))
	}
	return RawMessage(body), nil
}

func snippet(b []byte) string {
	if len(b) > maxErrorSnippet {
		return string(b[:maxErrorSnippet])
	}
	return string(b)
}
