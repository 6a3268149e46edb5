package backendclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"llm-controller/cmd/internal/logger"
)

// lineDecoder 는 스트림 한 줄을 해석한다.
//   - skip: 무시할 줄(빈 줄, 깨진 JSON, 알 수 없는 SSE 필드)
//   - done: 이 줄의 fragment 를 보낸 뒤 스트림을 끝낸다
//   - err: backend 가 스트림 중간에 보낸 에러 레코드
type lineDecoder func(line []byte) (fragment string, done, skip bool, err error)

// Stream 은 생성 결과를 조각 단위로 흘려보낸다.
//
// 연결 실패나 비정상 상태코드처럼 첫 응답 전에 발생한 에러는 바로 반환한다.
// 이후의 실패는 채널의 마지막 이벤트(Err != nil)로 전달된다. 채널은 항상 닫힌다.
// 호출자는 채널을 끝까지 읽거나 ctx 를 취소해야 한다. ctx 가 취소되면 producer 는
// 즉시 멈추고 backend 연결을 닫는다.
func (c *Client) Stream(ctx context.Context, prompt string, params Params) (<-chan StreamEvent, error) {
	const op = "stream"
	path, payload := c.generationPayload(prompt, params, true)

	resp, err := c.send(ctx, c.stream, op, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	decode := decodeOllamaLine
	if c.flavor == FlavorVLLM {
		decode = decodeVLLMLine
	}
	return relay(ctx, op, resp, decode), nil
}

// GenerateStream 은 /generate 프록시용 스트림이다. backend 가 보낸 줄을 변형 없이
// (줄바꿈 포함) 전달하고, 완료 레코드를 만나면 멈춘다.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest) (<-chan StreamEvent, error) {
	const op = "generate_stream"
	req.Stream = true
	path, payload := c.rawGenerationPayload(req)

	resp, err := c.send(ctx, c.stream, op, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	done := func(line []byte) bool { return gjson.GetBytes(line, "done").Bool() }
	if c.flavor == FlavorVLLM {
		done = func(line []byte) bool { return bytes.Equal(bytes.TrimSpace(line), []byte("data: [DONE]")) }
	}
	return relay(ctx, op, resp, func(line []byte) (string, bool, bool, error) {
		if len(bytes.TrimSpace(line)) == 0 {
			return "", false, true, nil
		}
		return string(line) + "\n", done(line), false, nil
	}), nil
}

func relay(ctx context.Context, op string, resp *http.Response, decode lineDecoder) <-chan StreamEvent {
	events := make(chan StreamEvent)

	go func() {
		defer close(events)
		defer resp.Body.Close()

		emit := func(ev StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, readErr := reader.ReadBytes('\n')
			line = bytes.TrimRight(line, "\r\n")

			if len(line) > 0 {
				fragment, done, skip, lineErr := decode(line)
				switch {
				case lineErr != nil:
					emit(StreamEvent{Err: &Error{Kind: ErrStreamInterrupted, Op: op, Err: lineErr}})
					return
				case skip:
					logger.DebugWithFields("backend stream line skipped", logger.Fields{"op": op, "line": snippet(line)})
				case fragment != "":
					if !emit(StreamEvent{Fragment: fragment}) {
						return
					}
				}
				if done {
					return
				}
			}

			if readErr != nil {
				if errors.Is(readErr, io.EOF) || ctx.Err() != nil {
					return
				}
				emit(StreamEvent{Err: &Error{Kind: ErrStreamInterrupted, Op: op, Err: readErr}})
				return
			}
		}
	}()

	return events
}

func decodeOllamaLine(line []byte) (string, bool, bool, error) {
	var chunk ollamaGenerateResponse
	if err := json.Unmarshal(line, &chunk); err != nil {
		return "", false, true, nil
	}
	if chunk.Error != "" {
		return "", false, false, errors.New(chunk.Error)
	}
	if chunk.Response == nil && !chunk.Done {
		return "", false, true, nil
	}
	fragment := ""
	if chunk.Response != nil {
		fragment = *chunk.Response
	}
	return fragment, chunk.Done, false, nil
}

func decodeVLLMLine(line []byte) (string, bool, bool, error) {
	data, ok := bytes.CutPrefix(bytes.TrimSpace(line), []byte("data:"))
	if !ok {
		return "", false, true, nil
	}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("[DONE]")) {
		return "", true, false, nil
	}

	var chunk struct {
		vllmCompletionResponse
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", false, true, nil
	}
	if chunk.Error != nil {
		return "", false, false, fmt.Errorf("%s", chunk.Error.Message)
	}
	if len(chunk.Choices) == 0 {
		return "", false, true, nil
	}
	choice := chunk.Choices[0]
	fragment := ""
	if choice.Text != nil {
		fragment = *choice.Text
	}
	return fragment, choice.FinishReason != nil, false, nil
}

// Pull 은 Ollama 에 모델 다운로드를 요청하고, 스트림으로 오는 상태 줄을
// status == "success" 가 나올 때까지 읽는다. 마지막으로 해석한 상태 줄을 반환한다.
// 상태 줄이 하나도 없으면 nil, nil 을 반환한다.
func (c *Client) Pull(ctx context.Context, name string) (RawMessage, error) {
	const op = "pull"
	if c.flavor != FlavorOllama {
		return nil, &Error{Kind: ErrUnsupported, Op: op}
	}

	resp, err := c.send(ctx, c.pull, op, http.MethodPost, pathOllamaPull, ollamaModelRequest{Name: name})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var last RawMessage
	reader := bufio.NewReader(resp.Body)
	for {
		line, readErr := reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)

		if len(line) > 0 && gjson.ValidBytes(line) {
			if msg := gjson.GetBytes(line, "error"); msg.Exists() {
				return nil, protocolError(op, resp.StatusCode, snippet(line), errors.New(msg.String()))
			}
			last = append(RawMessage(nil), line...)
			if gjson.GetBytes(line, "status").String() == "success" {
				return last, nil
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return last, nil
			}
			return nil, classifyTransport(op, readErr)
		}
	}
}
