package backendclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// backend 호출 실패 분류. errors.Is 로 비교한다.
var (
	ErrUnreachable       = errors.New("backend_unreachable")
	ErrTimeout           = errors.New("backend_timeout")
	ErrProtocol          = errors.New("backend_protocol_error")
	ErrStreamInterrupted = errors.New("backend_stream_interrupted")
	ErrModelNotFound     = errors.New("model_not_found")
	ErrUnsupported       = errors.New("unsupported_operation")
	ErrCanceled          = errors.New("request_canceled")
)

// Error 는 backend 경계에서 모든 실패를 감싸는 타입이다. 원본 transport 에러는 Err 로만 남는다.
type Error struct {
	Kind       error
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("backend %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	if e.Body != "" {
		msg += " body=" + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classifyTransport 는 요청 전송/응답 수신 단계의 에러를 분류한다.
func classifyTransport(op string, err error) error {
	kind := ErrUnreachable
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		kind = ErrCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = ErrTimeout
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func protocolError(op string, status int, body string, err error) error {
	return &Error{Kind: ErrProtocol, Op: op, StatusCode: status, Body: body, Err: err}
}
