package services

import (
	"errors"
	"net/http"

	"llm-controller/cmd/controller/clients/backendclient"
)

// 실패한 처리 단계. 로그와 스트림 에러 마커에 그대로 노출된다.
const (
	StageValidation  = "validation"
	StageRateLimit   = "rate_limit"
	StageHealthGate  = "health_gate"
	StageSession     = "session"
	StageBackendCall = "backend_call"
	StageStreamRelay = "stream_relay"
)

// StatusClientClosedRequest 는 클라이언트가 먼저 연결을 끊은 경우다. 응답은 실제로 전달되지 않는다.
const StatusClientClosedRequest = 499

// Error 는 handler 가 HTTP 응답으로 변환하는 유일한 에러 타입이다.
// Detail 은 클라이언트에 노출해도 되는 문장이고, Cause 는 로그에만 남긴다.
type Error struct {
	StatusCode int
	ErrorCode  string
	Stage      string
	Detail     string
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return "internal_error"
	}
	return e.ErrorCode
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(status int, code, stage, detail string, cause error) *Error {
	return &Error{StatusCode: status, ErrorCode: code, Stage: stage, Detail: detail, Cause: cause}
}

// ValidationError 는 요청 바디 검증 실패다. backend 호출 전에만 발생한다.
func ValidationError(cause error) *Error {
	return newError(http.StatusBadRequest, "invalid_request", StageValidation, "request body failed validation", cause)
}

func RateLimitError() *Error {
	return newError(http.StatusTooManyRequests, "rate_limit_exceeded", StageRateLimit, "too many requests, retry later", nil)
}

func BackendUnavailableError() *Error {
	return newError(http.StatusServiceUnavailable, "backend_unavailable", StageHealthGate, "backend service unavailable", nil)
}

func InternalError(stage string, cause error) *Error {
	return newError(http.StatusInternalServerError, "internal_error", stage, "internal server error", cause)
}

// normalizeBackendError 는 backendclient 에러를 HTTP 상태와 에러 코드로 정규화한다.
func normalizeBackendError(stage string, err error) *Error {
	switch {
	case errors.Is(err, backendclient.ErrCanceled):
		return newError(StatusClientClosedRequest, "request_canceled", stage, "request canceled by client", err)
	case errors.Is(err, backendclient.ErrTimeout):
		return newError(http.StatusGatewayTimeout, "backend_timeout", stage, "backend timed out", err)
	case errors.Is(err, backendclient.ErrUnreachable):
		return newError(http.StatusServiceUnavailable, "backend_unavailable", stage, "failed to connect to backend", err)
	case errors.Is(err, backendclient.ErrModelNotFound):
		return newError(http.StatusNotFound, "model_not_found", stage, "model not found", err)
	case errors.Is(err, backendclient.ErrUnsupported):
		return newError(http.StatusNotImplemented, "unsupported_operation", stage, "operation not supported by this backend", err)
	case errors.Is(err, backendclient.ErrStreamInterrupted):
		return newError(http.StatusBadGateway, "backend_stream_interrupted", StageStreamRelay, "backend stream interrupted", err)
	case errors.Is(err, backendclient.ErrProtocol):
		return newError(http.StatusBadGateway, "backend_protocol_error", stage, "backend returned an invalid response", err)
	default:
		return InternalError(stage, err)
	}
}
