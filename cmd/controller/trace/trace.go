package trace

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"llm-controller/cmd/internal/logger"
)

type ctxKey struct{}

const (
	HeaderRequestID = "X-Request-Id"
	HeaderSpanID    = "X-Span-Id"
)

// span 은 inbound 요청 하나의 추적 상태다. seq 는 backend 호출마다 1 씩 늘어난다.
// 스트리밍 중 producer goroutine 이 함께 읽으므로 atomic 으로만 접근한다.
type span struct {
	requestID string
	seq       atomic.Int64
}

// GenerateID 는 대시 없는 uuid 를 반환한다.
func GenerateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithRequestAndSpan 은 requestID 와 시작 span 값을 담은 컨텍스트를 반환한다.
func WithRequestAndSpan(ctx context.Context, requestID string, initialSpan int64) context.Context {
	s := &span{requestID: requestID}
	s.seq.Store(initialSpan)
	return context.WithValue(ctx, ctxKey{}, s)
}

func fromContext(ctx context.Context) *span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*span)
	return s
}

// RequestIDFromContext 는 inbound 요청 밖이면 빈 문자열이다.
func RequestIDFromContext(ctx context.Context) string {
	if s := fromContext(ctx); s != nil {
		return s.requestID
	}
	return ""
}

// CurrentSpanID 는 span 을 증가시키지 않고 읽는다.
func CurrentSpanID(ctx context.Context) string {
	s := fromContext(ctx)
	if s == nil {
		return "0"
	}
	return formatSpan(s.seq.Load())
}

// NextSpanID 는 backend 호출 한 번에 해당하는 (requestID, spanID) 를 반환한다.
// 헬스체크처럼 inbound 요청 밖에서 호출되면 새 requestID 와 span "1" 이다.
func NextSpanID(ctx context.Context) (string, string) {
	s := fromContext(ctx)
	if s == nil {
		return GenerateID(), "1"
	}
	return s.requestID, formatSpan(max(s.seq.Add(1), 1))
}

// Inject 는 outbound 요청에 다음 span 을 할당해 헤더로 싣는다.
// 컨텍스트에 추적 정보가 없고 호출자가 X-Request-Id 를 직접 넣었다면 그 값을 유지한다.
func Inject(req *http.Request) (requestID, spanID string) {
	requestID, spanID = NextSpanID(req.Context())
	if incoming := req.Header.Get(HeaderRequestID); incoming != "" && fromContext(req.Context()) == nil {
		requestID = incoming
	}
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set(HeaderSpanID, spanID)
	return requestID, spanID
}

// Fields 는 로그에 붙일 request_id 와 추가 필드를 합친다. extra 는 수정하지 않는다.
func Fields(ctx context.Context, extra logger.Fields) logger.Fields {
	fields := make(logger.Fields, len(extra)+1)
	for k, v := range extra {
		fields[k] = v
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields["request_id"] = id
	}
	return fields
}

func formatSpan(v int64) string {
	if v <= 0 {
		return "0"
	}
	return strconv.FormatInt(v, 10)
}
