// Package prompt 는 구조화된 메시지 목록을 backend 의 raw generation 엔드포인트가
// 받는 단일 프롬프트 문자열로 변환한다.
package prompt

import "strings"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AssistantCue 는 프롬프트 마지막 줄이다. backend 가 assistant 차례부터 이어 쓰게 한다.
const AssistantCue = "Assistant:"

// StopSequences 는 모델이 다음 화자의 턴까지 생성하지 않도록 backend 에 넘기는 stop 목록이다.
var StopSequences = []string{"User:", "System:", "Assistant:"}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RoleLabel 은 role 을 프롬프트 라벨로 바꾼다. 알 수 없는 role 은 User 로 취급한다.
func RoleLabel(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleSystem:
		return "System"
	case RoleAssistant:
		return "Assistant"
	default:
		return "User"
	}
}

// Format 은 메시지마다 "{Label}: {content}" 한 줄을 만들고 마지막에 AssistantCue 를 붙인다.
// 입력 슬라이스는 읽기만 한다.
func Format(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(RoleLabel(m.Role))
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteByte('\n')
	}
	b.WriteString(AssistantCue)
	return b.String()
}
