package session

import (
	"context"
	"sync"
	"time"

	"llm-controller/cmd/controller/prompt"
)

// DefaultKey 는 session_id 를 보내지 않은 호출자가 공유하는 세션 키다.
const DefaultKey = "default"

// Store 는 세션 키별 대화 기록을 프로세스 메모리에 보관한다.
//
// - 세션 맵은 RWMutex 로, 각 세션의 메시지는 세션 전용 Mutex 로 보호한다.
//   서로 다른 키는 맵 조회 이후 경합하지 않는다.
// - 같은 키에 대한 Append 는 호출 순서대로 모두 반영된다.
// - 세션은 Append 로만 생긴다. 턴 잠금은 별도 맵이라 실패한 턴은 세션을 남기지 않는다.
// - 자동 정리는 하지 않는다. 키 수와 기록 길이는 프로세스 수명 동안 계속 늘어난다.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chatSession
	now      func() time.Time

	turnsMu sync.Mutex
	// turns 의 값은 용량 1짜리 세마포어다. 한 세션의 "기록 조회 → backend 호출 → 기록 추가"
	// 전체를 직렬화할 때 사용한다.
	turns map[string]chan struct{}
}

type chatSession struct {
	mu        sync.Mutex
	messages  []prompt.Message
	updatedAt time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*chatSession),
		now:      time.Now,
		turns:    make(map[string]chan struct{}),
	}
}

func (s *Store) lookup(key string) *chatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[key]
}

func (s *Store) getOrCreate(key string) *chatSession {
	if sess := s.lookup(key); sess != nil {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	sess := &chatSession{}
	s.sessions[key] = sess
	return sess
}

// GetHistory 는 key 의 기록 사본을 반환한다. 처음 보는 key 면 빈 슬라이스를 반환하며
// 세션을 만들지 않는다.
func (s *Store) GetHistory(key string) []prompt.Message {
	sess := s.lookup(key)
	if sess == nil {
		return []prompt.Message{}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]prompt.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Append 는 필요하면 세션을 만들고 messages 를 순서대로 덧붙인다.
func (s *Store) Append(key string, messages ...prompt.Message) {
	if len(messages) == 0 {
		return
	}
	sess := s.getOrCreate(key)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.messages = append(sess.messages, messages...)
	sess.updatedAt = s.now()
}

// Clear 는 key 세션을 지운다. 세션이 존재했으면 true.
// 진행 중인 턴이 끝나며 Append 하면 세션은 새로 만들어진다.
func (s *Store) Clear(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; !ok {
		return false
	}
	delete(s.sessions, key)
	return true
}

// Len 은 기록이 있는 세션 수다.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// AcquireTurn 은 key 세션의 턴 잠금을 얻을 때까지 기다린다.
// ctx 가 먼저 끝나면 ctx.Err() 를 반환한다. 반환된 release 는 정확히 한 번 호출해야 한다.
func (s *Store) AcquireTurn(ctx context.Context, key string) (func(), error) {
	turn := s.turnFor(key)

	select {
	case turn <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-turn })
	}, nil
}

func (s *Store) turnFor(key string) chan struct{} {
	s.turnsMu.Lock()
	defer s.turnsMu.Unlock()
	turn, ok := s.turns[key]
	if !ok {
		turn = make(chan struct{}, 1)
		s.turns[key] = turn
	}
	return turn
}
