package services

import (
	"llm-controller/cmd/controller/dto"
)

type SessionService struct {
	sessions SessionStore
}

func NewSessionService(sessions SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

// Get 은 저장된 이력을 반환한다. 없는 세션은 빈 이력이다.
func (s *SessionService) Get(id string) dto.SessionResponseDTO {
	key := sessionKey(id)
	return dto.SessionResponseDTO{SessionID: key, Messages: toSessionMessages(s.sessions.GetHistory(key))}
}

// Clear 는 세션을 삭제한다. 세션이 없었으면 false 다.
func (s *SessionService) Clear(id string) bool {
	return s.sessions.Clear(sessionKey(id))
}
