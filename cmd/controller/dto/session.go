package dto

// SessionResponseDTO 는 GET /sessions/{id} 응답이다.
type SessionResponseDTO struct {
	SessionID string           `json:"session_id" example:"default"`
	Messages  []SessionMessageDTO `json:"messages"`
}
