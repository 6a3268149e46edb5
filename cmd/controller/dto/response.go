package dto

import "time"

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Error     string    `json:"error" example:"backend_unavailable"`
	Detail    string    `json:"detail,omitempty" example:"backend health check failed"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty" example:"3f0c1e8a9b2d4c6e8f0a1b2c3d4e5f60"`
}

// MessageResponseDTO는 단순 메시지 응답 형식을 통일하기 위한 DTO이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"Model qwen2.5:0.5b deleted"`
}

func NewErrorResponse(code, detail, requestID string) ErrorResponseDTO {
	return ErrorResponseDTO{Error: code, Detail: detail, Timestamp: time.Now().UTC(), RequestID: requestID}
}
