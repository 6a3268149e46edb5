package dto

// GenerateRequestDTO 는 POST /generate 요청이다. 프롬프트는 가공 없이 backend 로 전달된다.
type GenerateRequestDTO struct {
	Model  string `json:"model" binding:"required" example:"qwen2.5:0.5b"`
	Prompt string `json:"prompt" binding:"required" example:"Why is the sky blue?"`
	Stream bool   `json:"stream"`
}

type PullRequestDTO struct {
	Name string `json:"name" binding:"required" example:"qwen2.5:0.5b"`
}
