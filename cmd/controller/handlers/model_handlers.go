package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/services"
)

const contentTypeJSON = "application/json; charset=utf-8"

// ListModelsHandler godoc
// @Summary      모델 목록 (OpenAI 형식)
// @Description  backend 의 /v1/models 응답을 그대로 전달한다. 헬스 게이트를 적용하지 않는다.
// @Tags         models
// @Produce      json
// @Success      200  {object}  object
// @Failure      429  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Failure      504  {object}  dto.ErrorResponseDTO
// @Router       /v1/models [get]
func ListModelsHandler(svc *services.ModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListModels(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, contentTypeJSON, out)
	}
}

// LocalModelsHandler godoc
// @Summary      로컬 모델 목록
// @Description  Ollama /api/tags 응답을 그대로 전달한다. vLLM backend 에서는 501.
// @Tags         models
// @Produce      json
// @Success      200  {object}  object
// @Failure      501  {object}  dto.ErrorResponseDTO
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Router       /models [get]
func LocalModelsHandler(svc *services.ModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.LocalModels(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, contentTypeJSON, out)
	}
}

// GenerateHandler godoc
// @Summary      프롬프트 그대로 생성
// @Description  프롬프트를 가공하지 않고 backend 생성 엔드포인트로 전달한다. stream=true 이면 backend 의 줄 단위 응답을 그대로 중계한다.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        body  body      dto.GenerateRequestDTO  true  "generate request"
// @Success      200   {object}  object
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Failure      503   {object}  dto.ErrorResponseDTO
// @Failure      504   {object}  dto.ErrorResponseDTO
// @Router       /generate [post]
func GenerateHandler(svc *services.ModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.GenerateRequestDTO
		if !bindJSON(c, &req) {
			return
		}

		if req.Stream {
			chunks, err := svc.GenerateStream(c.Request.Context(), req)
			if err != nil {
				writeError(c, err)
				return
			}
			writeStream(c, contentTypeNDJSON, chunks)
			return
		}

		out, err := svc.Generate(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, contentTypeJSON, out)
	}
}

// PullModelHandler godoc
// @Summary      모델 다운로드
// @Description  backend 가 success 상태를 보낼 때까지 기다린 뒤 마지막 상태를 반환한다.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PullRequestDTO  true  "pull request"
// @Success      200   {object}  object
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      501   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Failure      504   {object}  dto.ErrorResponseDTO
// @Router       /pull [post]
func PullModelHandler(svc *services.ModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.PullRequestDTO
		if !bindJSON(c, &req) {
			return
		}

		out, err := svc.Pull(c.Request.Context(), req.Name)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, contentTypeJSON, out)
	}
}

// DeleteModelHandler godoc
// @Summary      모델 삭제
// @Tags         models
// @Produce      json
// @Param        name  path      string  true  "model name"
// @Success      200   {object}  dto.MessageResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      501   {object}  dto.ErrorResponseDTO
// @Router       /models/{name} [delete]
func DeleteModelHandler(svc *services.ModelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.Delete(c.Request.Context(), c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
