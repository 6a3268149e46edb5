package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/services"
)

// ChatCompletionsHandler godoc
// @Summary      OpenAI 호환 채팅
// @Description  메시지 목록을 하나의 프롬프트로 변환해 backend 에 생성을 요청한다.
// @Description  stream=true 이면 text/plain 조각으로 응답하고, 중간 실패는 "[Error] <stage>: <detail>" 마커로 본문 끝에 붙는다.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Produce      plain
// @Param        body  body      dto.ChatCompletionRequestDTO  true  "chat completion request"
// @Success      200   {object}  dto.ChatCompletionResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Failure      503   {object}  dto.ErrorResponseDTO  "backend unhealthy or unreachable"
// @Failure      504   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /v1/chat/completions [post]
func ChatCompletionsHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChatCompletionRequestDTO
		if !bindJSON(c, &req) {
			return
		}

		if req.Stream {
			chunks, err := svc.StreamComplete(c.Request.Context(), req)
			if err != nil {
				writeError(c, err)
				return
			}
			writeStream(c, contentTypeText, chunks)
			return
		}

		resp, err := svc.Complete(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ChatInferenceHandler godoc
// @Summary      세션 기반 채팅
// @Description  session_id 의 이전 대화와 CHAT_INPUT 을 합쳐 응답을 생성하고, 입력과 응답을 세션에 저장한다.
// @Description  같은 세션의 요청은 한 턴씩 순서대로 처리된다. 스트림이 중간에 끊기면 세션에 저장하지 않는다.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Produce      plain
// @Param        body  body      dto.ChatInferenceRequestDTO  true  "chat inference request"
// @Success      200   {object}  dto.ChatInferenceResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Failure      503   {object}  dto.ErrorResponseDTO
// @Failure      504   {object}  dto.ErrorResponseDTO
// @Router       /chatinference [post]
func ChatInferenceHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChatInferenceRequestDTO
		if !bindJSON(c, &req) {
			return
		}

		if req.Stream {
			chunks, err := svc.ChatInferenceStream(c.Request.Context(), req)
			if err != nil {
				writeError(c, err)
				return
			}
			writeStream(c, contentTypeText, chunks)
			return
		}

		resp, err := svc.ChatInference(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
