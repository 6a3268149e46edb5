package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/services"
)

// GetSessionHandler godoc
// @Summary      세션 이력 조회
// @Description  없는 세션은 빈 이력으로 응답한다.
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "세션 ID"
// @Success      200  {object}  dto.SessionResponseDTO
// @Router       /sessions/{id} [get]
func GetSessionHandler(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Get(c.Param("id")))
	}
}

// DeleteSessionHandler godoc
// @Summary      세션 이력 삭제
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "세션 ID"
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /sessions/{id} [delete]
func DeleteSessionHandler(svc *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !svc.Clear(id) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("session_not_found", fmt.Sprintf("session %s not found", id), requestID(c)))
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: fmt.Sprintf("Session %s cleared", id)})
	}
}
