package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	_ "llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/services"
)

// RootHandler godoc
// @Summary      컨트롤러 상태
// @Tags         status
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Router       / [get]
func RootHandler(svc *services.StatusService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Root(c.Request.Context()))
	}
}

// HealthHandler godoc
// @Summary      헬스체크
// @Description  backend 가 응답하지 않으면 status=degraded 를 반환한다. 응답 코드는 항상 200 이다.
// @Tags         status
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Router       /health [get]
func HealthHandler(svc *services.StatusService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Health(c.Request.Context()))
	}
}

// MetricsHandler godoc
// @Summary      운영 메트릭
// @Tags         status
// @Produce      json
// @Success      200  {object}  dto.MetricsResponseDTO
// @Router       /metrics [get]
func MetricsHandler(svc *services.StatusService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Metrics(c.Request.Context()))
	}
}
