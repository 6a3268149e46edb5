package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"llm-controller/cmd/controller/handlers"
	"llm-controller/cmd/controller/middleware"
	"llm-controller/cmd/controller/ratelimit"
	"llm-controller/cmd/controller/services"
	"llm-controller/cmd/controller/trace"
	_ "llm-controller/docs"
)

// Dependencies 는 serve 시작 시 한 번 만들어져 라우터에 주입된다.
type Dependencies struct {
	Chat     *services.ChatService
	Models   *services.ModelService
	Status   *services.StatusService
	Sessions *services.SessionService
	Limiter  ratelimit.Limiter
	Counters *services.Counters

	TrustedProxies []string
}

// New 는 라우트 테이블을 구성한다.
// 상태 조회(/, /health, /metrics, /swagger)는 rate limit 을 적용하지 않는다.
func New(deps Dependencies) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())
	r.Use(middleware.RequestLoggingMiddleware())

	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("router: trusted proxies: %w", err)
	}

	// Status
	r.GET("/", handlers.RootHandler(deps.Status))
	r.GET("/health", handlers.HealthHandler(deps.Status))
	r.GET("/metrics", handlers.MetricsHandler(deps.Status))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	proxied := r.Group("/")
	proxied.Use(middleware.RateLimit(deps.Limiter, deps.Counters))
	{
		proxied.GET("/v1/models", handlers.ListModelsHandler(deps.Models))
		proxied.POST("/v1/chat/completions", handlers.ChatCompletionsHandler(deps.Chat))
		proxied.POST("/chatinference", handlers.ChatInferenceHandler(deps.Chat))

		proxied.GET("/models", handlers.LocalModelsHandler(deps.Models))
		proxied.DELETE("/models/:name", handlers.DeleteModelHandler(deps.Models))
		proxied.POST("/generate", handlers.GenerateHandler(deps.Models))
		proxied.POST("/pull", handlers.PullModelHandler(deps.Models))

		proxied.GET("/sessions/:id", handlers.GetSessionHandler(deps.Sessions))
		proxied.DELETE("/sessions/:id", handlers.DeleteSessionHandler(deps.Sessions))
	}

	return r, nil
}

// WithCORS 는 엔진을 CORS 핸들러로 감싼다. origins 가 비어 있으면 모든 origin 을 허용한다.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{trace.HeaderRequestID, trace.HeaderSpanID, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
	}).Handler(h)
}
