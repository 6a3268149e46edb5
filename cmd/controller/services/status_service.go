package services

import (
	"context"
	"time"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/ratelimit"
	"llm-controller/cmd/internal/logger"
)

const (
	StatusRunning  = "Controller is up and running!"
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// StatusService 는 헬스/메트릭 응답을 만든다. 두 엔드포인트 모두 rate limit 대상이 아니다.
type StatusService struct {
	health   HealthChecker
	limiter  ratelimit.Limiter
	sessions SessionStore
	counters *Counters
	version  string
	started  time.Time
	now      func() time.Time
}

func NewStatusService(health HealthChecker, limiter ratelimit.Limiter, sessions SessionStore, counters *Counters, version string) *StatusService {
	return &StatusService{
		health:   health,
		limiter:  limiter,
		sessions: sessions,
		counters: counters,
		version:  version,
		started:  time.Now(),
		now:      time.Now,
	}
}

// Root 는 GET / 응답이다.
func (s *StatusService) Root(ctx context.Context) dto.HealthResponseDTO {
	return dto.HealthResponseDTO{
		Status:         StatusRunning,
		BackendHealthy: s.health.IsHealthy(ctx),
		Version:        s.version,
		Timestamp:      s.now(),
	}
}

// Health 는 GET /health 응답이다. backend 상태와 무관하게 항상 200 으로 응답한다.
func (s *StatusService) Health(ctx context.Context) dto.HealthResponseDTO {
	healthy := s.health.IsHealthy(ctx)
	status := StatusHealthy
	if !healthy {
		status = StatusDegraded
	}
	return dto.HealthResponseDTO{
		Status:         status,
		BackendHealthy: healthy,
		Version:        s.version,
		Timestamp:      s.now(),
	}
}

// Metrics 는 캐시된 헬스 상태만 읽는다. 메트릭 조회가 헬스체크를 유발하지 않는다.
func (s *StatusService) Metrics(ctx context.Context) dto.MetricsResponseDTO {
	state := s.health.Snapshot()
	now := s.now()

	activeKeys, err := s.limiter.ActiveKeys(ctx)
	if err != nil {
		logger.WarnWithFields("failed to count active rate limit keys", logger.Fields{"error": err.Error()})
		activeKeys = -1
	}

	out := dto.MetricsResponseDTO{
		BackendHealthy:           state.Healthy,
		ActiveRateLimits:         activeKeys,
		ActiveSessions:           s.sessions.Len(),
		RequestsTotal:            s.counters.Requests(),
		RateLimitedTotal:         s.counters.RateLimited(),
		BackendErrorsTotal:       s.counters.BackendErrors(),
		StreamInterruptionsTotal: s.counters.StreamInterruptions(),
		UptimeSeconds:            int64(now.Sub(s.started).Seconds()),
		Timestamp:                now,
	}
	if !state.LastChecked.IsZero() {
		lastChecked := state.LastChecked
		out.LastHealthCheck = &lastChecked
	}
	return out
}
