// Package health 는 backend 생존 여부를 주기적으로 확인하고 그 결과를 캐시한다.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"llm-controller/cmd/internal/logger"
)

// Prober 는 backend 의 모델 목록 엔드포인트를 한 번 호출한다.
// HTTP 200 이면 nil, 그 외(네트워크 오류, 타임아웃, 비정상 상태코드)는 모두 error 다.
type Prober interface {
	Ping(ctx context.Context) error
}

// State 는 마지막 확인 결과다.
type State struct {
	Healthy     bool
	LastChecked time.Time
}

// Monitor 는 interval 동안 결과를 재사용한다. 만료 후 동시에 들어온 호출은
// 하나의 probe 결과를 공유하므로 장애 중에도 확인 요청이 몰리지 않는다.
type Monitor struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	state State

	group  singleflight.Group
	probes atomic.Int64
}

type Option func(*Monitor)

// WithClock 은 테스트에서 시간을 주입할 때 사용한다.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

func NewMonitor(prober Prober, interval, timeout time.Duration, opts ...Option) *Monitor {
	m := &Monitor{
		prober:   prober,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		// 첫 확인 전까지는 정상으로 간주한다. lastChecked 가 zero 이므로 첫 호출에서 바로 확인한다.
		state: State{Healthy: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsHealthy 는 캐시가 유효하면 네트워크 호출 없이 캐시 값을 반환한다.
func (m *Monitor) IsHealthy(ctx context.Context) bool {
	if state, fresh := m.cached(); fresh {
		return state.Healthy
	}

	v, _, _ := m.group.Do("probe", func() (any, error) {
		if state, fresh := m.cached(); fresh {
			return state.Healthy, nil
		}
		return m.probe(ctx), nil
	})
	return v.(bool)
}

// Refresh 는 캐시를 무시하고 즉시 확인한다. 기동 시 한 번 호출한다.
func (m *Monitor) Refresh(ctx context.Context) bool {
	v, _, _ := m.group.Do("probe", func() (any, error) {
		return m.probe(ctx), nil
	})
	return v.(bool)
}

// Snapshot 은 네트워크 호출 없이 마지막 결과를 반환한다.
func (m *Monitor) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Probes 는 지금까지 실제로 수행한 확인 횟수다.
func (m *Monitor) Probes() int64 {
	return m.probes.Load()
}

func (m *Monitor) cached() (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fresh := !m.state.LastChecked.IsZero() && m.now().Sub(m.state.LastChecked) < m.interval
	return m.state, fresh
}

func (m *Monitor) probe(ctx context.Context) bool {
	m.probes.Add(1)

	// 결과는 모든 요청이 공유하므로 첫 호출자의 취소에 묶이지 않게 한다.
	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	err := m.prober.Ping(probeCtx)
	healthy := err == nil

	m.mu.Lock()
	prev := m.state.Healthy
	m.state = State{Healthy: healthy, LastChecked: m.now()}
	m.mu.Unlock()

	fields := logger.Fields{"backend_healthy": healthy}
	if err != nil {
		fields["error"] = err.Error()
		logger.WarnWithFields("backend health check failed", fields)
	} else if healthy != prev {
		logger.InfoWithFields("backend health check recovered", fields)
	} else {
		logger.DebugWithFields("backend health check", fields)
	}
	return healthy
}
