package ratelimit

import (
	"context"
	"sync"
	"time"
)

// memoryLimiter 는 프로세스 내부 맵으로 윈도우를 관리한다.
// 키는 한 번 생기면 지워지지 않는다. 서로 다른 IP 가 많을수록 맵이 계속 커진다.
type memoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	windows map[string]*window
}

// window 는 한 키의 요청 시각 목록이다. 항상 시간순으로 쌓이므로 만료 정리는 앞부분 자르기다.
type window struct {
	mu     sync.Mutex
	stamps []time.Time
}

func newMemoryLimiter(limit int, w time.Duration, now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		limit:   limit,
		window:  w,
		now:     now,
		windows: make(map[string]*window),
	}
}

func (l *memoryLimiter) windowFor(key string) *window {
	l.mu.RLock()
	w, ok := l.windows[key]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.windows[key]; ok {
		return w
	}
	w = &window{}
	l.windows[key] = w
	return w
}

func (l *memoryLimiter) Admit(_ context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true, Limit: l.limit}, nil
	}

	w := l.windowFor(key)
	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	expired := 0
	for expired < len(w.stamps) && !w.stamps[expired].After(cutoff) {
		expired++
	}
	if expired > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[expired:]...)
	}

	if len(w.stamps) >= l.limit {
		return Decision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: w.stamps[0].Add(l.window).Sub(now),
		}, nil
	}

	w.stamps = append(w.stamps, now)
	return Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(w.stamps),
	}, nil
}

func (l *memoryLimiter) ActiveKeys(context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.windows), nil
}
