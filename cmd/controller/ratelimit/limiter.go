// Package ratelimit 는 클라이언트 키(보통 IP) 단위 슬라이딩 윈도우 요청 제한을 제공한다.
// best-effort 제한이며 보안 경계가 아니다.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Driver string

const (
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
)

var (
	ErrInvalidDriver = errors.New("invalid rate limit driver")
	ErrMissingRedis  = errors.New("redis driver requires a redis client")
)

// Decision 은 한 번의 Admit 결과다.
type Decision struct {
	Allowed bool
	Limit   int
	// Remaining 은 이번 요청을 반영한 뒤 윈도우에 남은 허용 횟수다.
	Remaining int
	// RetryAfter 는 거절된 경우 가장 오래된 기록이 윈도우 밖으로 나가기까지 남은 시간이다.
	RetryAfter time.Duration
}

// Limiter 는 키별 슬라이딩 윈도우 카운터다.
type Limiter interface {
	// Admit 은 key 의 만료된 기록을 정리한 뒤 한도 미만이면 현재 시각을 기록하고 허용한다.
	Admit(ctx context.Context, key string) (Decision, error)
	// ActiveKeys 는 현재 추적 중인 키 수다.
	ActiveKeys(ctx context.Context) (int, error)
}

type Option func(*options)

type options struct {
	redisClient *redis.Client
	keyPrefix   string
	now         func() time.Time
}

// WithRedisClient 는 redis 드라이버가 사용할 클라이언트를 지정한다.
func WithRedisClient(client *redis.Client) Option {
	return func(o *options) { o.redisClient = client }
}

// WithKeyPrefix 는 redis 키 접두사를 바꾼다. 기본값은 "ratelimit:".
func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.keyPrefix = prefix }
}

// WithClock 은 테스트에서 시간을 주입할 때 사용한다.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New 는 driver 에 맞는 Limiter 를 만든다. limit 이 0 이하이면 모든 요청을 허용한다.
func New(driver Driver, limit int, window time.Duration, opts ...Option) (Limiter, error) {
	o := &options{keyPrefix: "ratelimit:", now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if window <= 0 {
		window = time.Minute
	}

	switch driver {
	case DriverMemory, "":
		return newMemoryLimiter(limit, window, o.now), nil
	case DriverRedis:
		if o.redisClient == nil {
			return nil, ErrMissingRedis
		}
		return newRedisLimiter(o.redisClient, o.keyPrefix, limit, window, o.now), nil
	default:
		return nil, ErrInvalidDriver
	}
}
