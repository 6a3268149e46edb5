package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript 는 만료 정리, 카운트, 기록을 한 번에 수행한다.
// 여러 컨트롤러 인스턴스가 같은 키를 동시에 갱신해도 read-then-write 경합이 없다.
//
// KEYS[1] = 윈도우 키, ARGV = now(ms), window(ms), limit, member
// 반환값 = {allowed(0|1), count, oldest(ms)}
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, count, tonumber(oldest[2]) or now}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, now}
`)

// redisLimiter 는 sorted set 으로 윈도우를 공유한다.
// 메모리 드라이버와 달리 키는 PEXPIRE 로 윈도우가 지나면 사라진다.
type redisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func newRedisLimiter(client *redis.Client, prefix string, limit int, w time.Duration, now func() time.Time) *redisLimiter {
	return &redisLimiter{client: client, prefix: prefix, limit: limit, window: w, now: now}
}

func (l *redisLimiter) Admit(ctx context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true, Limit: l.limit}, nil
	}

	nowMs := l.now().UnixMilli()
	windowMs := l.window.Milliseconds()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	res, err := slidingWindowScript.Run(ctx, l.client, []string{l.prefix + key}, nowMs, windowMs, l.limit, member).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit redis admit: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit redis admit: unexpected reply %v", res)
	}

	count := int(res[1])
	if res[0] == 0 {
		retry := time.Duration(res[2]+windowMs-nowMs) * time.Millisecond
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, Limit: l.limit, RetryAfter: retry}, nil
	}
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - count}, nil
}

func (l *redisLimiter) ActiveKeys(ctx context.Context) (int, error) {
	count := 0
	iter := l.client.Scan(ctx, 0, l.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("ratelimit redis scan: %w", err)
	}
	return count, nil
}
