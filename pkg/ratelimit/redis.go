package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

// admitScript performs steps 1-3 of the shared-store algorithm (§4.4)
// atomically: prune entries older than the window, count what remains, and
// admit by adding (now, uniqueTag) only if still under the limit.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowMs = tonumber(ARGV[2])
local maxRequests = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - windowMs)
local count = redis.call('ZCARD', key)

if count < maxRequests then
  redis.call('ZADD', key, now, member)
  redis.call('PEXPIRE', key, windowMs)
  return {1, maxRequests - count - 1}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if #oldest == 2 then
  oldestScore = tonumber(oldest[2])
end
return {0, 0, oldestScore}
`)

// RedisLimiter is the shared-store backend: an external ordered set per
// (limiterName, key), pruned and admitted atomically via a Lua script.
type RedisLimiter struct {
	client    redis.Scripter
	configs   map[string]Config
	keyPrefix string
	timeout   time.Duration
}

// NewRedisLimiter wraps client. Every call against the same key is atomic
// with respect to concurrent admissions, and bounded by timeout.
func NewRedisLimiter(client redis.Scripter, keyPrefix string, timeout time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, configs: map[string]Config{}, keyPrefix: keyPrefix, timeout: timeout}
}

// Configure registers the (maxRequests, window) pair for limiterName.
func (r *RedisLimiter) Configure(limiterName string, cfg Config) {
	r.configs[limiterName] = cfg
}

func (r *RedisLimiter) redisKey(limiterName, key string) string {
	return fmt.Sprintf("%s%s:%s", r.keyPrefix, limiterName, key)
}

// Admit implements Limiter. Any failure (timeout, connection error, script
// error) is returned to the caller unwrapped; FallbackLimiter is
// responsible for degrading to memory on that failure.
func (r *RedisLimiter) Admit(ctx context.Context, limiterName, key string) (Decision, error) {
	cfg, ok := r.configs[limiterName]
	if !ok {
		return Decision{}, apierrors.NewConfigurationInvalid("limiterName", "no rate limit configured for "+limiterName)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	member := uuid.NewString()

	res, err := admitScript.Run(ctx, r.client,
		[]string{r.redisKey(limiterName, key)},
		now.UnixMilli(), cfg.Window.Milliseconds(), cfg.MaxRequests, member,
	).Slice()
	if err != nil {
		return Decision{}, err
	}

	admitted, ok := toInt64(res[0])
	if !ok {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply")
	}

	if admitted == 1 {
		remaining, _ := toInt64(res[1])
		return Decision{Admitted: true, Remaining: int(remaining), ResetAt: now.Add(cfg.Window)}, nil
	}

	oldestMs, _ := toInt64(res[2])
	resetAt := time.UnixMilli(oldestMs).Add(cfg.Window)
	return Decision{Admitted: false, Remaining: 0, ResetAt: resetAt}, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
