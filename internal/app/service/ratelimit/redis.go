package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// slidingWindow keeps one sorted-set member per hit, scored by its time in
// milliseconds. Returns {allowed, remaining}.
var slidingWindow = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	redis.call('PEXPIRE', key, window)
	return {0, 0}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, limit - count - 1}
`)

// Redis shares the limit across every instance using the same server.
type Redis struct {
	client goredis.Scripter
	now    func() time.Time
}

func NewRedis(client goredis.Scripter) *Redis {
	return &Redis{client: client, now: time.Now}
}

func (r *Redis) Allow(ctx context.Context, key string, limit Limit) (Decision, error) {
	if err := limit.validate(); err != nil {
		return Decision{}, err
	}
	now := r.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := slidingWindow.Run(ctx, r.client, []string{redisKeyPrefix + key},
		now, limit.Window.Milliseconds(), limit.MaxRequests, member).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: redis: unexpected reply %v", res)
	}
	if res[0] == 0 {
		return Decision{Allowed: false, RetryAfter: limit.Window}, nil
	}
	return Decision{Allowed: true, Remaining: int(res[1])}, nil
}
