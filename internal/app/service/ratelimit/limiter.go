package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/pkg/config"
)

var ErrInvalidLimit = errors.New("ratelimit: max requests and window must be positive")

// Limit allows MaxRequests per key within any sliding Window.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

func (l Limit) validate() error {
	if l.MaxRequests <= 0 || l.Window <= 0 {
		return fmt.Errorf("%w: %d/%s", ErrInvalidLimit, l.MaxRequests, l.Window)
	}
	return nil
}

// LimitFromRule converts a configured rule.
func LimitFromRule(r config.RateLimitRule) Limit {
	return Limit{MaxRequests: r.MaxRequests, Window: r.Window()}
}

type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is set on denials and equals the limit window.
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit Limit) (Decision, error)
}

type Params struct {
	fx.In

	Cfg   *config.Config
	Redis *goredis.Client `optional:"true"`
	Log   *zap.SugaredLogger
}

// NewLimiter picks the backend named by rate_limit.backend.
func NewLimiter(p Params) (Limiter, error) {
	switch p.Cfg.RateLimit.Backend {
	case config.RateLimitBackendRedis:
		if p.Redis == nil {
			return nil, errors.New("ratelimit: redis backend selected but redis is not configured")
		}
		p.Log.Infow("rate limiter backend", "backend", "redis")
		return NewRedis(p.Redis), nil
	case config.RateLimitBackendMemory, "":
		p.Log.Infow("rate limiter backend", "backend", "memory")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("ratelimit: unknown backend %q", p.Cfg.RateLimit.Backend)
	}
}

var Module = fx.Options(
	fx.Provide(NewLimiter),
)
