package limiter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/metrics"
)

type Config struct {
	GlobalRPS float64 `mapstructure:"global_rps"`
	RPS       float64 `mapstructure:"rps"`
	Burst     int     `mapstructure:"burst"`
	// MaxConcurrent caps in-flight requests; zero means no cap.
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// RateLimiter combines a global token bucket, one bucket per client IP and an
// optional cap on concurrent requests.
type RateLimiter struct {
	globalLimiter *rate.Limiter
	perIPLimiters sync.Map
	ipRate        rate.Limit
	ipBurst       int
	maxConcurrent int64
	currentConc   atomic.Int64
}

func NewRateLimiter(cfg Config) *RateLimiter {
	global := rate.Inf
	if cfg.GlobalRPS > 0 {
		global = rate.Limit(cfg.GlobalRPS)
	}
	ipRate := rate.Inf
	if cfg.RPS > 0 {
		ipRate = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		globalLimiter: rate.NewLimiter(global, int(cfg.GlobalRPS)*2+1),
		ipRate:        ipRate,
		ipBurst:       burst,
		maxConcurrent: int64(cfg.MaxConcurrent),
	}
}

func (rl *RateLimiter) getIPLimiter(ip string) *rate.Limiter {
	if l, ok := rl.perIPLimiters.Load(ip); ok {
		return l.(*rate.Limiter)
	}
	l, _ := rl.perIPLimiters.LoadOrStore(ip, rate.NewLimiter(rl.ipRate, rl.ipBurst))
	return l.(*rate.Limiter)
}

// Allow reserves a slot for ip. Every true result must be paired with Done.
func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.globalLimiter.Allow() || !rl.getIPLimiter(ip).Allow() {
		metrics.RateLimitHits.Inc()
		return false
	}

	if rl.maxConcurrent > 0 {
		if rl.currentConc.Add(1) > rl.maxConcurrent {
			rl.currentConc.Add(-1)
			metrics.RateLimitHits.Inc()
			return false
		}
	}
	return true
}

func (rl *RateLimiter) Done() {
	if rl.maxConcurrent > 0 {
		rl.currentConc.Add(-1)
	}
}

// Handler rejects requests over the limit with TooManyRequests.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			return apperr.New(apperr.TooManyRequests)
		}
		defer rl.Done()
		return c.Next()
	}
}

// StartCleanup drops the per-IP buckets every interval until ctx ends.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.perIPLimiters.Range(func(key, _ any) bool {
					rl.perIPLimiters.Delete(key)
					return true
				})
			}
		}
	}()
}
