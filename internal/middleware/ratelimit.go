package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"

	"github.com/innovatorsofhonour/innovators/internal/app/metrics"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// maxMemoryKeys bounds the bucket table; it is reset when full.
const maxMemoryKeys = 10000

// MemoryLimiter keeps a token bucket per key in process memory.
type MemoryLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewMemoryLimiter creates a per-process limiter.
func NewMemoryLimiter(requestsPerSecond float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Allow consumes one token from key's bucket.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, exists := l.limiters[key]
	if !exists {
		if len(l.limiters) >= maxMemoryKeys {
			l.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow(), nil
}

// RedisLimiter counts requests per key in fixed one-second windows shared by
// every process using the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter creates a limiter allowing limit requests per second per key.
func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RedisLimiter{client: client, limit: int64(limit), window: time.Second, prefix: "innovators:ratelimit:"}
}

// Allow increments key's counter for the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := l.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, 2*l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// RateLimiter applies a Limiter to state-changing requests.
type RateLimiter struct {
	limiter Limiter
	limit   int
	exempt  func(*http.Request) bool
	log     *logger.Logger
}

// NewRateLimiter wraps limiter. limit is reported in the 429 message.
func NewRateLimiter(limiter Limiter, limit int, log *logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.NewDefault("ratelimit")
	}
	return &RateLimiter{limiter: limiter, limit: limit, log: log}
}

// Exempt lets requests matching fn bypass the limiter.
func (rl *RateLimiter) Exempt(fn func(*http.Request) bool) *RateLimiter {
	rl.exempt = fn
	return rl
}

// Handler returns the rate limiting middleware handler. Only POST requests
// are counted; reads are never limited. Limiter backend failures let the
// request through.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || (rl.exempt != nil && rl.exempt(r)) {
			next.ServeHTTP(w, r)
			return
		}

		key := clientKey(r)
		allowed, err := rl.limiter.Allow(r.Context(), key)
		if err != nil {
			rl.log.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.RecordRateLimited()
			rl.log.WithField("key", key).
				WithField("path", r.URL.Path).
				WithField("trace_id", GetTraceID(r.Context())).
				Warn("rate limit exceeded")
			respondError(w, apperrors.RateLimitExceeded(rl.limit, "1s"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey uses the user id if known, otherwise the remote host.
func clientKey(r *http.Request) string {
	if uid := GetUserID(r.Context()); uid != nil {
		return "user:" + strconv.FormatInt(*uid, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
