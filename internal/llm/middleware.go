package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, retries, logging, caching).
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit holds requests to rps per second with the given burst. Requests
// that had to wait are logged at Debug. rps <= 0 disables it.
func RateLimit(rps float64, burst int, log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next LLMClient) LLMClient {
		return &rateLimited{next: next, b: newBucket(rps, burst), log: log.Named("llm")}
	}
}

type rateLimited struct {
	next LLMClient
	b    *bucket
	log  *zap.Logger
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.b.stop()
	return c.next.Close()
}
func (c *rateLimited) GenerateText(ctx context.Context, prompt string) (string, error) {
	waited, err := c.b.take(ctx)
	if waited > 0 {
		c.log.Debug("llm request throttled",
			zap.String("phase", PhaseFrom(ctx)),
			zap.Duration("waited", waited),
			zap.Bool("admitted", err == nil))
	}
	if err != nil {
		return "", err
	}
	return c.next.GenerateText(ctx, prompt)
}

// -------- Retry with exponential backoff --------

// Retry retries GenerateText up to maxAttempts with exponential backoff
// starting at baseDelay. Permanent errors and context cancellation stop it.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next LLMClient) LLMClient {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next LLMClient
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }
func (r *retrying) GenerateText(ctx context.Context, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.GenerateText(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if IsPermanent(err) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		t := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return "", last
}

// -------- Logging --------

// WithLogging logs phase, prompt size and latency of every call. A nil logger
// disables it.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next LLMClient) LLMClient {
		return &logging{next: next, log: logger.Named("llm")}
	}
}

type logging struct {
	next LLMClient
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateText(ctx context.Context, prompt string) (string, error) {
	fields := []zap.Field{
		zap.String("client", l.next.Name()),
		zap.String("phase", PhaseFrom(ctx)),
		zap.Int("prompt_bytes", len(prompt)),
	}
	if id := RequestIDFrom(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	start := time.Now()
	out, err := l.next.GenerateText(ctx, prompt)
	fields = append(fields, zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		l.log.Warn("llm request failed", append(fields, zap.Error(err))...)
		return out, err
	}
	l.log.Debug("llm request", append(fields, zap.Int("response_bytes", len(out)))...)
	return out, nil
}

// -------- Caching --------

// Cached memoizes successful answers by phase and prompt in an expiring LRU.
// size <= 0 disables it.
func Cached(size int, ttl time.Duration) Middleware {
	return func(next LLMClient) LLMClient {
		if size <= 0 {
			return next
		}
		return &cached{next: next, lru: expirable.NewLRU[string, string](size, nil, ttl)}
	}
}

type cached struct {
	next LLMClient
	lru  *expirable.LRU[string, string]
}

func (c *cached) Name() string { return c.next.Name() }
func (c *cached) Close() error { return c.next.Close() }
func (c *cached) GenerateText(ctx context.Context, prompt string) (string, error) {
	sum := sha256.Sum256([]byte(PhaseFrom(ctx) + "\x00" + prompt))
	key := hex.EncodeToString(sum[:])
	if out, ok := c.lru.Get(key); ok {
		return out, nil
	}
	out, err := c.next.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.lru.Add(key, out)
	return out, nil
}
