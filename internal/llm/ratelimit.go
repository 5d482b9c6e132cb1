package llm

import (
	"context"
	"sync"
	"time"
)

// bucket hands out at most rps tokens per second, holding up to burst unused
// tokens. A nil bucket never blocks.
type bucket struct {
	tokens   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newBucket(rps float64, burst int) *bucket {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	b := &bucket{
		tokens: make(chan struct{}, burst),
		done:   make(chan struct{}),
	}
	for len(b.tokens) < burst {
		b.tokens <- struct{}{}
	}
	every := time.Duration(float64(time.Second) / rps)
	if every <= 0 {
		every = time.Millisecond
	}
	go b.refill(every)
	return b
}

func (b *bucket) refill(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			select {
			case b.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// take returns how long the caller was held back. A stopped bucket fails with
// context.Canceled.
func (b *bucket) take(ctx context.Context) (time.Duration, error) {
	if b == nil {
		return 0, nil
	}
	select {
	case <-b.tokens:
		return 0, nil
	default:
	}
	start := time.Now()
	select {
	case <-ctx.Done():
		return time.Since(start), ctx.Err()
	case <-b.done:
		return time.Since(start), context.Canceled
	case <-b.tokens:
		return time.Since(start), nil
	}
}

// stop ends the refill goroutine. Safe to call more than once.
func (b *bucket) stop() {
	if b == nil {
		return
	}
	b.stopOnce.Do(func() { close(b.done) })
}
