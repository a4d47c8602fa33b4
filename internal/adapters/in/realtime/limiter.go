package realtime

import (
	"sync"

	"orderflow/internal/pkg/errs"
)

// ConnLimiter caps concurrent streams per source. WebSocket and SSE share
// one limiter so a device cannot double its budget by switching transport.
type ConnLimiter struct {
	mu     sync.Mutex
	max    int
	counts map[string]int
}

func NewConnLimiter(maxPerSource int) *ConnLimiter {
	return &ConnLimiter{max: maxPerSource, counts: make(map[string]int)}
}

// Acquire takes a slot or returns a RateLimitedError.
func (l *ConnLimiter) Acquire(source string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.counts[source] >= l.max {
		return errs.NewRateLimitedError(source, l.max)
	}
	l.counts[source]++
	return nil
}

func (l *ConnLimiter) Release(source string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.counts[source] <= 1 {
		delete(l.counts, source)
		return
	}
	l.counts[source]--
}

func (l *ConnLimiter) Open(source string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[source]
}
