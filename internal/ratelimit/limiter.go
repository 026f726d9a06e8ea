// Package ratelimit implements the gateway's per-provider admission control:
// a token bucket combined with a concurrency cap, fed by a strict FIFO
// waiting queue. It is single-process and in-memory by design — §9 of the
// spec explicitly scopes cross-instance rate limiting out.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"lead-gateway/internal/observability"
)

// Stats is a point-in-time, best-effort snapshot of limiter state (§4.1
// Observability). No synchronization contract is offered beyond what a
// single lock acquisition provides.
type Stats struct {
	QueueLength     int
	ActiveRequests  int
	AvailableTokens int
}

// request is one FIFO queue entry. admitCh is buffered to 1 so the
// dispatcher's send never blocks even if the waiter has already given up.
type request struct {
	admitCh chan struct{}
}

// QueuedRateLimiter enforces §4.1: an admission may proceed only once both
// a token is available (lazy, continuous refill) and a concurrency slot is
// free, with waiters served in strict enqueue order.
type QueuedRateLimiter struct {
	mu sync.Mutex

	maxTokens  float64
	tokens     float64
	refillRate float64 // tokens per millisecond
	lastRefill time.Time

	maxConcurrent  int
	activeRequests int

	queue []*request

	wake chan struct{}
	done chan struct{}

	provider string
	metrics  *observability.Metrics
}

// New creates a limiter with capacity maxTokens refilled continuously over
// timeWindow, admitting at most maxConcurrent requests at once. The
// dispatcher goroutine starts immediately and runs until Close is called.
// providerName labels this limiter's metrics; metrics may be nil (tests,
// or callers that don't care to observe limiter behavior).
func New(maxTokens int, timeWindow time.Duration, maxConcurrent int, providerName string, metrics *observability.Metrics) *QueuedRateLimiter {
	l := &QueuedRateLimiter{
		maxTokens:      float64(maxTokens),
		tokens:         float64(maxTokens),
		refillRate:     float64(maxTokens) / float64(timeWindow.Milliseconds()),
		lastRefill:     time.Now(),
		maxConcurrent:  maxConcurrent,
		wake:           make(chan struct{}, 1),
		done:           make(chan struct{}),
		provider:       providerName,
		metrics:        metrics,
	}
	go l.dispatch()
	return l
}

// Close stops the dispatcher goroutine. Waiters still queued are never
// admitted afterwards; each returns only once its own ctx is done, with
// that ctx's error. Close itself does not reach into in-flight Execute
// calls.
func (l *QueuedRateLimiter) Close() {
	close(l.done)
}

func (l *QueuedRateLimiter) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// recordAdmission updates the limiter's gauges/counters after admitting the
// head of the queue. Caller must hold l.mu.
func (l *QueuedRateLimiter) recordAdmission() {
	if l.metrics == nil {
		return
	}
	l.metrics.LimiterQueueDepth.WithLabelValues(l.provider).Set(float64(len(l.queue)))
	l.metrics.LimiterActiveSlots.WithLabelValues(l.provider).Set(float64(l.activeRequests))
	l.metrics.LimiterAdmissions.WithLabelValues(l.provider).Inc()
}

// refillLocked advances tokens for elapsed time since lastRefill. Caller
// must hold l.mu.
func (l *QueuedRateLimiter) refillLocked(now time.Time) {
	elapsed := now.Sub(l.lastRefill)
	if elapsed <= 0 {
		return
	}
	elapsedMs := float64(elapsed) / float64(time.Millisecond)
	l.tokens = math.Min(l.maxTokens, l.tokens+elapsedMs*l.refillRate)
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}
	l.lastRefill = now
}

// dispatch is the single scheduling loop. It admits the head of the queue
// whenever both constraints are satisfied, sleeping only for the minimum
// time until the next token is available (or indefinitely when the
// constraint is concurrency, woken by release/enqueue signals) — never
// busy-looping, never skipping ahead of the head waiter.
func (l *QueuedRateLimiter) dispatch() {
	for {
		l.mu.Lock()
		l.refillLocked(time.Now())

		for len(l.queue) > 0 {
			head := l.queue[0]
			if l.tokens >= 1 && l.activeRequests < l.maxConcurrent {
				l.tokens--
				l.activeRequests++
				l.queue = l.queue[1:]
				head.admitCh <- struct{}{}
				l.recordAdmission()
				continue
			}
			break
		}

		var (
			waitForever bool
			waitDur     time.Duration
		)
		if len(l.queue) > 0 {
			head := l.queue[0]
			_ = head
			if l.activeRequests >= l.maxConcurrent || l.refillRate <= 0 {
				waitForever = true
			} else {
				needed := 1 - l.tokens
				ms := math.Ceil(needed / l.refillRate)
				if ms < 0 {
					ms = 0
				}
				waitDur = time.Duration(ms) * time.Millisecond
			}
		}
		empty := len(l.queue) == 0
		l.mu.Unlock()

		switch {
		case empty:
			select {
			case <-l.wake:
			case <-l.done:
				return
			}
		case waitForever:
			select {
			case <-l.wake:
			case <-l.done:
				return
			}
		default:
			timer := time.NewTimer(waitDur)
			select {
			case <-l.wake:
				timer.Stop()
			case <-timer.C:
			case <-l.done:
				timer.Stop()
				return
			}
		}
	}
}

// removeFromQueue removes req if still present (not yet admitted). Returns
// true if it was found and removed.
func (l *QueuedRateLimiter) removeFromQueue(req *request) bool {
	l.mu.Lock()
	for i, r := range l.queue {
		if r == req {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			queueLen := len(l.queue)
			l.mu.Unlock()
			if l.metrics != nil {
				l.metrics.LimiterQueueDepth.WithLabelValues(l.provider).Set(float64(queueLen))
			}
			return true
		}
	}
	l.mu.Unlock()
	return false
}

// acquire blocks until admitted (a token and a concurrency slot are both
// held on return) or ctx is cancelled before admission occurs.
func (l *QueuedRateLimiter) acquire(ctx context.Context) error {
	req := &request{admitCh: make(chan struct{}, 1)}

	l.mu.Lock()
	l.queue = append(l.queue, req)
	queueLen := len(l.queue)
	l.mu.Unlock()
	if l.metrics != nil {
		l.metrics.LimiterQueueDepth.WithLabelValues(l.provider).Set(float64(queueLen))
	}
	l.signal()

	select {
	case <-req.admitCh:
		return nil
	case <-ctx.Done():
		if l.removeFromQueue(req) {
			// Cancelled strictly before admission: no token/slot consumed.
			return ctx.Err()
		}
		// Lost the race: the dispatcher already admitted this waiter
		// (token + slot consumed) concurrently with cancellation. Per §5,
		// a waiter cancelled after admission runs to completion, so honor
		// the admission rather than leak the consumed resources.
		<-req.admitCh
		return nil
	}
}

// release returns the concurrency slot held by a completed request and
// wakes the dispatcher to reconsider the queue.
func (l *QueuedRateLimiter) release() {
	l.mu.Lock()
	l.activeRequests--
	active := l.activeRequests
	l.mu.Unlock()
	if l.metrics != nil {
		l.metrics.LimiterActiveSlots.WithLabelValues(l.provider).Set(float64(active))
	}
	l.signal()
}

// Stats returns a best-effort, point-in-time snapshot (§4.1).
func (l *QueuedRateLimiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked(time.Now())
	return Stats{
		QueueLength:     len(l.queue),
		ActiveRequests:  l.activeRequests,
		AvailableTokens: int(math.Floor(l.tokens)),
	}
}

// Execute runs fn once both admission constraints are satisfied, resolving
// with exactly fn's return value or propagating its error unchanged — the
// limiter never swallows, retries, or transforms fn's outcome (§4.1 Result
// propagation).
func Execute[T any](ctx context.Context, l *QueuedRateLimiter, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := l.acquire(ctx); err != nil {
		return zero, fmt.Errorf("rate limiter: %w", err)
	}
	defer l.release()
	return fn(ctx)
}
