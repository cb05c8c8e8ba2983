package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// CheckResult is the outcome of a rate limit check.
type CheckResult struct {
	Exceeded bool
	Key      string
	Current  int
	Limit    int
	Reason   string
}

// Check compares the current count against the limit.
func Check(count int, limit Limit) CheckResult {
	if !limit.Enabled() {
		return CheckResult{}
	}
	if count >= limit.MaxRequests {
		return CheckResult{
			Exceeded: true,
			Current:  count,
			Limit:    limit.MaxRequests,
			Reason: fmt.Sprintf("rate limit exceeded: %d/%d requests in %s window",
				count, limit.MaxRequests, limit.Window),
		}
	}
	return CheckResult{}
}

// Limiter tracks one window per key. It is safe for concurrent use.
type Limiter struct {
	limit     Limit
	mu        sync.Mutex
	windows   map[string]*window
	lastPrune time.Time
}

// New creates a limiter. A disabled limit allows everything.
func New(limit Limit) *Limiter {
	return &Limiter{limit: limit, windows: make(map[string]*window)}
}

// Allow checks the key's window and, when within the limit, counts the
// request. Rejected requests are not counted.
func (l *Limiter) Allow(key string, now time.Time) CheckResult {
	if !l.limit.Enabled() {
		return CheckResult{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) >= l.limit.Window {
		l.prune(now)
	}
	w := l.snapshot(key, now)
	result := Check(w.count, l.limit)
	if result.Exceeded {
		result.Key = key
		return result
	}
	w.count++
	return CheckResult{}
}

// Tracked returns the number of keys with a live window.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
