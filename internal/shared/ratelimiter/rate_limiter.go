// Package ratelimiter throttles operations per client key with token buckets.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether an operation for key may proceed.
type Limiter interface {
	// Allow consumes one token for key. When it returns false, retryAfter says how long the caller
	// should wait before trying again.
	Allow(key string) (ok bool, retryAfter time.Duration)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key. Buckets idle for longer than idleTTL are
// swept during later calls, so no background goroutine is needed.
type KeyedLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

var _ Limiter = (*KeyedLimiter)(nil)

// NewPerMinute allows perMinute operations per key per minute, with bursts up to perMinute.
// A non-positive perMinute disables limiting.
func NewPerMinute(perMinute int) *KeyedLimiter {
	if perMinute <= 0 {
		return &KeyedLimiter{limit: rate.Inf, visitors: map[string]*visitor{}, now: time.Now}
	}
	return New(rate.Every(time.Minute/time.Duration(perMinute)), perMinute, 10*time.Minute)
}

// New builds a limiter from an explicit rate and burst.
func New(limit rate.Limit, burst int, idleTTL time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Allow implements Limiter.
func (l *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	if l.limit == rate.Inf {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// sweep drops idle buckets at most once per idleTTL. Callers hold mu.
func (l *KeyedLimiter) sweep(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}
