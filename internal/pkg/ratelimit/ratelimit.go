package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds configuration for the per-key limiter.
type Config struct {
	// PerMinute is the sustained number of requests allowed per key.
	PerMinute int
	// Burst is the maximum number of requests allowed at once.
	Burst int
	// IdleTTL drops buckets not used for this long.
	IdleTTL time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key, e.g. per employee.
type KeyedLimiter struct {
	config  Config
	mu      sync.Mutex
	buckets map[string]*entry
	now     func() time.Time
}

func New(config Config) *KeyedLimiter {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &KeyedLimiter{
		config:  config,
		buckets: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow reports whether one more request for key may proceed now.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.buckets[key]
	if !ok {
		e = &entry{
			limiter:  rate.NewLimiter(rate.Limit(float64(l.config.PerMinute)/60), l.config.Burst),
			lastSeen: now,
		}
		l.buckets[key] = e
		if len(l.buckets)%100 == 0 {
			l.sweep(now)
		}
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *KeyedLimiter) sweep(now time.Time) {
	for key, e := range l.buckets {
		if now.Sub(e.lastSeen) > l.config.IdleTTL {
			delete(l.buckets, key)
		}
	}
}
