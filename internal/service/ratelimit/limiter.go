package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a key may stay unused before its limiter is dropped.
const DefaultIdleTTL = 10 * time.Minute

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter hands out one rate.Limiter per key. Keys unused for idleTTL are
// evicted so the map does not grow with every caller.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*client
	idleTTL   time.Duration
	lastPrune time.Time
	now       func() time.Time
}

func New() *Limiter { return NewWithIdleTTL(DefaultIdleTTL) }

// NewWithIdleTTL returns a Limiter evicting keys idle longer than idleTTL.
// A non-positive idleTTL disables eviction.
func NewWithIdleTTL(idleTTL time.Duration) *Limiter {
	return &Limiter{m: make(map[string]*client), idleTTL: idleTTL, now: time.Now}
}

// Allow reports whether key may proceed now. A key's limiter is created on
// first use with the given burst and refill rate.
func (l *Limiter) Allow(key string, burst, refillPerSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)

	c, ok := l.m[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(rate.Limit(refillPerSec), int(burst))}
		l.m[key] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1)
}

// pruneLocked runs at most once per idleTTL.
func (l *Limiter) pruneLocked(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastPrune) < l.idleTTL {
		return
	}
	l.lastPrune = now
	for k, c := range l.m {
		if now.Sub(c.seen) >= l.idleTTL {
			delete(l.m, k)
		}
	}
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
