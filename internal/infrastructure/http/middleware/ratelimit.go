package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client key. Idle buckets are
// dropped after the cleanup interval.
type ClientLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientEntry
	limit       rate.Limit
	burst       int
	idle        time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

// NewClientLimiter allows requestsPerMin per client with the given burst
func NewClientLimiter(requestsPerMin, burst int, idle time.Duration) *ClientLimiter {
	if requestsPerMin <= 0 {
		requestsPerMin = 60
	}
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = time.Minute
	}

	return &ClientLimiter{
		clients:     make(map[string]*clientEntry),
		limit:       rate.Limit(float64(requestsPerMin) / 60),
		burst:       burst,
		idle:        idle,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether a request from key may proceed
func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastCleanup) > l.idle {
		for k, entry := range l.clients {
			if now.Sub(entry.lastSeen) > l.idle {
				delete(l.clients, k)
			}
		}
		l.lastCleanup = now
	}

	entry, ok := l.clients[key]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients
func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
