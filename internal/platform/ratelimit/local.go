package ratelimit

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

// LocalLimiter applies a token bucket per key and evicts idle keys. Each
// replica counts on its own.
type LocalLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu    sync.Mutex
	byKey map[string]*localEntry
	hits  uint64
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows perMinute requests per key per minute with a burst of
// the same size.
func NewLocalLimiter(perMinute int) *LocalLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &LocalLimiter{
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
		idleTTL: defaultIdleTTL,
		now:     time.Now,
		byKey:   make(map[string]*localEntry),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (*Result, error) {
	now := l.now()
	key = strings.TrimSpace(key)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)

	l.hits++
	if l.hits%512 == 0 {
		l.evictIdleLocked(now)
	}

	res := &Result{
		Allowed:   allowed,
		Limit:     l.burst,
		Remaining: max(0, int(math.Floor(tokens))),
	}
	untilToken := l.untilNextToken(tokens)
	res.ResetAt = now.Add(untilToken)
	if !allowed {
		res.RetryAfter = max(1, int(math.Ceil(untilToken.Seconds())))
	}
	return res, nil
}

// untilNextToken is the wait until at least one whole token is available.
func (l *LocalLimiter) untilNextToken(tokens float64) time.Duration {
	missing := 1 - tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(l.limit) * float64(time.Second))
}

func (l *LocalLimiter) evictIdleLocked(now time.Time) {
	cutoff := now.Add(-l.idleTTL)
	for k, v := range l.byKey {
		if v.lastSeen.Before(cutoff) {
			delete(l.byKey, k)
		}
	}
}
