// Package ratelimit throttles outbound calls to the booking backend,
// one token bucket per endpoint.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

type Limit struct {
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

func DefaultLimit() Limit {
	return Limit{RPS: 10, Burst: 20}
}

// EndpointLimiter hands out a limiter per backend endpoint ("tickets",
// "admin/users", ...). Endpoints without an override share the default
// rate but not the bucket.
type EndpointLimiter struct {
	mu        sync.RWMutex
	limiters  map[string]*rate.Limiter
	defaults  Limit
	overrides map[string]Limit
}

func NewEndpointLimiter(defaults Limit, overrides map[string]Limit) *EndpointLimiter {
	if defaults.RPS <= 0 {
		defaults = DefaultLimit()
	}
	o := make(map[string]Limit, len(overrides))
	for endpoint, l := range overrides {
		o[endpoint] = l
	}
	return &EndpointLimiter{
		limiters:  make(map[string]*rate.Limiter),
		defaults:  defaults,
		overrides: o,
	}
}

func (l *EndpointLimiter) limiter(endpoint string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[endpoint]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.limiters[endpoint]; ok {
		return limiter
	}

	cfg, ok := l.overrides[endpoint]
	if !ok {
		cfg = l.defaults
	}
	limiter = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
	l.limiters[endpoint] = limiter
	return limiter
}

// SetLimit replaces the bucket for endpoint; tokens already spent are forgotten.
func (l *EndpointLimiter) SetLimit(endpoint string, limit Limit) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overrides[endpoint] = limit
	l.limiters[endpoint] = rate.NewLimiter(rate.Limit(limit.RPS), limit.Burst)
}

// Wait blocks until endpoint may be called or ctx is done.
func (l *EndpointLimiter) Wait(ctx context.Context, endpoint string) error {
	if err := l.limiter(endpoint).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", endpoint, err)
	}
	return nil
}

// Allow reports whether endpoint may be called right now, spending a token if so.
func (l *EndpointLimiter) Allow(endpoint string) bool {
	return l.limiter(endpoint).Allow()
}
