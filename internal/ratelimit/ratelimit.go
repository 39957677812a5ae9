package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum gap between successive calls that share a key.
// Each adapter paces its own requests under its own key, so one adapter's
// politeness delay never blocks another.
type Pacer struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: source or host name
	minDelay time.Duration
}

// NewPacer creates a pacer that enforces minDelay between consecutive calls
// for the same key. A zero minDelay disables pacing.
func NewPacer(minDelay time.Duration) *Pacer {
	return &Pacer{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

// MinDelay returns the configured gap.
func (p *Pacer) MinDelay() time.Duration { return p.minDelay }

func (p *Pacer) limiterFor(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lim, ok := p.limiters[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(p.minDelay), 1)
	p.limiters[key] = lim
	return lim
}

// Wait blocks until enough time has passed since the last call for key.
// The first call for a key returns immediately. Returns an error if the
// context is cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context, key string) error {
	if p == nil || p.minDelay <= 0 {
		return ctx.Err()
	}
	if err := p.limiterFor(key).Wait(ctx); err != nil {
		return fmt.Errorf("pacer wait for %s: %w", key, err)
	}
	return nil
}

// Registry hands out one Pacer per source so that each source can have its
// own delay. Sources without an override share the default delay.
type Registry struct {
	mu        sync.Mutex
	pacers    map[string]*Pacer
	def       time.Duration
	overrides map[string]time.Duration
}

// NewRegistry creates a registry with a default delay and per-source overrides.
func NewRegistry(def time.Duration, overrides map[string]time.Duration) *Registry {
	return &Registry{
		pacers:    make(map[string]*Pacer),
		def:       def,
		overrides: overrides,
	}
}

// For returns the pacer for the given source, creating it on first use.
func (r *Registry) For(source string) *Pacer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pacers[source]; ok {
		return p
	}
	d := r.def
	if o, ok := r.overrides[source]; ok {
		d = o
	}
	p := NewPacer(d)
	r.pacers[source] = p
	return p
}
