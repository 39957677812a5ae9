// Package quota tracks daily call budgets for quota-limited job providers.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store decides whether a source may spend one more call today.
type Store interface {
	Allow(ctx context.Context, source string) (bool, error)
}

// Limits maps a source name to its daily call budget. Sources without an
// entry (or with a non-positive budget) are unlimited.
type Limits map[string]int

func (l Limits) limitFor(source string) (int, bool) {
	n, ok := l[source]
	return n, ok && n > 0
}

// dayKey returns the UTC calendar day t falls in.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MemoryStore counts calls per source per UTC day in process memory.
// It is owned by the caller that builds the adapters and lives as long as
// that caller does.
type MemoryStore struct {
	mu     sync.Mutex
	limits Limits
	counts map[string]int // key: source + "|" + day
	now    func() time.Time
}

// NewMemoryStore creates an in-memory quota store.
func NewMemoryStore(limits Limits) *MemoryStore {
	return &MemoryStore{
		limits: limits,
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Allow records one call for source and reports whether it fits the budget.
// A refused call is not counted.
func (s *MemoryStore) Allow(_ context.Context, source string) (bool, error) {
	limit, limited := s.limits.limitFor(source)
	if !limited {
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day := dayKey(s.now())
	key := source + "|" + day
	if s.counts[key] >= limit {
		return false, nil
	}
	s.counts[key]++

	// Drop counters from previous days.
	for k := range s.counts {
		if len(k) < len(day) || k[len(k)-len(day):] != day {
			delete(s.counts, k)
		}
	}
	return true, nil
}

// Used returns how many calls source has spent today.
func (s *MemoryStore) Used(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[source+"|"+dayKey(s.now())]
}

// Unlimited never refuses a call.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

// Check wraps store.Allow with the fail-open policy used by adapters: a
// store error lets the call through.
func Check(ctx context.Context, store Store, source string) (bool, error) {
	if store == nil {
		return true, nil
	}
	ok, err := store.Allow(ctx, source)
	if err != nil {
		return true, fmt.Errorf("quota check for %s: %w", source, err)
	}
	return ok, nil
}
