package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_SameKey_EnforcesMinDelay(t *testing.T) {
	pacer := NewPacer(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := pacer.Wait(ctx, "jsearch"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := pacer.Wait(ctx, "jsearch"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentKeys_NoCrossBlocking(t *testing.T) {
	pacer := NewPacer(200 * time.Millisecond)
	ctx := context.Background()

	if err := pacer.Wait(ctx, "jsearch"); err != nil {
		t.Fatalf("jsearch wait: %v", err)
	}

	// Immediately call for adzuna: should NOT block.
	start := time.Now()
	if err := pacer.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("adzuna wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected adzuna wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	pacer := NewPacer(5 * time.Second)

	// Seed the last-call time.
	if err := pacer.Wait(context.Background(), "ats"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := pacer.Wait(ctx, "ats"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

func TestWait_ZeroDelayNeverBlocks(t *testing.T) {
	pacer := NewPacer(0)
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := pacer.Wait(context.Background(), "rss"); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero delay should not block, took %v", elapsed)
	}
}

func TestRegistry_Overrides(t *testing.T) {
	r := NewRegistry(time.Second, map[string]time.Duration{"ats": 500 * time.Millisecond})

	if got := r.For("ats").MinDelay(); got != 500*time.Millisecond {
		t.Errorf("ats delay = %v, want 500ms", got)
	}
	if got := r.For("jsearch").MinDelay(); got != time.Second {
		t.Errorf("jsearch delay = %v, want 1s", got)
	}
	if r.For("ats") != r.For("ats") {
		t.Error("expected the same pacer for the same source")
	}
}
