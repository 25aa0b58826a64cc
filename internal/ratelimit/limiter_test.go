package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAcquireEnforcesSpacing(t *testing.T) {
	l := New(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(ctx, "reddit"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// First call is immediate; the next two wait 50ms each.
	if elapsed < 100*time.Millisecond {
		t.Errorf("three acquires took %v, want at least 100ms", elapsed)
	}
}

func TestAcquireSourcesAreIndependent(t *testing.T) {
	l := New(200 * time.Millisecond)
	ctx := context.Background()

	if err := l.Acquire(ctx, "reddit"); err != nil {
		t.Fatalf("acquire reddit: %v", err)
	}

	start := time.Now()
	if err := l.Acquire(ctx, "youtube"); err != nil {
		t.Fatalf("acquire youtube: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("youtube waited %v behind reddit's clock", elapsed)
	}
}

func TestAcquireSerializesConcurrentCallers(t *testing.T) {
	l := New(30 * time.Millisecond)
	ctx := context.Background()

	const callers = 4
	var (
		mu    sync.Mutex
		times []time.Time
		wg    sync.WaitGroup
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(ctx, "boards"); err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(times) != callers {
		t.Fatalf("got %d grants, want %d", len(times), callers)
	}
	// Grants arrive in some order; total span must cover the enforced gaps.
	min, max := times[0], times[0]
	for _, ts := range times[1:] {
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}
	if span := max.Sub(min); span < (callers-1)*30*time.Millisecond-10*time.Millisecond {
		t.Errorf("grants span %v, want about %v", span, (callers-1)*30*time.Millisecond)
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	l := New(time.Hour)
	ctx := context.Background()

	if err := l.Acquire(ctx, "rss"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx, "rss"); err != context.DeadlineExceeded {
		t.Errorf("second acquire err = %v, want context.DeadlineExceeded", err)
	}
}

func TestSetIntervalOverridesDefault(t *testing.T) {
	l := New(time.Hour)
	l.SetInterval("rss", 10*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx, "rss"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("override ignored, two acquires took %v", elapsed)
	}
}
