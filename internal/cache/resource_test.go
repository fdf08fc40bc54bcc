package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnsureServesCachedWithinTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	var calls int32
	r := NewResource(func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"a", "b"}, nil
	}, 5*time.Minute, WithClock[[]string](clock))

	ctx := context.Background()
	if _, err := r.Ensure(ctx, false); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if _, err := r.Ensure(ctx, false); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 fetch within TTL, got %d", got)
	}

	now = now.Add(5*time.Minute + time.Second)
	if _, err := r.Ensure(ctx, false); err != nil {
		t.Fatalf("ensure after expiry: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 fetches after TTL elapsed, got %d", got)
	}
}

func TestEnsureForceRefetches(t *testing.T) {
	var calls int32
	r := NewResource(func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}, time.Hour)

	ctx := context.Background()
	first, _ := r.Ensure(ctx, false)
	second, _ := r.Ensure(ctx, true)
	if first != 1 || second != 2 {
		t.Errorf("expected forced refetch to hit the source, got %d then %d", first, second)
	}
}

func TestEnsureKeepsSnapshotOnFailure(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	fail := false
	r := NewResource(func(ctx context.Context) (string, error) {
		if fail {
			return "", errors.New("remote down")
		}
		return "good", nil
	}, time.Minute, WithClock[string](clock))

	ctx := context.Background()
	if _, err := r.Ensure(ctx, false); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	fail = true
	now = now.Add(2 * time.Minute)
	got, err := r.Ensure(ctx, false)
	if err == nil {
		t.Fatal("expected error from failing fetch")
	}
	if got != "good" {
		t.Errorf("expected last-known-good snapshot, got %q", got)
	}
	if r.Err() == nil {
		t.Error("expected recorded fetch error")
	}

	snapshot, populated := r.Snapshot()
	if !populated || snapshot != "good" {
		t.Errorf("snapshot invalidated by failure: %q populated=%v", snapshot, populated)
	}
}

func TestEnsureCoalescesConcurrentFetches(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	r := NewResource(func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "done", nil
	}, time.Minute)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Ensure(ctx, false)
		}()
	}

	// Give the goroutines a moment to pile onto the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected concurrent ensures to share one fetch, got %d", got)
	}
}

func TestEnsureResolvingAfterClearIsDropped(t *testing.T) {
	release := make(chan struct{})
	r := NewResource(func(ctx context.Context) (string, error) {
		<-release
		return "stale", nil
	}, time.Minute)

	done := make(chan struct{})
	go func() {
		r.Ensure(context.Background(), true)
		close(done)
	}()

	deadline := time.After(time.Second)
	for !r.Loading() {
		select {
		case <-deadline:
			t.Fatal("fetch never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	r.Clear()
	close(release)
	<-done

	if snapshot, populated := r.Snapshot(); populated {
		t.Errorf("expected fetch result dropped after clear, got %q", snapshot)
	}
}

func TestClearForcesRefetch(t *testing.T) {
	var calls int32
	r := NewResource(func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}, time.Hour)

	ctx := context.Background()
	r.Ensure(ctx, false)
	r.Clear()

	if _, populated := r.Snapshot(); populated {
		t.Error("expected snapshot discarded after clear")
	}
	r.Ensure(ctx, false)
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected refetch after clear, got %d calls", got)
	}
}
