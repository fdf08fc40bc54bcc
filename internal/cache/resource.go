// Package cache is the in-memory synchronization layer between the REST
// transport and presentation. Each cache owns one remote data set (the
// paginated feed, the topic catalog, the like set, the subscription set),
// serves its last-known snapshot immediately, and refetches when stale or
// forced. Mutations go through the documented entry points only; snapshots
// handed out are copies.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc retrieves the authoritative value from the remote source.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Resource caches one remote value behind a staleness clock. Concurrent
// refreshes coalesce into a single outstanding fetch; a failed fetch keeps
// the last-known-good snapshot and surfaces the error.
type Resource[T any] struct {
	fetch FetchFunc[T]
	ttl   time.Duration
	clock func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	snapshot  T
	scope     uint64
	populated bool
	loading   bool
	fetchedAt time.Time
	lastErr   error
}

// ResourceOption mutates resource configuration.
type ResourceOption[T any] func(*Resource[T])

// WithClock replaces the staleness clock, for tests.
func WithClock[T any](clock func() time.Time) ResourceOption[T] {
	return func(r *Resource[T]) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewResource[T any](fetch FetchFunc[T], ttl time.Duration, opts ...ResourceOption[T]) *Resource[T] {
	r := &Resource[T]{
		fetch: fetch,
		ttl:   ttl,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ensure returns a fresh snapshot, fetching when forced, empty, or past the
// time-to-live. On fetch failure the previous snapshot is returned alongside
// the error: stale data beats no data.
func (r *Resource[T]) Ensure(ctx context.Context, force bool) (T, error) {
	r.mu.Lock()
	if !force && r.populated && r.clock().Sub(r.fetchedAt) < r.ttl {
		snapshot := r.snapshot
		r.mu.Unlock()
		return snapshot, nil
	}
	r.mu.Unlock()

	value, err, _ := r.group.Do("fetch", func() (any, error) {
		r.mu.Lock()
		r.loading = true
		scope := r.scope
		r.mu.Unlock()

		fetched, fetchErr := r.fetch(ctx)

		r.mu.Lock()
		r.loading = false
		if scope != r.scope {
			// A Clear superseded this fetch; drop the result instead of
			// repopulating the discarded snapshot.
			r.mu.Unlock()
			var zero T
			return zero, nil
		}
		if fetchErr != nil {
			r.lastErr = fetchErr
			r.mu.Unlock()
			return nil, fetchErr
		}
		r.snapshot = fetched
		r.populated = true
		r.fetchedAt = r.clock()
		r.lastErr = nil
		r.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		r.mu.Lock()
		snapshot := r.snapshot
		r.mu.Unlock()
		return snapshot, err
	}
	return value.(T), nil
}

// Snapshot returns the current value without triggering a fetch.
func (r *Resource[T]) Snapshot() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot, r.populated
}

// Loading reports whether a fetch is in flight.
func (r *Resource[T]) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Err returns the error recorded by the most recent failed fetch, cleared by
// the next successful one.
func (r *Resource[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Clear discards the snapshot, forcing the next Ensure to fetch.
func (r *Resource[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scope++
	var zero T
	r.snapshot = zero
	r.populated = false
	r.fetchedAt = time.Time{}
	r.lastErr = nil
}
