package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// StatsSource is the transport capability behind per-article like counts.
// Satisfied by api.Client.
type StatsSource interface {
	LikeCount(ctx context.Context, articleID string) (int, error)
}

type statsEntry struct {
	count     int
	expiresAt time.Time
}

// Stats caches per-article like counts in a bounded LRU with per-entry
// expiry. Counts are display data: bounded capacity matters more than
// completeness, and an expired entry is simply refetched.
type Stats struct {
	source StatsSource
	ttl    time.Duration
	clock  func() time.Time
	cache  *lru.Cache[string, statsEntry]
}

// StatsOption mutates stats cache configuration.
type StatsOption func(*Stats)

// WithStatsClock replaces the expiry clock, for tests.
func WithStatsClock(clock func() time.Time) StatsOption {
	return func(s *Stats) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewStats(source StatsSource, ttl time.Duration, capacity int, opts ...StatsOption) (*Stats, error) {
	if capacity <= 0 {
		capacity = 500
	}
	cache, err := lru.New[string, statsEntry](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating stats cache: %w", err)
	}
	s := &Stats{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		cache:  cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LikeCount returns the article's like count, served from cache while the
// entry is unexpired.
func (s *Stats) LikeCount(ctx context.Context, articleID string) (int, error) {
	if entry, ok := s.cache.Get(articleID); ok {
		if s.clock().Before(entry.expiresAt) {
			return entry.count, nil
		}
		s.cache.Remove(articleID)
	}

	count, err := s.source.LikeCount(ctx, articleID)
	if err != nil {
		return 0, err
	}
	s.cache.Add(articleID, statsEntry{count: count, expiresAt: s.clock().Add(s.ttl)})
	return count, nil
}

// Invalidate drops one article's cached count. Called after a like toggle so
// the next read reflects the mutation.
func (s *Stats) Invalidate(articleID string) {
	s.cache.Remove(articleID)
}

// Clear drops every cached count.
func (s *Stats) Clear() {
	s.cache.Purge()
}
