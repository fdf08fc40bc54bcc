package cache

import (
	"context"
	"sync"
	"time"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

// DefaultPageSize matches the server's feed page size.
const DefaultPageSize = 20

// FeedSource is the transport capability the feed depends on.
// Satisfied by api.Client.
type FeedSource interface {
	SubscribedFeed(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error)
}

// FeedSnapshot is a read-only copy of the feed state handed to presentation.
type FeedSnapshot struct {
	Articles  []model.Article
	Total     int
	Query     string
	FetchedAt time.Time
}

// Feed caches the ordered, cursor-paged subscribed feed. Forward loading
// appends pages; Reset replaces everything under a new query scope. Every
// fetch carries the scope it was issued under and self-discards when a Reset
// has superseded it, so pagination stays monotonic and duplicate-free under
// arbitrary interleaving.
type Feed struct {
	source   FeedSource
	pageSize int
	ttl      time.Duration
	clock    func() time.Time

	mu        sync.Mutex
	articles  []model.Article
	seen      map[string]struct{}
	total     int
	query     string
	scope     uint64
	inflight  int
	populated bool
	fetchedAt time.Time
	lastErr   error
}

// FeedOption mutates feed configuration.
type FeedOption func(*Feed)

// WithFeedClock replaces the staleness clock, for tests.
func WithFeedClock(clock func() time.Time) FeedOption {
	return func(f *Feed) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithPageSize overrides the page size.
func WithPageSize(size int) FeedOption {
	return func(f *Feed) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

func NewFeed(source FeedSource, ttl time.Duration, opts ...FeedOption) *Feed {
	f := &Feed{
		source:   source,
		pageSize: DefaultPageSize,
		ttl:      ttl,
		clock:    time.Now,
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Reset discards the sequence, rescopes to query, and fetches page one.
// A Reset issued while any fetch is in flight wins: the stale result is
// dropped when it lands. On failure the previous sequence is kept.
func (f *Feed) Reset(ctx context.Context, query string) error {
	f.mu.Lock()
	f.scope++
	scope := f.scope
	f.query = query
	f.inflight++
	f.mu.Unlock()

	page, err := f.source.SubscribedFeed(ctx, 1, f.pageSize, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if scope != f.scope {
		// Superseded by a newer reset; its result owns the sequence now.
		return nil
	}
	if err != nil {
		f.lastErr = err
		return err
	}

	f.articles = nil
	f.seen = make(map[string]struct{}, len(page.Articles))
	f.applyPageLocked(page)
	f.populated = true
	f.fetchedAt = f.clock()
	f.lastErr = nil
	return nil
}

// LoadNext fetches the next page and appends it. No-op while a fetch is in
// flight or when the sequence already covers the reported total.
func (f *Feed) LoadNext(ctx context.Context) error {
	f.mu.Lock()
	if f.inflight > 0 || !f.hasMoreLocked() {
		f.mu.Unlock()
		return nil
	}
	scope := f.scope
	query := f.query
	page := len(f.articles)/f.pageSize + 1
	f.inflight++
	f.mu.Unlock()

	result, err := f.source.SubscribedFeed(ctx, page, f.pageSize, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if scope != f.scope {
		// A reset superseded this page while it was in flight; drop it.
		return nil
	}
	if err != nil {
		f.lastErr = err
		return err
	}

	f.applyPageLocked(result)
	f.fetchedAt = f.clock()
	f.lastErr = nil
	return nil
}

// Ensure refetches page one under the current query when the snapshot is
// missing, stale, or a refresh is forced.
func (f *Feed) Ensure(ctx context.Context, force bool) error {
	f.mu.Lock()
	if !force && f.populated && f.clock().Sub(f.fetchedAt) < f.ttl {
		f.mu.Unlock()
		return nil
	}
	query := f.query
	f.mu.Unlock()
	return f.Reset(ctx, query)
}

// applyPageLocked appends a page under its reported total. The sequence
// never grows past the total; when the total shrinks below what is already
// held, the tail is dropped.
func (f *Feed) applyPageLocked(page model.FeedPage) {
	f.total = max(0, page.Total)
	if len(f.articles) > f.total {
		for _, a := range f.articles[f.total:] {
			delete(f.seen, a.ID)
		}
		f.articles = f.articles[:f.total]
	}
	for _, a := range page.Articles {
		if len(f.articles) >= f.total {
			break
		}
		if _, dup := f.seen[a.ID]; dup {
			continue
		}
		f.seen[a.ID] = struct{}{}
		f.articles = append(f.articles, a)
	}
}

func (f *Feed) hasMoreLocked() bool {
	return !f.populated || len(f.articles) < f.total
}

// HasMore reports whether the server holds pages beyond the sequence.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.populated && len(f.articles) < f.total
}

// Snapshot returns a copy of the current feed state.
func (f *Feed) Snapshot() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FeedSnapshot{
		Articles:  append([]model.Article(nil), f.articles...),
		Total:     f.total,
		Query:     f.query,
		FetchedAt: f.fetchedAt,
	}
}

// Loading reports whether a fetch is in flight.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight > 0
}

// Err returns the error recorded by the most recent failed fetch, cleared by
// the next successful one.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Clear discards everything, including the query scope. Used at session end.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scope++
	f.articles = nil
	f.seen = make(map[string]struct{})
	f.total = 0
	f.query = ""
	f.populated = false
	f.fetchedAt = time.Time{}
	f.lastErr = nil
}
