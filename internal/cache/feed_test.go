package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

type feedSourceFunc func(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error)

func (f feedSourceFunc) SubscribedFeed(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error) {
	return f(ctx, page, pageSize, search)
}

// corpusSource serves a fixed corpus of n articles with ids a1..an.
func corpusSource(n int, calls *int) feedSourceFunc {
	return func(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error) {
		if calls != nil {
			*calls++
		}
		start := (page - 1) * pageSize
		end := start + pageSize
		if start > n {
			start = n
		}
		if end > n {
			end = n
		}
		articles := make([]model.Article, 0, end-start)
		for i := start; i < end; i++ {
			articles = append(articles, model.Article{ID: fmt.Sprintf("a%d", i+1)})
		}
		return model.FeedPage{Articles: articles, Total: n}, nil
	}
}

func TestLoadNextPaginatesWithoutDuplicates(t *testing.T) {
	f := NewFeed(corpusSource(45, nil), time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if !f.HasMore() && i > 0 {
			break
		}
		if err := f.LoadNext(ctx); err != nil {
			t.Fatalf("load next %d: %v", i, err)
		}
	}

	snap := f.Snapshot()
	if len(snap.Articles) != 45 {
		t.Fatalf("expected 45 articles, got %d", len(snap.Articles))
	}
	seen := make(map[string]bool)
	for _, a := range snap.Articles {
		if seen[a.ID] {
			t.Errorf("duplicate article id %s", a.ID)
		}
		seen[a.ID] = true
	}
	if f.HasMore() {
		t.Error("expected hasMore false at full length")
	}
}

func TestLoadNextStopsAtReportedTotal(t *testing.T) {
	var calls int
	f := NewFeed(corpusSource(15, &calls), time.Minute)
	ctx := context.Background()

	f.LoadNext(ctx) // page 1 covers the whole corpus of 15
	if f.HasMore() {
		t.Fatal("expected no more pages with 15 of 15 loaded")
	}
	f.LoadNext(ctx)
	if calls != 1 {
		t.Errorf("expected load past total to be a no-op, got %d calls", calls)
	}
}

func TestLoadNextDropsDuplicateIDsFromServer(t *testing.T) {
	src := feedSourceFunc(func(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error) {
		switch page {
		case 1:
			return model.FeedPage{Articles: []model.Article{{ID: "x"}, {ID: "y"}}, Total: 3}, nil
		default:
			// Server shifted: page 2 repeats y.
			return model.FeedPage{Articles: []model.Article{{ID: "y"}, {ID: "z"}}, Total: 3}, nil
		}
	})
	f := NewFeed(src, time.Minute, WithPageSize(2))
	ctx := context.Background()

	f.LoadNext(ctx)
	f.LoadNext(ctx)

	snap := f.Snapshot()
	want := []string{"x", "y", "z"}
	if len(snap.Articles) != len(want) {
		t.Fatalf("expected %d articles, got %d", len(want), len(snap.Articles))
	}
	for i, id := range want {
		if snap.Articles[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, snap.Articles[i].ID)
		}
	}
}

func TestLoadNextClampsToShrunkenTotal(t *testing.T) {
	src := feedSourceFunc(func(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error) {
		switch page {
		case 1:
			return model.FeedPage{Articles: []model.Article{{ID: "a"}, {ID: "b"}}, Total: 4}, nil
		default:
			// Corpus shrank between pages.
			return model.FeedPage{Articles: []model.Article{{ID: "c"}}, Total: 1}, nil
		}
	})
	f := NewFeed(src, time.Minute, WithPageSize(2))
	ctx := context.Background()

	f.LoadNext(ctx)
	f.LoadNext(ctx)

	snap := f.Snapshot()
	if len(snap.Articles) > snap.Total {
		t.Fatalf("sequence longer than total: %d > %d", len(snap.Articles), snap.Total)
	}
	if snap.Total != 1 || len(snap.Articles) != 1 || snap.Articles[0].ID != "a" {
		t.Errorf("expected clamp to the first article with total 1, got %v total %d", snap.Articles, snap.Total)
	}
	if f.HasMore() {
		t.Error("expected hasMore false once the clamped total is covered")
	}
}

func TestResetWinsOverInFlightLoadNext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	src := feedSourceFunc(func(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error) {
		if search == "" && page == 2 {
			close(started)
			<-release
			return model.FeedPage{Articles: []model.Article{{ID: "stale1"}, {ID: "stale2"}}, Total: 4}, nil
		}
		if search == "quantum" {
			return model.FeedPage{Articles: []model.Article{{ID: "q1"}}, Total: 1}, nil
		}
		return model.FeedPage{Articles: []model.Article{{ID: "p1"}, {ID: "p2"}}, Total: 4}, nil
	})

	f := NewFeed(src, time.Minute, WithPageSize(2))
	ctx := context.Background()

	if err := f.Reset(ctx, ""); err != nil {
		t.Fatalf("seed reset: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- f.LoadNext(ctx) }()
	<-started

	if err := f.Reset(ctx, "quantum"); err != nil {
		t.Fatalf("superseding reset: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("stale load next: %v", err)
	}

	snap := f.Snapshot()
	if snap.Query != "quantum" {
		t.Errorf("expected query scope %q, got %q", "quantum", snap.Query)
	}
	if len(snap.Articles) != 1 || snap.Articles[0].ID != "q1" {
		t.Errorf("expected stale page discarded, got %v", snap.Articles)
	}
}

func TestResetReplacesSequence(t *testing.T) {
	f := NewFeed(corpusSource(45, nil), time.Minute)
	ctx := context.Background()

	f.LoadNext(ctx)
	f.LoadNext(ctx)
	if got := len(f.Snapshot().Articles); got != 40 {
		t.Fatalf("expected 40 loaded, got %d", got)
	}

	if err := f.Reset(ctx, ""); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := len(f.Snapshot().Articles); got != 20 {
		t.Errorf("expected reset back to one page, got %d", got)
	}
}

func TestResetFailureKeepsSequence(t *testing.T) {
	fail := false
	base := corpusSource(10, nil)
	src := feedSourceFunc(func(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error) {
		if fail {
			return model.FeedPage{}, errors.New("remote down")
		}
		return base(ctx, page, pageSize, search)
	})
	f := NewFeed(src, time.Minute)
	ctx := context.Background()

	if err := f.Reset(ctx, ""); err != nil {
		t.Fatalf("seed reset: %v", err)
	}

	fail = true
	if err := f.Reset(ctx, ""); err == nil {
		t.Fatal("expected error from failing reset")
	}
	if got := len(f.Snapshot().Articles); got != 10 {
		t.Errorf("expected last-known-good sequence kept, got %d articles", got)
	}
	if f.Err() == nil {
		t.Error("expected recorded fetch error")
	}
}

func TestEnsureUsesTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	var calls int
	f := NewFeed(corpusSource(5, &calls), 5*time.Minute, WithFeedClock(clock))
	ctx := context.Background()

	f.Ensure(ctx, false)
	f.Ensure(ctx, false)
	if calls != 1 {
		t.Fatalf("expected 1 fetch within TTL, got %d", calls)
	}

	now = now.Add(6 * time.Minute)
	f.Ensure(ctx, false)
	if calls != 2 {
		t.Errorf("expected refetch after TTL, got %d calls", calls)
	}
}

func TestClearDiscardsScope(t *testing.T) {
	f := NewFeed(corpusSource(5, nil), time.Minute)
	ctx := context.Background()

	f.Reset(ctx, "neural")
	f.Clear()

	snap := f.Snapshot()
	if len(snap.Articles) != 0 || snap.Query != "" || snap.Total != 0 {
		t.Errorf("expected empty feed after clear, got %+v", snap)
	}
}
