package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/arthurgrandao/scinewsAI/internal/api"
)

// ErrToggleInFlight is returned when a toggle for the same id has not yet
// been acknowledged by the server.
var ErrToggleInFlight = errors.New("toggle already in flight for this id")

// Mutator performs the remote membership change for one id.
// Satisfied by the like and subscription endpoints of api.Client.
type Mutator interface {
	Add(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// toggleState tags a pending mutation through its lifecycle. A refresh that
// lands while an entry is still applied must not clobber the optimistic
// value; the tag, not timing, decides.
type toggleState int

const (
	toggleApplied toggleState = iota
	toggleConfirmed
	toggleRolledBack
)

type pendingToggle struct {
	want  bool
	state toggleState
}

// ToggleSet caches a binary membership relation (liked articles, subscribed
// topics) with optimistic mutation: the local set changes immediately, the
// remote call follows, and failure rolls back. A remote "already in the
// desired state" outcome counts as success.
type ToggleSet struct {
	fetch      func(ctx context.Context) ([]string, error)
	mutator    Mutator
	ttl        time.Duration
	clock      func() time.Time
	onChange   func(ids []string)
	onRollback func(id string, member bool)

	group singleflight.Group

	mu        sync.Mutex
	members   map[string]bool
	pending   map[string]*pendingToggle
	scope     uint64
	valid     bool
	populated bool
	loading   bool
	fetchedAt time.Time
	lastErr   error
}

// ToggleOption mutates toggle set configuration.
type ToggleOption func(*ToggleSet)

// WithToggleClock replaces the staleness clock, for tests.
func WithToggleClock(clock func() time.Time) ToggleOption {
	return func(ts *ToggleSet) {
		if clock != nil {
			ts.clock = clock
		}
	}
}

// WithOnChange registers a callback invoked with the full membership list
// after every confirmed change or refresh.
func WithOnChange(fn func(ids []string)) ToggleOption {
	return func(ts *ToggleSet) { ts.onChange = fn }
}

// WithOnRollback registers a callback invoked when an optimistic write is
// reverted; member is the restored membership value.
func WithOnRollback(fn func(id string, member bool)) ToggleOption {
	return func(ts *ToggleSet) { ts.onRollback = fn }
}

func NewToggleSet(fetch func(ctx context.Context) ([]string, error), mutator Mutator, ttl time.Duration, opts ...ToggleOption) *ToggleSet {
	ts := &ToggleSet{
		fetch:   fetch,
		mutator: mutator,
		ttl:     ttl,
		clock:   time.Now,
		members: make(map[string]bool),
		pending: make(map[string]*pendingToggle),
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Toggle flips membership for id: optimistic local write, remote mutation,
// then confirm or roll back. The returned error is nil for confirmed
// toggles and for remote conflicts ("already in desired state").
func (ts *ToggleSet) Toggle(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("toggle: id is required")
	}

	ts.mu.Lock()
	if _, busy := ts.pending[id]; busy {
		ts.mu.Unlock()
		return ErrToggleInFlight
	}
	was := ts.members[id]
	want := !was
	ts.setLocked(id, want)
	ts.pending[id] = &pendingToggle{want: want, state: toggleApplied}
	ts.valid = false
	ts.mu.Unlock()

	var err error
	if want {
		err = ts.mutator.Add(ctx, id)
	} else {
		err = ts.mutator.Remove(ctx, id)
	}

	ts.mu.Lock()
	entry, ok := ts.pending[id]
	if !ok {
		// Clear ran while the mutation was in flight; the membership this
		// toggle belonged to is gone and the outcome no longer applies.
		ts.mu.Unlock()
		return err
	}
	delete(ts.pending, id)

	if err == nil || api.IsConflict(err) {
		entry.state = toggleConfirmed
		ts.valid = ts.populated && len(ts.pending) == 0
		ids := ts.idsLocked()
		change := ts.onChange
		ts.mu.Unlock()
		if change != nil {
			change(ids)
		}
		return nil
	}

	entry.state = toggleRolledBack
	ts.setLocked(id, was)
	ts.valid = ts.populated && len(ts.pending) == 0
	rollback := ts.onRollback
	ts.mu.Unlock()
	if rollback != nil {
		rollback(id, was)
	}
	return err
}

// Refresh replaces the set with the server-authoritative list when missing,
// stale, or forced. Ids with an unacknowledged toggle keep their optimistic
// value; a refresh never clobbers a write the server has not resolved.
func (ts *ToggleSet) Refresh(ctx context.Context, force bool) error {
	ts.mu.Lock()
	if !force && ts.populated && ts.clock().Sub(ts.fetchedAt) < ts.ttl {
		ts.mu.Unlock()
		return nil
	}
	ts.mu.Unlock()

	_, err, _ := ts.group.Do("refresh", func() (any, error) {
		ts.mu.Lock()
		ts.loading = true
		scope := ts.scope
		ts.mu.Unlock()

		ids, fetchErr := ts.fetch(ctx)

		ts.mu.Lock()
		ts.loading = false
		if scope != ts.scope {
			// A Clear superseded this fetch; the list belongs to the
			// discarded session and is dropped.
			ts.mu.Unlock()
			return nil, nil
		}
		if fetchErr != nil {
			ts.lastErr = fetchErr
			ts.mu.Unlock()
			return nil, fetchErr
		}

		members := make(map[string]bool, len(ids))
		for _, id := range ids {
			members[id] = true
		}
		for id, entry := range ts.pending {
			if entry.state != toggleApplied {
				continue
			}
			if entry.want {
				members[id] = true
			} else {
				delete(members, id)
			}
		}
		ts.members = members
		ts.populated = true
		ts.fetchedAt = ts.clock()
		ts.lastErr = nil
		ts.valid = len(ts.pending) == 0
		ids = ts.idsLocked()
		change := ts.onChange
		ts.mu.Unlock()
		if change != nil {
			change(ids)
		}
		return nil, nil
	})
	return err
}

func (ts *ToggleSet) setLocked(id string, member bool) {
	if member {
		ts.members[id] = true
	} else {
		delete(ts.members, id)
	}
}

func (ts *ToggleSet) idsLocked() []string {
	ids := lo.Keys(ts.members)
	sort.Strings(ids)
	return ids
}

// Contains reports current (possibly optimistic) membership.
func (ts *ToggleSet) Contains(id string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.members[id]
}

// IDs returns a sorted copy of the current membership.
func (ts *ToggleSet) IDs() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.idsLocked()
}

// Valid reports whether the membership facts are currently trustworthy:
// at least one full fetch succeeded and no toggle awaits acknowledgement.
func (ts *ToggleSet) Valid() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.valid
}

// Loading reports whether a full fetch is in flight.
func (ts *ToggleSet) Loading() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.loading
}

// Err returns the error recorded by the most recent failed fetch, cleared by
// the next successful one.
func (ts *ToggleSet) Err() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.lastErr
}

// Clear empties the set. Used at session end; membership facts belong to the
// authenticated user only.
func (ts *ToggleSet) Clear() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.scope++
	ts.members = make(map[string]bool)
	ts.pending = make(map[string]*pendingToggle)
	ts.valid = false
	ts.populated = false
	ts.fetchedAt = time.Time{}
	ts.lastErr = nil
}
