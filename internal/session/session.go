package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/arthurgrandao/scinewsAI/internal/api"
	"github.com/arthurgrandao/scinewsAI/internal/cache"
	"github.com/arthurgrandao/scinewsAI/internal/config"
	"github.com/arthurgrandao/scinewsAI/internal/model"
	"github.com/arthurgrandao/scinewsAI/internal/store"
)

// Session wires the transport, the guard, and one cache instance per remote
// data set. Presentation reads snapshots from the caches and mutates only
// through their entry points.
type Session struct {
	Guard         *Guard
	Store         *store.Store
	Client        *api.Client
	Feed          *cache.Feed
	Likes         *cache.ToggleSet
	Subscriptions *cache.ToggleSet
	Topics        *cache.Resource[[]model.Topic]
	Stats         *cache.Stats

	logger *slog.Logger
}

type likeMutator struct{ client *api.Client }

func (m likeMutator) Add(ctx context.Context, id string) error    { return m.client.Like(ctx, id) }
func (m likeMutator) Remove(ctx context.Context, id string) error { return m.client.Unlike(ctx, id) }

type subscriptionMutator struct{ client *api.Client }

func (m subscriptionMutator) Add(ctx context.Context, id string) error {
	return m.client.Subscribe(ctx, id)
}

func (m subscriptionMutator) Remove(ctx context.Context, id string) error {
	return m.client.Unsubscribe(ctx, id)
}

func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	guard := NewGuard(st)
	client := api.New(cfg.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeoutDuration()}),
		api.WithTokenSource(st),
		api.WithNotifier(guard),
		api.WithLogger(logger),
	)

	stats, err := cache.NewStats(client, cfg.StatsTTL(), 500)
	if err != nil {
		return nil, fmt.Errorf("building stats cache: %w", err)
	}

	s := &Session{
		Guard:  guard,
		Store:  st,
		Client: client,
		logger: logger,
		Feed:   cache.NewFeed(client, cfg.FeedTTL(), cache.WithPageSize(cfg.GetPageSize())),
		Topics: cache.NewResource(client.Topics, cfg.TopicsTTL()),
		Stats:  stats,
	}

	s.Likes = cache.NewToggleSet(client.UserLikes, likeMutator{client}, cfg.LikesTTL())

	s.Subscriptions = cache.NewToggleSet(s.subscribedTopics, subscriptionMutator{client}, cfg.LikesTTL(),
		cache.WithOnChange(s.persistSubscriptions),
	)

	s.OnLogout(nil)
	return s, nil
}

// subscribedTopics reads the authoritative subscription list from the stored
// user entity; the server embeds it in the profile rather than serving it as
// a separate collection.
func (s *Session) subscribedTopics(ctx context.Context) ([]string, error) {
	user, ok, err := s.Store.User()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return user.SubscribedTopics, nil
}

// persistSubscriptions writes a confirmed subscription change back into the
// stored user entity.
func (s *Session) persistSubscriptions(ids []string) {
	user, ok, err := s.Store.User()
	if err != nil {
		s.logger.Warn("reading stored profile for subscription update", "error", err)
		return
	}
	if !ok {
		return
	}
	user.SubscribedTopics = ids
	if err := s.Store.SaveUser(user); err != nil {
		s.logger.Warn("persisting subscription change", "error", err)
	}
}

// Login exchanges credentials for a token, persists it together with the
// fetched profile, and discards caches left over from a previous identity.
func (s *Session) Login(ctx context.Context, email, password string) (model.User, error) {
	token, err := s.Client.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	if err := s.Store.SaveToken(token); err != nil {
		return model.User{}, err
	}

	user, err := s.Client.Me(ctx)
	if err != nil {
		return model.User{}, err
	}
	if err := s.Store.SaveUser(user); err != nil {
		return model.User{}, err
	}

	s.clearCaches()
	return user, nil
}

// OnLogout registers fn to run after a server-reported authorization failure
// has cleared credentials and session-owned caches. fn may be nil.
func (s *Session) OnLogout(fn func()) {
	s.Guard.RegisterLogoutHandler(func() {
		s.clearCaches()
		if fn != nil {
			fn()
		}
	})
}

// Logout is the explicit, user-initiated variant: clears credentials and
// session-owned caches without invoking the logout handler.
func (s *Session) Logout() error {
	err := s.Store.ClearCredentials()
	s.clearCaches()
	return err
}

// clearCaches discards everything owned by the authenticated user. The topic
// catalog stays; it is public data.
func (s *Session) clearCaches() {
	s.Feed.Clear()
	s.Likes.Clear()
	s.Subscriptions.Clear()
	s.Stats.Clear()
}

// UpdateProfile patches the remote profile and persists the confirmed
// entity. Nil fields are left unchanged.
func (s *Session) UpdateProfile(ctx context.Context, name, profileType *string) (model.User, error) {
	user, ok, err := s.Store.User()
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, fmt.Errorf("no authenticated user; run login first")
	}

	updated, err := s.Client.UpdateUser(ctx, user.ID, api.UserPatch{Name: name, ProfileType: profileType})
	if err != nil {
		return model.User{}, err
	}
	if err := s.Store.SaveUser(updated); err != nil {
		return model.User{}, err
	}
	return updated, nil
}
