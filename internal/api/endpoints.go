package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

// SubscribedFeed fetches one page of the user's subscribed feed, optionally
// scoped by a search query.
func (c *Client) SubscribedFeed(ctx context.Context, page, pageSize int, search string) (model.FeedPage, error) {
	if page < 1 || pageSize < 1 {
		return model.FeedPage{}, validationErr("page and page_size must be positive")
	}
	query := url.Values{
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(pageSize)},
	}
	if search != "" {
		query.Set("search", search)
	}

	var feed model.FeedPage
	if err := c.do(ctx, http.MethodGet, "/articles/feed", query, nil, &feed); err != nil {
		return model.FeedPage{}, err
	}
	return feed, nil
}

// Topics fetches the full topic catalog.
func (c *Client) Topics(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	if err := c.do(ctx, http.MethodGet, "/topics", nil, nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// LikeCount returns how many users liked an article.
func (c *Client) LikeCount(ctx context.Context, articleID string) (int, error) {
	if articleID == "" {
		return 0, validationErr("article id is required")
	}
	var out struct {
		LikeCount int `json:"like_count"`
	}
	if err := c.do(ctx, http.MethodGet, "/articles/"+articleID+"/likes/count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.LikeCount, nil
}

// LikeStatus reports whether the current user liked an article.
func (c *Client) LikeStatus(ctx context.Context, articleID string) (bool, error) {
	if articleID == "" {
		return false, validationErr("article id is required")
	}
	var out struct {
		IsLiked bool `json:"is_liked"`
	}
	if err := c.do(ctx, http.MethodGet, "/articles/"+articleID+"/likes/status", nil, nil, &out); err != nil {
		return false, err
	}
	return out.IsLiked, nil
}

// UserLikes returns the ids of every article the current user liked.
func (c *Client) UserLikes(ctx context.Context) ([]string, error) {
	var out struct {
		LikedArticles []string `json:"liked_articles"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me/likes", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.LikedArticles, nil
}

// Like records a like for the current user.
func (c *Client) Like(ctx context.Context, articleID string) error {
	if articleID == "" {
		return validationErr("article id is required")
	}
	return c.do(ctx, http.MethodPost, "/articles/"+articleID+"/like", nil, nil, nil)
}

// Unlike removes the current user's like.
func (c *Client) Unlike(ctx context.Context, articleID string) error {
	if articleID == "" {
		return validationErr("article id is required")
	}
	return c.do(ctx, http.MethodPost, "/articles/"+articleID+"/unlike", nil, nil, nil)
}

// Subscribe follows a topic for the current user.
func (c *Client) Subscribe(ctx context.Context, topicID string) error {
	if topicID == "" {
		return validationErr("topic id is required")
	}
	return c.do(ctx, http.MethodPost, "/topics/"+topicID+"/subscribe", nil, nil, nil)
}

// Unsubscribe unfollows a topic for the current user.
func (c *Client) Unsubscribe(ctx context.Context, topicID string) error {
	if topicID == "" {
		return validationErr("topic id is required")
	}
	return c.do(ctx, http.MethodPost, "/topics/"+topicID+"/unsubscribe", nil, nil, nil)
}

// UserPatch is a partial profile update; nil fields are left unchanged.
type UserPatch struct {
	Name        *string `json:"name,omitempty"`
	ProfileType *string `json:"profile_type,omitempty"`
}

// UpdateUser patches the user's profile and returns the updated entity.
func (c *Client) UpdateUser(ctx context.Context, userID string, patch UserPatch) (model.User, error) {
	if userID == "" {
		return model.User{}, validationErr("user id is required")
	}
	if patch.Name == nil && patch.ProfileType == nil {
		return model.User{}, validationErr("nothing to update")
	}

	var user model.User
	if err := c.do(ctx, http.MethodPatch, "/users/"+userID, nil, patch, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
