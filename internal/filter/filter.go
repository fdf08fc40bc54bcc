// Package filter derives the visible article list from the current cache
// snapshots. Everything here is pure and synchronous: whatever the feed,
// like set and topic catalog look like right now, the result is a stable
// re-derivation, with no ordering assumptions between caches.
package filter

import (
	"strings"

	"github.com/samber/lo"
	"github.com/tomakado/containers/set"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

// Visible applies the two-stage filter: the subscribed-topics scope first,
// then the selection as a disjunction across its tokens. Input order is
// preserved.
func Visible(articles []model.Article, topics []model.Topic, likes set.HashSet[string], subscribed []string, sel *Selection) []model.Article {
	if sel != nil && sel.Query != "" {
		query := strings.ToLower(sel.Query)
		articles = lo.Filter(articles, func(a model.Article, _ int) bool {
			return matchesQuery(a, query)
		})
	}

	nameByID := make(map[string]string, len(topics))
	for _, t := range topics {
		nameByID[t.ID] = t.Name
	}

	if sel != nil && sel.SubscribedOnly && len(subscribed) > 0 {
		names := subscribedNames(subscribed, nameByID)
		articles = lo.Filter(articles, func(a model.Article, _ int) bool {
			return lo.SomeBy(names, func(name string) bool {
				return matchesTopic(a, name)
			})
		})
	}

	if sel == nil || sel.IsAll() {
		return articles
	}

	return lo.Filter(articles, func(a model.Article, _ int) bool {
		if sel.Has(TokenLiked) && likes != nil && likes.Contains(a.ID) {
			return true
		}
		return lo.SomeBy(sel.Tokens(), func(token string) bool {
			name, ok := nameByID[token]
			return ok && matchesTopic(a, name)
		})
	})
}

func subscribedNames(subscribed []string, nameByID map[string]string) []string {
	var names []string
	for _, id := range subscribed {
		if name, ok := nameByID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// matchesTopic is the relevance heuristic carried over from the original
// behavior: a keyword containing the topic name or vice versa, or the name
// appearing in title or abstract. Case-insensitive throughout.
func matchesTopic(a model.Article, topicName string) bool {
	name := strings.ToLower(topicName)
	if name == "" {
		return false
	}
	for _, k := range a.Keywords {
		keyword := strings.ToLower(k)
		if keyword == "" {
			continue
		}
		if strings.Contains(keyword, name) || strings.Contains(name, keyword) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(a.Title), name) ||
		strings.Contains(strings.ToLower(a.Abstract), name)
}

func matchesQuery(a model.Article, query string) bool {
	if strings.Contains(strings.ToLower(a.Title), query) ||
		strings.Contains(strings.ToLower(a.Abstract), query) {
		return true
	}
	if lo.SomeBy(a.Authors, func(author string) bool {
		return strings.Contains(strings.ToLower(author), query)
	}) {
		return true
	}
	return lo.SomeBy(a.Keywords, func(keyword string) bool {
		return strings.Contains(strings.ToLower(keyword), query)
	})
}
