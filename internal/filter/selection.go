package filter

import "sort"

// Filter tokens with fixed meaning; every other token is a topic id.
const (
	TokenAll   = "all"
	TokenLiked = "liked"
)

// Selection is the active filter state: a token set, the subscribed-only
// flag and the free-text query. Pure UI state with no remote counterpart.
//
// Invariant: TokenAll is mutually exclusive with every other token, and the
// set collapses back to {all} whenever it would become empty.
type Selection struct {
	SubscribedOnly bool
	Query          string

	tokens map[string]struct{}
}

// NewSelection starts at {all}.
func NewSelection() *Selection {
	return &Selection{tokens: map[string]struct{}{TokenAll: {}}}
}

// Toggle flips one token. availableTopics lists every topic id the caller
// currently offers; selecting all of them and nothing else collapses the
// set back to {all}.
func (s *Selection) Toggle(token string, availableTopics []string) {
	if token == TokenAll {
		s.tokens = map[string]struct{}{TokenAll: {}}
		return
	}

	delete(s.tokens, TokenAll)

	if _, on := s.tokens[token]; on {
		delete(s.tokens, token)
		if len(s.tokens) == 0 {
			s.tokens[TokenAll] = struct{}{}
		}
		return
	}
	s.tokens[token] = struct{}{}

	if s.coversAll(availableTopics) {
		s.tokens = map[string]struct{}{TokenAll: {}}
	}
}

// coversAll reports whether the set is exactly the available topic tokens.
func (s *Selection) coversAll(availableTopics []string) bool {
	if len(availableTopics) == 0 || len(s.tokens) != len(availableTopics) {
		return false
	}
	for _, id := range availableTopics {
		if _, on := s.tokens[id]; !on {
			return false
		}
	}
	return true
}

// Has reports whether a token is selected.
func (s *Selection) Has(token string) bool {
	_, on := s.tokens[token]
	return on
}

// IsAll reports whether the selection is exactly {all}.
func (s *Selection) IsAll() bool {
	return len(s.tokens) == 1 && s.Has(TokenAll)
}

// Tokens returns the selected tokens in sorted order.
func (s *Selection) Tokens() []string {
	tokens := make([]string, 0, len(s.tokens))
	for token := range s.tokens {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
