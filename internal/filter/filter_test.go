package filter

import (
	"testing"

	"github.com/tomakado/containers/set"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

var testTopics = []model.Topic{
	{ID: "t-ml", Name: "machine learning"},
	{ID: "t-nlp", Name: "nlp"},
	{ID: "t-bio", Name: "biology"},
}

func ids(articles []model.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func equalIDs(t *testing.T, got []model.Article, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotIDs)
		}
	}
}

func TestVisiblePassesEverythingOnAll(t *testing.T) {
	articles := []model.Article{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	got := Visible(articles, testTopics, set.New[string](), nil, NewSelection())
	equalIDs(t, got, "a1", "a2", "a3")
}

func TestVisibleTopicTokenMatchesKeywordAndText(t *testing.T) {
	articles := []model.Article{
		{ID: "a1", Keywords: []string{"deep machine learning"}},
		{ID: "a2", Title: "Advances in machine learning systems"},
		{ID: "a3", Abstract: "We survey machine learning methods."},
		{ID: "a4", Title: "Crystallography", Keywords: []string{"x-ray"}},
	}
	sel := NewSelection()
	sel.Toggle("t-ml", nil)

	got := Visible(articles, testTopics, set.New[string](), nil, sel)
	equalIDs(t, got, "a1", "a2", "a3")
}

func TestVisibleTokensDisjoin(t *testing.T) {
	articles := []model.Article{
		{ID: "a1", Keywords: []string{"nlp"}},
		{ID: "a2", Keywords: []string{"biology"}},
		{ID: "a3", Keywords: []string{"astronomy"}},
	}
	sel := NewSelection()
	sel.Toggle("t-nlp", nil)
	sel.Toggle("t-bio", nil)

	got := Visible(articles, testTopics, set.New[string](), nil, sel)
	equalIDs(t, got, "a1", "a2")
}

func TestVisibleLikedToken(t *testing.T) {
	articles := []model.Article{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	sel := NewSelection()
	sel.Toggle(TokenLiked, nil)

	got := Visible(articles, testTopics, set.New("a2"), nil, sel)
	equalIDs(t, got, "a2")
}

// Stage composition: the subscribed scope conjoins with the selection, and
// liked disjoins with topic tokens inside the selection. An article that
// survives the scope but matches no selected token is out even when another
// article would match.
func TestVisibleScopeConjoinsSelectionDisjoins(t *testing.T) {
	articles := []model.Article{
		{ID: "A", Keywords: []string{"machine learning"}},
		{ID: "B", Keywords: []string{"nlp"}},
	}
	sel := NewSelection()
	sel.SubscribedOnly = true
	sel.Toggle(TokenLiked, nil)

	// Subscribed to machine learning only; liked B, which the scope drops.
	got := Visible(articles, testTopics, set.New("B"), []string{"t-ml"}, sel)
	equalIDs(t, got)

	// Liking A instead makes it pass both stages.
	got = Visible(articles, testTopics, set.New("A"), []string{"t-ml"}, sel)
	equalIDs(t, got, "A")
}

func TestVisibleSubscribedScopeIgnoredWhenNoSubscriptions(t *testing.T) {
	articles := []model.Article{
		{ID: "a1", Keywords: []string{"nlp"}},
		{ID: "a2", Keywords: []string{"astronomy"}},
	}
	sel := NewSelection()
	sel.SubscribedOnly = true

	got := Visible(articles, testTopics, set.New[string](), nil, sel)
	equalIDs(t, got, "a1", "a2")
}

func TestVisibleQueryFiltersFirst(t *testing.T) {
	articles := []model.Article{
		{ID: "a1", Title: "Protein folding with transformers"},
		{ID: "a2", Abstract: "A study of protein interactions."},
		{ID: "a3", Authors: []string{"Maria Proteanu"}},
		{ID: "a4", Keywords: []string{"proteomics"}},
		{ID: "a5", Title: "Unrelated work"},
	}
	sel := NewSelection()
	sel.Query = "PROTE"

	got := Visible(articles, testTopics, set.New[string](), nil, sel)
	equalIDs(t, got, "a1", "a2", "a3", "a4")
}

func TestVisiblePreservesInputOrder(t *testing.T) {
	articles := []model.Article{
		{ID: "z", Keywords: []string{"nlp"}},
		{ID: "m", Keywords: []string{"nlp"}},
		{ID: "a", Keywords: []string{"nlp"}},
	}
	sel := NewSelection()
	sel.Toggle("t-nlp", nil)

	got := Visible(articles, testTopics, set.New[string](), nil, sel)
	equalIDs(t, got, "z", "m", "a")
}

func TestVisibleNilSelection(t *testing.T) {
	articles := []model.Article{{ID: "a1"}}
	got := Visible(articles, testTopics, nil, nil, nil)
	equalIDs(t, got, "a1")
}
