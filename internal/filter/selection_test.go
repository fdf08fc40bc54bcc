package filter

import (
	"reflect"
	"testing"
)

func TestSelectionStartsAtAll(t *testing.T) {
	sel := NewSelection()
	if !sel.IsAll() {
		t.Fatal("expected fresh selection to be {all}")
	}
}

func TestToggleTokenLeavesAll(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("t-ml", nil)

	if sel.Has(TokenAll) {
		t.Error("expected all token removed")
	}
	if !sel.Has("t-ml") {
		t.Error("expected t-ml selected")
	}
}

func TestToggleAllResets(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("t-ml", nil)
	sel.Toggle(TokenLiked, nil)
	sel.Toggle(TokenAll, nil)

	if !sel.IsAll() {
		t.Errorf("expected reset to {all}, got %v", sel.Tokens())
	}
}

func TestToggleOffLastTokenCollapsesToAll(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("t-ml", nil)
	sel.Toggle("t-ml", nil)

	if !sel.IsAll() {
		t.Errorf("expected collapse to {all}, got %v", sel.Tokens())
	}
}

func TestSelectingEveryTopicCollapsesToAll(t *testing.T) {
	available := []string{"t-ml", "t-nlp", "t-bio"}
	sel := NewSelection()
	sel.Toggle("t-ml", available)
	sel.Toggle("t-nlp", available)
	if sel.IsAll() {
		t.Fatal("partial topic cover must not collapse")
	}

	sel.Toggle("t-bio", available)
	if !sel.IsAll() {
		t.Errorf("expected full topic cover to collapse to {all}, got %v", sel.Tokens())
	}
}

func TestLikedBlocksFullCoverCollapse(t *testing.T) {
	available := []string{"t-ml", "t-nlp"}
	sel := NewSelection()
	sel.Toggle(TokenLiked, available)
	sel.Toggle("t-ml", available)
	sel.Toggle("t-nlp", available)

	if sel.IsAll() {
		t.Error("liked plus every topic is not the full-cover case")
	}
}

func TestTokensSorted(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("t-nlp", nil)
	sel.Toggle(TokenLiked, nil)
	sel.Toggle("t-bio", nil)

	want := []string{TokenLiked, "t-bio", "t-nlp"}
	if got := sel.Tokens(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
